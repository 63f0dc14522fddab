package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Sharky83/CarRental/internal/core/ports"
)

const dateFormat = "02 Jan 2006"

// SendGridNotifier emails booking lifecycle updates to the renter.
type SendGridNotifier struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	logger    zerolog.Logger
}

func NewSendGridNotifier(apiKey, fromName, fromEmail string, logger zerolog.Logger) *SendGridNotifier {
	return &SendGridNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    logger,
	}
}

func (n *SendGridNotifier) Notify(ctx context.Context, ev ports.BookingEvent) error {
	subject, body := composeEmail(ev)

	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(ev.UserName, ev.UserEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d", resp.StatusCode)
	}

	n.logger.Debug().
		Str("to", ev.UserEmail).
		Str("kind", string(ev.Kind)).
		Msg("booking email sent")
	return nil
}

func composeEmail(ev ports.BookingEvent) (subject, body string) {
	car := fmt.Sprintf("%s %s", ev.Car.Brand, ev.Car.Model)
	pickup := ev.Booking.PickupDate.Format(dateFormat)
	ret := ev.Booking.ReturnDate.Format(dateFormat)

	switch ev.Kind {
	case ports.BookingConfirmed:
		subject = fmt.Sprintf("Your booking for the %s is confirmed", car)
	case ports.BookingCancelled:
		subject = fmt.Sprintf("Your booking for the %s was cancelled", car)
	default:
		subject = fmt.Sprintf("We received your booking request for the %s", car)
	}

	body = fmt.Sprintf(
		"Hello %s,\n\n"+
			"Booking status: %s\n"+
			"Car: %s\n"+
			"Pickup: %s\n"+
			"Return: %s\n"+
			"Total price: %.2f\n\n"+
			"Thank you for renting with us.",
		ev.UserName, ev.Booking.Status, car, pickup, ret, ev.Booking.Price,
	)
	return subject, body
}

// NopNotifier is used when no SendGrid key is configured; events are dropped
// after a debug log line.
type NopNotifier struct {
	logger zerolog.Logger
}

func NewNopNotifier(logger zerolog.Logger) *NopNotifier {
	return &NopNotifier{logger: logger}
}

func (n *NopNotifier) Notify(_ context.Context, ev ports.BookingEvent) error {
	n.logger.Debug().Str("kind", string(ev.Kind)).Msg("notifications disabled, event dropped")
	return nil
}
