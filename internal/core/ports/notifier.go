package ports

import (
	"context"

	"github.com/Sharky83/CarRental/internal/core/domain"
)

// BookingEventKind identifies a booking lifecycle notification.
type BookingEventKind string

const (
	BookingCreated   BookingEventKind = "booking_created"
	BookingConfirmed BookingEventKind = "booking_confirmed"
	BookingCancelled BookingEventKind = "booking_cancelled"
)

// BookingEvent is the payload handed to the notification pipeline after a
// booking state change has been persisted.
type BookingEvent struct {
	Kind      BookingEventKind
	Booking   *domain.Booking
	Car       *domain.Car
	UserName  string
	UserEmail string
}

// Notifier delivers a booking notification to the renter.
type Notifier interface {
	Notify(ctx context.Context, ev BookingEvent) error
}

// EventSink accepts booking events for asynchronous delivery. Implementations
// must not block the caller beyond a bounded buffer.
type EventSink interface {
	Enqueue(ev BookingEvent)
}
