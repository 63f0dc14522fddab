package domain

import (
	"errors"
	"time"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

var ErrBookingNotFound = errors.New("booking not found")
var ErrCarNotFound = errors.New("car not found")
var ErrCarUnavailable = errors.New("car is not available")
var ErrDatesUnavailable = errors.New("car is already booked for the selected dates")
var ErrInvalidDateRange = errors.New("pickup date must be on or before return date")
var ErrInvalidTransition = errors.New("invalid booking status transition")
var ErrForbidden = errors.New("access forbidden")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// DateRange is a closed interval of whole rental days. Both bounds are
// normalized to midnight UTC and both days count as occupied: a booking
// returning on day D blocks another booking picking up on day D (no
// same-day turnover).
type DateRange struct {
	PickupDate time.Time `json:"pickupDate" bson:"pickupDate"`
	ReturnDate time.Time `json:"returnDate" bson:"returnDate"`
}

// Valid reports whether the range is well-formed (pickup <= return).
func (r DateRange) Valid() bool {
	return !r.PickupDate.After(r.ReturnDate)
}

// Overlaps reports whether two closed day intervals share at least one
// calendar day: r.start <= o.end AND r.end >= o.start.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.PickupDate.After(o.ReturnDate) && !r.ReturnDate.Before(o.PickupDate)
}

// Days returns the rental length in days, inclusive of both the pickup and
// the return day. A same-day rental counts as one day. This mirrors the
// occupancy rule above: the car is unavailable on its return day, so that
// day is charged.
func (r DateRange) Days() int {
	return int(r.ReturnDate.Sub(r.PickupDate).Hours()/24) + 1
}

// Day truncates t to midnight UTC, the canonical representation of a rental day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Booking is the rental transaction aggregate. Owner is the car's owner,
// denormalized so owner-side queries avoid a join through cars.
type Booking struct {
	ID         string        `json:"_id" bson:"_id,omitempty"`
	Car        string        `json:"car" bson:"car"`
	User       string        `json:"user" bson:"user"`
	Owner      string        `json:"owner" bson:"owner"`
	PickupDate time.Time     `json:"pickupDate" bson:"pickupDate"`
	ReturnDate time.Time     `json:"returnDate" bson:"returnDate"`
	Price      float64       `json:"price" bson:"price"`
	Status     BookingStatus `json:"status" bson:"status"`
	CreatedAt  time.Time     `json:"createdAt" bson:"createdAt"`

	// CarSnapshot is populated on user/owner listings only.
	CarSnapshot *Car `json:"carDetails,omitempty" bson:"-"`
}

// Range returns the booking's occupied day interval.
func (b *Booking) Range() DateRange {
	return DateRange{PickupDate: b.PickupDate, ReturnDate: b.ReturnDate}
}
