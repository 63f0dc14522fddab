package ports

import (
	"context"
	"time"

	"github.com/Sharky83/CarRental/internal/core/domain"
)

// CreateBookingInput carries all data needed to create a booking. Dates are
// whole days at midnight UTC.
type CreateBookingInput struct {
	UserID     string
	CarID      string
	PickupDate time.Time
	ReturnDate time.Time
}

// ChangeStatusInput carries a requested booking status transition. ActorID
// and ActorRole come from the authenticated session and gate who may apply
// which transition.
type ChangeStatusInput struct {
	ActorID   string
	ActorRole string
	BookingID string
	Status    domain.BookingStatus
}

// AvailabilityResult is returned by CheckAvailability.
type AvailabilityResult struct {
	Available bool
	// BookedRanges lists the car's occupied intervals regardless of outcome,
	// so clients can render a calendar from the same response.
	BookedRanges []domain.DateRange
}

// BookingService defines use-case operations for bookings.
type BookingService interface {
	// CarAvailability returns the occupied date ranges of a car's
	// non-cancelled bookings. Unknown car ids yield an empty set.
	CarAvailability(ctx context.Context, carID string) ([]domain.DateRange, error)
	CheckAvailability(ctx context.Context, carID string, r domain.DateRange) (*AvailabilityResult, error)
	Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	// ListForUser returns the renter's bookings with embedded car snapshots.
	ListForUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	// ListForOwner returns bookings against all of the owner's cars.
	ListForOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error)
	ChangeStatus(ctx context.Context, input ChangeStatusInput) (*domain.Booking, error)
	// ExpireStalePending cancels pending bookings whose pickup date passed
	// without confirmation and reports how many were cancelled.
	ExpireStalePending(ctx context.Context) (int, error)
}
