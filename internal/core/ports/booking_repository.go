package ports

import (
	"context"
	"time"

	"github.com/Sharky83/CarRental/internal/core/domain"
)

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	// FindActiveByCar returns all non-cancelled bookings for a car. An
	// unknown car yields an empty slice, not an error.
	FindActiveByCar(ctx context.Context, carID string) ([]*domain.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
	// FindStalePending returns pending bookings whose pickup date is before
	// the given cutoff.
	FindStalePending(ctx context.Context, pickupBefore time.Time) ([]*domain.Booking, error)
}

// CarLocker provides per-car mutual exclusion. The booking service holds the
// lease across its check-then-insert sequence so two concurrent requests for
// overlapping ranges on the same car cannot both pass the conflict check.
type CarLocker interface {
	// Acquire blocks until the lease for carID is held, ctx is done, or the
	// locker gives up. The returned function releases the lease.
	Acquire(ctx context.Context, carID string) (release func(), err error)
}
