package ports

import (
	"context"

	"github.com/Sharky83/CarRental/internal/core/domain"
)

// CarFilter carries optional query parameters for the public car listing.
type CarFilter struct {
	Location string // optional: exact match on location
	Category string // optional: exact match on category
}

// CarRepository defines persistence operations for cars.
type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) (*domain.Car, error)
	FindByID(ctx context.Context, id string) (*domain.Car, error)
	// FindAvailable returns cars whose availability flag is set, newest first.
	FindAvailable(ctx context.Context, filter CarFilter) ([]*domain.Car, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*domain.Car, error)
	// FindByIDs returns the matching cars keyed by id. Missing ids are
	// silently absent from the map.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Car, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	// IncrementTotalBookings adds delta to the car's booking counter.
	IncrementTotalBookings(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
}
