package ports

import (
	"context"

	"github.com/Sharky83/CarRental/internal/core/domain"
)

// AddCarInput carries all data needed to list a new car.
type AddCarInput struct {
	OwnerID         string
	Brand           string
	Model           string
	Image           string
	Year            int
	Category        string
	SeatingCapacity int
	FuelType        string
	Transmission    string
	PricePerDay     float64
	Location        string
	Description     string
	Features        []string
}

// DashboardResult aggregates an owner's fleet and booking activity.
type DashboardResult struct {
	TotalCars         int
	TotalBookings     int
	PendingBookings   int
	ConfirmedBookings int
	// RecentBookings holds the newest bookings against the owner's cars.
	RecentBookings []*domain.Booking
	// MonthlyRevenue sums confirmed booking prices for the current calendar month.
	MonthlyRevenue float64
}

// CarService defines use-case operations for the car catalogue.
type CarService interface {
	// ListAvailable is the public catalogue: available cars only.
	ListAvailable(ctx context.Context, filter CarFilter) ([]*domain.Car, error)
	Add(ctx context.Context, input AddCarInput) (*domain.Car, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*domain.Car, error)
	// ToggleAvailability flips the car's manual availability flag.
	// Only the owning user may toggle their car.
	ToggleAvailability(ctx context.Context, ownerID, carID string) (*domain.Car, error)
	Delete(ctx context.Context, ownerID, carID string) error
	Dashboard(ctx context.Context, ownerID string) (*DashboardResult, error)
}
