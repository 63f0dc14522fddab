package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sharky83/CarRental/internal/core/domain"
	"github.com/Sharky83/CarRental/internal/core/ports"
)

// recentBookingsLimit caps the dashboard's recent-activity list.
const recentBookingsLimit = 3

type CarService struct {
	cars     ports.CarRepository
	bookings ports.BookingRepository
	logger   zerolog.Logger
}

func NewCarService(cars ports.CarRepository, bookings ports.BookingRepository, logger zerolog.Logger) *CarService {
	return &CarService{cars: cars, bookings: bookings, logger: logger}
}

func (s *CarService) ListAvailable(ctx context.Context, filter ports.CarFilter) ([]*domain.Car, error) {
	return s.cars.FindAvailable(ctx, filter)
}

func (s *CarService) Add(ctx context.Context, input ports.AddCarInput) (*domain.Car, error) {
	now := time.Now().UTC()
	car := &domain.Car{
		Owner:           input.OwnerID,
		Brand:           input.Brand,
		Model:           input.Model,
		Image:           input.Image,
		Year:            input.Year,
		Category:        input.Category,
		SeatingCapacity: input.SeatingCapacity,
		FuelType:        input.FuelType,
		Transmission:    input.Transmission,
		PricePerDay:     input.PricePerDay,
		Location:        input.Location,
		Description:     input.Description,
		IsAvailable:     true,
		Features:        input.Features,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.cars.Create(ctx, car)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", input.OwnerID).Msg("failed to add car")
		return nil, err
	}

	s.logger.Info().Str("car", created.ID).Str("owner", input.OwnerID).Msg("car listed")
	return created, nil
}

func (s *CarService) ListForOwner(ctx context.Context, ownerID string) ([]*domain.Car, error) {
	return s.cars.FindByOwner(ctx, ownerID)
}

func (s *CarService) ToggleAvailability(ctx context.Context, ownerID, carID string) (*domain.Car, error) {
	car, err := s.ownedCar(ctx, ownerID, carID)
	if err != nil {
		return nil, err
	}

	car.IsAvailable = !car.IsAvailable
	if err := s.cars.SetAvailability(ctx, carID, car.IsAvailable); err != nil {
		return nil, err
	}
	return car, nil
}

func (s *CarService) Delete(ctx context.Context, ownerID, carID string) error {
	if _, err := s.ownedCar(ctx, ownerID, carID); err != nil {
		return err
	}

	if err := s.cars.Delete(ctx, carID); err != nil {
		return err
	}
	s.logger.Info().Str("car", carID).Str("owner", ownerID).Msg("car removed")
	return nil
}

func (s *CarService) Dashboard(ctx context.Context, ownerID string) (*ports.DashboardResult, error) {
	cars, err := s.cars.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := &ports.DashboardResult{
		TotalCars:     len(cars),
		TotalBookings: len(bookings),
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	for _, b := range bookings {
		switch b.Status {
		case domain.StatusPending:
			result.PendingBookings++
		case domain.StatusConfirmed:
			result.ConfirmedBookings++
			if !b.CreatedAt.Before(monthStart) {
				result.MonthlyRevenue += b.Price
			}
		}
	}

	// FindByOwner returns newest first.
	if len(bookings) > recentBookingsLimit {
		bookings = bookings[:recentBookingsLimit]
	}
	result.RecentBookings = bookings

	return result, nil
}

// ownedCar loads a car and verifies ownership.
func (s *CarService) ownedCar(ctx context.Context, ownerID, carID string) (*domain.Car, error) {
	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.Owner != ownerID {
		return nil, domain.ErrForbidden
	}
	return car, nil
}
