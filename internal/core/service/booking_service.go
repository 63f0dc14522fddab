package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sharky83/CarRental/internal/api/metrics"
	"github.com/Sharky83/CarRental/internal/core/domain"
	"github.com/Sharky83/CarRental/internal/core/ports"
)

// BookingService implements the availability check and booking lifecycle.
type BookingService struct {
	bookings ports.BookingRepository
	cars     ports.CarRepository
	users    ports.UserRepository
	locks    ports.CarLocker
	events   ports.EventSink // optional
	logger   zerolog.Logger
}

func NewBookingService(
	bookings ports.BookingRepository,
	cars ports.CarRepository,
	users ports.UserRepository,
	locks ports.CarLocker,
	events ports.EventSink,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		cars:     cars,
		users:    users,
		locks:    locks,
		events:   events,
		logger:   logger,
	}
}

// CarAvailability returns the occupied intervals of all non-cancelled
// bookings for a car. An unknown car id yields an empty set, not an error:
// the endpoint is public and must not probe car existence.
func (s *BookingService) CarAvailability(ctx context.Context, carID string) ([]domain.DateRange, error) {
	existing, err := s.bookings.FindActiveByCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	ranges := make([]domain.DateRange, 0, len(existing))
	for _, b := range existing {
		ranges = append(ranges, b.Range())
	}
	return ranges, nil
}

func (s *BookingService) CheckAvailability(ctx context.Context, carID string, r domain.DateRange) (*ports.AvailabilityResult, error) {
	if !r.Valid() {
		return nil, domain.ErrInvalidDateRange
	}

	ranges, err := s.CarAvailability(ctx, carID)
	if err != nil {
		return nil, err
	}
	metrics.AvailabilityChecksTotal.Inc()

	result := &ports.AvailabilityResult{Available: true, BookedRanges: ranges}
	for _, booked := range ranges {
		if r.Overlaps(booked) {
			result.Available = false
			break
		}
	}
	return result, nil
}

// Create validates and inserts a new booking. The whole check-then-insert
// sequence runs under the car's lock so a concurrent request for an
// overlapping range cannot pass the conflict check in between.
func (s *BookingService) Create(ctx context.Context, input ports.CreateBookingInput) (*domain.Booking, error) {
	r := domain.DateRange{
		PickupDate: domain.Day(input.PickupDate),
		ReturnDate: domain.Day(input.ReturnDate),
	}
	if !r.Valid() {
		return nil, domain.ErrInvalidDateRange
	}

	release, err := s.locks.Acquire(ctx, input.CarID)
	if err != nil {
		return nil, err
	}
	defer release()

	car, err := s.cars.FindByID(ctx, input.CarID)
	if err != nil {
		return nil, err
	}
	if !car.IsAvailable {
		return nil, domain.ErrCarUnavailable
	}

	existing, err := s.bookings.FindActiveByCar(ctx, input.CarID)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if r.Overlaps(b.Range()) {
			metrics.BookingConflictsTotal.Inc()
			s.logger.Info().
				Str("car", input.CarID).
				Time("pickup", r.PickupDate).
				Time("return", r.ReturnDate).
				Msg("booking rejected: dates unavailable")
			return nil, domain.ErrDatesUnavailable
		}
	}

	booking := &domain.Booking{
		Car:        input.CarID,
		User:       input.UserID,
		Owner:      car.Owner,
		PickupDate: r.PickupDate,
		ReturnDate: r.ReturnDate,
		Price:      car.PricePerDay * float64(r.Days()),
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		s.logger.Error().Err(err).Str("car", input.CarID).Msg("failed to create booking")
		return nil, err
	}

	if err := s.cars.IncrementTotalBookings(ctx, input.CarID, 1); err != nil {
		// The booking itself is committed; a stale counter is tolerable.
		s.logger.Warn().Err(err).Str("car", input.CarID).Msg("failed to bump totalBookings")
	}

	metrics.BookingsCreatedTotal.Inc()
	s.logger.Info().
		Str("booking", created.ID).
		Str("car", input.CarID).
		Str("user", input.UserID).
		Float64("price", created.Price).
		Msg("booking created")

	s.emit(ctx, ports.BookingCreated, created, car)
	return created, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	bookings, err := s.bookings.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachCars(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *BookingService) ListForOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error) {
	bookings, err := s.bookings.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.attachCars(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ChangeStatus applies a status transition. The car's owner may confirm or
// cancel any booking on their cars; the renter may cancel their own booking.
func (s *BookingService) ChangeStatus(ctx context.Context, input ports.ChangeStatusInput) (*domain.Booking, error) {
	if !input.Status.IsValid() {
		return nil, domain.ErrInvalidTransition
	}

	booking, err := s.bookings.FindByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}

	switch {
	case input.ActorID == booking.Owner:
	case input.ActorID == booking.User && input.Status == domain.StatusCancelled:
	default:
		return nil, domain.ErrForbidden
	}

	if !booking.Status.CanTransitionTo(input.Status) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.bookings.UpdateStatus(ctx, booking.ID, input.Status); err != nil {
		return nil, err
	}
	booking.Status = input.Status

	s.logger.Info().
		Str("booking", booking.ID).
		Str("status", string(input.Status)).
		Str("actor", input.ActorID).
		Msg("booking status changed")

	kind := ports.BookingCancelled
	if input.Status == domain.StatusConfirmed {
		kind = ports.BookingConfirmed
	}
	if car, err := s.cars.FindByID(ctx, booking.Car); err == nil {
		s.emit(ctx, kind, booking, car)
	}

	return booking, nil
}

// ExpireStalePending cancels pending bookings whose pickup day has passed
// without the owner confirming them, freeing the dates for other renters.
func (s *BookingService) ExpireStalePending(ctx context.Context) (int, error) {
	cutoff := domain.Day(time.Now().UTC())
	stale, err := s.bookings.FindStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range stale {
		if err := s.bookings.UpdateStatus(ctx, b.ID, domain.StatusCancelled); err != nil {
			s.logger.Error().Err(err).Str("booking", b.ID).Msg("failed to expire stale booking")
			continue
		}
		expired++
	}

	if expired > 0 {
		metrics.BookingsExpiredTotal.Add(float64(expired))
		s.logger.Info().Int("count", expired).Msg("expired stale pending bookings")
	}
	return expired, nil
}

// attachCars populates CarSnapshot on each booking in one batch lookup.
func (s *BookingService) attachCars(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]string, 0, len(bookings))
	seen := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.Car]; !ok {
			seen[b.Car] = struct{}{}
			ids = append(ids, b.Car)
		}
	}

	cars, err := s.cars.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		b.CarSnapshot = cars[b.Car]
	}
	return nil
}

// emit hands a lifecycle event to the async notification pipeline. Delivery
// is best-effort and never affects the request outcome.
func (s *BookingService) emit(ctx context.Context, kind ports.BookingEventKind, booking *domain.Booking, car *domain.Car) {
	if s.events == nil {
		return
	}

	user, err := s.users.FindByID(ctx, booking.User)
	if err != nil {
		s.logger.Warn().Err(err).Str("booking", booking.ID).Msg("skipping notification: renter lookup failed")
		return
	}

	s.events.Enqueue(ports.BookingEvent{
		Kind:      kind,
		Booking:   booking,
		Car:       car,
		UserName:  user.Name,
		UserEmail: user.Email,
	})
}
