package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sharky83/CarRental/internal/core/domain"
	"github.com/Sharky83/CarRental/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubBookingRepo struct {
	byID      map[string]*domain.Booking
	seq       int
	findCalls int // FindActiveByCar invocations
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{byID: make(map[string]*domain.Booking)}
}

func (r *stubBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.seq++
	clone := *b
	clone.ID = fmt.Sprintf("booking_%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookingRepo) FindActiveByCar(_ context.Context, carID string) ([]*domain.Booking, error) {
	r.findCalls++
	var out []*domain.Booking
	for _, b := range r.byID {
		if b.Car == carID && b.Status != domain.StatusCancelled {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubBookingRepo) FindByUser(_ context.Context, userID string) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range r.byID {
		if b.User == userID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubBookingRepo) FindByOwner(_ context.Context, ownerID string) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range r.byID {
		if b.Owner == ownerID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubBookingRepo) UpdateStatus(_ context.Context, id string, status domain.BookingStatus) error {
	b, ok := r.byID[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (r *stubBookingRepo) FindStalePending(_ context.Context, pickupBefore time.Time) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range r.byID {
		if b.Status == domain.StatusPending && b.PickupDate.Before(pickupBefore) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

type stubCarRepo struct {
	byID       map[string]*domain.Car
	increments map[string]int
}

func newStubCarRepo(cars ...*domain.Car) *stubCarRepo {
	r := &stubCarRepo{byID: make(map[string]*domain.Car), increments: make(map[string]int)}
	for _, c := range cars {
		clone := *c
		r.byID[c.ID] = &clone
	}
	return r
}

func (r *stubCarRepo) Create(_ context.Context, car *domain.Car) (*domain.Car, error) {
	clone := *car
	if clone.ID == "" {
		clone.ID = fmt.Sprintf("car_%d", len(r.byID)+1)
	}
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCarRepo) FindByID(_ context.Context, id string) (*domain.Car, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCarNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCarRepo) FindAvailable(_ context.Context, filter ports.CarFilter) ([]*domain.Car, error) {
	var out []*domain.Car
	for _, c := range r.byID {
		if !c.IsAvailable {
			continue
		}
		if filter.Location != "" && c.Location != filter.Location {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubCarRepo) FindByOwner(_ context.Context, ownerID string) ([]*domain.Car, error) {
	var out []*domain.Car
	for _, c := range r.byID {
		if c.Owner == ownerID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubCarRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Car, error) {
	out := make(map[string]*domain.Car, len(ids))
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			clone := *c
			out[id] = &clone
		}
	}
	return out, nil
}

func (r *stubCarRepo) SetAvailability(_ context.Context, id string, available bool) error {
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrCarNotFound
	}
	c.IsAvailable = available
	return nil
}

func (r *stubCarRepo) IncrementTotalBookings(_ context.Context, id string, delta int) error {
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrCarNotFound
	}
	c.TotalBookings += delta
	r.increments[id] += delta
	return nil
}

func (r *stubCarRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrCarNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubUserRepo struct {
	byID map[string]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	clone := *u
	if clone.ID == "" {
		clone.ID = fmt.Sprintf("user_%d", len(r.byID)+1)
	}
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = at
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id, role string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

// stubLocker counts acquire/release pairs.
type stubLocker struct {
	acquired int
	released int
}

func (l *stubLocker) Acquire(_ context.Context, _ string) (func(), error) {
	l.acquired++
	return func() { l.released++ }, nil
}

// recordSink collects emitted booking events.
type recordSink struct {
	events []ports.BookingEvent
}

func (s *recordSink) Enqueue(ev ports.BookingEvent) {
	s.events = append(s.events, ev)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

type bookingFixture struct {
	svc      *BookingService
	bookings *stubBookingRepo
	cars     *stubCarRepo
	users    *stubUserRepo
	locks    *stubLocker
	sink     *recordSink
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings: newStubBookingRepo(),
		cars: newStubCarRepo(&domain.Car{
			ID:          "car_1",
			Owner:       "owner_1",
			Brand:       "Toyota",
			Model:       "Corolla",
			PricePerDay: 50,
			IsAvailable: true,
		}),
		users: newStubUserRepo(
			&domain.User{ID: "user_1", Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser, IsActive: true},
			&domain.User{ID: "owner_1", Name: "Bob", Email: "bob@example.com", Role: domain.RoleOwner, IsActive: true},
		),
		locks: &stubLocker{},
		sink:  &recordSink{},
	}
	f.svc = NewBookingService(f.bookings, f.cars, f.users, f.locks, f.sink, discardLogger)
	return f
}

func (f *bookingFixture) create(t *testing.T, pickup, ret string) *domain.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), ports.CreateBookingInput{
		UserID:     "user_1",
		CarID:      "car_1",
		PickupDate: day(pickup),
		ReturnDate: day(ret),
	})
	if err != nil {
		t.Fatalf("create booking [%s, %s]: %v", pickup, ret, err)
	}
	return b
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestBookingService_Create_Success(t *testing.T) {
	f := newBookingFixture()

	b := f.create(t, "2024-03-01", "2024-03-05")

	if b.Status != domain.StatusPending {
		t.Errorf("expected status pending, got %q", b.Status)
	}
	if b.Owner != "owner_1" {
		t.Errorf("owner not denormalized: %q", b.Owner)
	}
	// 5 inclusive days at 50/day.
	if b.Price != 250 {
		t.Errorf("expected price 250, got %v", b.Price)
	}
	if f.cars.increments["car_1"] != 1 {
		t.Errorf("totalBookings not incremented: %d", f.cars.increments["car_1"])
	}
	if f.locks.acquired != 1 || f.locks.released != 1 {
		t.Errorf("lock acquire/release = %d/%d, want 1/1", f.locks.acquired, f.locks.released)
	}
	if len(f.sink.events) != 1 || f.sink.events[0].Kind != ports.BookingCreated {
		t.Errorf("expected one booking_created event, got %+v", f.sink.events)
	}
}

func TestBookingService_Create_SameDayRentalCostsOneDay(t *testing.T) {
	f := newBookingFixture()
	b := f.create(t, "2024-03-01", "2024-03-01")
	if b.Price != 50 {
		t.Errorf("expected price 50 for a same-day rental, got %v", b.Price)
	}
}

func TestBookingService_Create_OverlapRejected(t *testing.T) {
	f := newBookingFixture()
	f.create(t, "2024-03-01", "2024-03-05")

	cases := []struct{ pickup, ret string }{
		{"2024-03-04", "2024-03-06"}, // partial overlap
		{"2024-03-01", "2024-03-05"}, // identical
		{"2024-02-28", "2024-03-10"}, // fully containing
		{"2024-03-02", "2024-03-03"}, // fully contained
		{"2024-03-05", "2024-03-07"}, // shared boundary day, no same-day turnover
	}
	for _, tc := range cases {
		_, err := f.svc.Create(context.Background(), ports.CreateBookingInput{
			UserID: "user_1", CarID: "car_1",
			PickupDate: day(tc.pickup), ReturnDate: day(tc.ret),
		})
		if !errors.Is(err, domain.ErrDatesUnavailable) {
			t.Errorf("[%s, %s]: expected ErrDatesUnavailable, got %v", tc.pickup, tc.ret, err)
		}
	}
}

func TestBookingService_Create_AdjacentRangeAccepted(t *testing.T) {
	f := newBookingFixture()
	f.create(t, "2024-03-01", "2024-03-05")

	// Next day after the return day is free.
	f.create(t, "2024-03-06", "2024-03-08")
}

func TestBookingService_Create_CancelledBookingDoesNotBlock(t *testing.T) {
	f := newBookingFixture()
	b := f.create(t, "2024-04-01", "2024-04-05")

	if _, err := f.svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{
		ActorID: "user_1", ActorRole: domain.RoleUser,
		BookingID: b.ID, Status: domain.StatusCancelled,
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	f.create(t, "2024-04-01", "2024-04-05")
}

func TestBookingService_Create_ReversedDatesRejectedBeforeAnyRead(t *testing.T) {
	f := newBookingFixture()

	_, err := f.svc.Create(context.Background(), ports.CreateBookingInput{
		UserID: "user_1", CarID: "car_1",
		PickupDate: day("2024-03-10"), ReturnDate: day("2024-03-08"),
	})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if f.bookings.findCalls != 0 {
		t.Error("validation must run before the conflict check")
	}
	if f.locks.acquired != 0 {
		t.Error("no lock should be taken for invalid input")
	}
}

func TestBookingService_Create_UnknownCar(t *testing.T) {
	f := newBookingFixture()
	_, err := f.svc.Create(context.Background(), ports.CreateBookingInput{
		UserID: "user_1", CarID: "car_missing",
		PickupDate: day("2024-03-01"), ReturnDate: day("2024-03-02"),
	})
	if !errors.Is(err, domain.ErrCarNotFound) {
		t.Fatalf("expected ErrCarNotFound, got %v", err)
	}
	if f.locks.released != f.locks.acquired {
		t.Error("lock must be released on failure")
	}
}

func TestBookingService_Create_UnavailableCar(t *testing.T) {
	f := newBookingFixture()
	f.cars.byID["car_1"].IsAvailable = false

	_, err := f.svc.Create(context.Background(), ports.CreateBookingInput{
		UserID: "user_1", CarID: "car_1",
		PickupDate: day("2024-03-01"), ReturnDate: day("2024-03-02"),
	})
	if !errors.Is(err, domain.ErrCarUnavailable) {
		t.Fatalf("expected ErrCarUnavailable, got %v", err)
	}
}

func TestBookingService_Create_NormalizesTimestampsToDays(t *testing.T) {
	f := newBookingFixture()

	b, err := f.svc.Create(context.Background(), ports.CreateBookingInput{
		UserID: "user_1", CarID: "car_1",
		PickupDate: time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC),
		ReturnDate: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !b.PickupDate.Equal(day("2024-03-01")) || !b.ReturnDate.Equal(day("2024-03-02")) {
		t.Errorf("dates not normalized: %v - %v", b.PickupDate, b.ReturnDate)
	}
}

// ---------------------------------------------------------------------------
// Availability
// ---------------------------------------------------------------------------

func TestBookingService_CarAvailability_UnknownCarIsEmpty(t *testing.T) {
	f := newBookingFixture()
	ranges, err := f.svc.CarAvailability(context.Background(), "car_missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 0 {
		t.Errorf("expected empty set, got %v", ranges)
	}
}

func TestBookingService_CarAvailability_ExcludesCancelled(t *testing.T) {
	f := newBookingFixture()
	kept := f.create(t, "2024-03-01", "2024-03-05")
	gone := f.create(t, "2024-05-01", "2024-05-05")

	if _, err := f.svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{
		ActorID: "owner_1", ActorRole: domain.RoleOwner,
		BookingID: gone.ID, Status: domain.StatusCancelled,
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	ranges, err := f.svc.CarAvailability(context.Background(), "car_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected one range, got %d", len(ranges))
	}
	if !ranges[0].PickupDate.Equal(kept.PickupDate) {
		t.Errorf("wrong range survived: %v", ranges[0])
	}
}

func TestBookingService_CarAvailability_Idempotent(t *testing.T) {
	f := newBookingFixture()
	f.create(t, "2024-03-01", "2024-03-05")

	first, err := f.svc.CarAvailability(context.Background(), "car_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.svc.CarAvailability(context.Background(), "car_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("result changed without writes: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].PickupDate.Equal(second[i].PickupDate) || !first[i].ReturnDate.Equal(second[i].ReturnDate) {
			t.Errorf("range %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	f := newBookingFixture()
	f.create(t, "2024-03-01", "2024-03-05")

	res, err := f.svc.CheckAvailability(context.Background(), "car_1",
		domain.DateRange{PickupDate: day("2024-03-04"), ReturnDate: day("2024-03-06")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Available {
		t.Error("overlapping range must be unavailable")
	}
	if len(res.BookedRanges) != 1 {
		t.Errorf("expected booked ranges in response, got %v", res.BookedRanges)
	}

	res, err = f.svc.CheckAvailability(context.Background(), "car_1",
		domain.DateRange{PickupDate: day("2024-03-06"), ReturnDate: day("2024-03-08")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Available {
		t.Error("adjacent range must be available")
	}

	if _, err := f.svc.CheckAvailability(context.Background(), "car_1",
		domain.DateRange{PickupDate: day("2024-03-10"), ReturnDate: day("2024-03-08")}); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Listings
// ---------------------------------------------------------------------------

func TestBookingService_ListForUser_AttachesCarSnapshot(t *testing.T) {
	f := newBookingFixture()
	f.create(t, "2024-03-01", "2024-03-05")

	bookings, err := f.svc.ListForUser(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected one booking, got %d", len(bookings))
	}
	if bookings[0].CarSnapshot == nil || bookings[0].CarSnapshot.Brand != "Toyota" {
		t.Errorf("car snapshot missing: %+v", bookings[0].CarSnapshot)
	}
}

// ---------------------------------------------------------------------------
// Status transitions
// ---------------------------------------------------------------------------

func TestBookingService_ChangeStatus_OwnerConfirms(t *testing.T) {
	f := newBookingFixture()
	b := f.create(t, "2024-03-01", "2024-03-05")

	updated, err := f.svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{
		ActorID: "owner_1", ActorRole: domain.RoleOwner,
		BookingID: b.ID, Status: domain.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusConfirmed {
		t.Errorf("expected confirmed, got %q", updated.Status)
	}

	last := f.sink.events[len(f.sink.events)-1]
	if last.Kind != ports.BookingConfirmed {
		t.Errorf("expected booking_confirmed event, got %q", last.Kind)
	}
}

func TestBookingService_ChangeStatus_RenterMayOnlyCancelOwn(t *testing.T) {
	f := newBookingFixture()
	b := f.create(t, "2024-03-01", "2024-03-05")

	// Renter confirming their own booking is forbidden.
	if _, err := f.svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{
		ActorID: "user_1", ActorRole: domain.RoleUser,
		BookingID: b.ID, Status: domain.StatusConfirmed,
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("renter confirm: expected ErrForbidden, got %v", err)
	}

	// A third party cancelling is forbidden.
	if _, err := f.svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{
		ActorID: "user_2", ActorRole: domain.RoleUser,
		BookingID: b.ID, Status: domain.StatusCancelled,
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger cancel: expected ErrForbidden, got %v", err)
	}

	// The renter cancelling their own booking is allowed.
	if _, err := f.svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{
		ActorID: "user_1", ActorRole: domain.RoleUser,
		BookingID: b.ID, Status: domain.StatusCancelled,
	}); err != nil {
		t.Errorf("renter cancel: %v", err)
	}
}

func TestBookingService_ChangeStatus_InvalidTransition(t *testing.T) {
	f := newBookingFixture()
	b := f.create(t, "2024-03-01", "2024-03-05")

	if _, err := f.svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{
		ActorID: "owner_1", ActorRole: domain.RoleOwner,
		BookingID: b.ID, Status: domain.StatusCancelled,
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{
		ActorID: "owner_1", ActorRole: domain.RoleOwner,
		BookingID: b.ID, Status: domain.StatusConfirmed,
	}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestBookingService_ChangeStatus_UnknownBooking(t *testing.T) {
	f := newBookingFixture()
	if _, err := f.svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{
		ActorID: "owner_1", ActorRole: domain.RoleOwner,
		BookingID: "nope", Status: domain.StatusConfirmed,
	}); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Expiry job
// ---------------------------------------------------------------------------

func TestBookingService_ExpireStalePending(t *testing.T) {
	f := newBookingFixture()

	// A pending booking with a pickup date in the past.
	stale, err := f.bookings.Create(context.Background(), &domain.Booking{
		Car: "car_1", User: "user_1", Owner: "owner_1",
		PickupDate: day("2020-01-01"), ReturnDate: day("2020-01-03"),
		Status: domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// A confirmed booking with a past pickup date must survive.
	kept, err := f.bookings.Create(context.Background(), &domain.Booking{
		Car: "car_1", User: "user_1", Owner: "owner_1",
		PickupDate: day("2020-02-01"), ReturnDate: day("2020-02-03"),
		Status: domain.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := f.svc.ExpireStalePending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired booking, got %d", n)
	}
	if f.bookings.byID[stale.ID].Status != domain.StatusCancelled {
		t.Error("stale pending booking not cancelled")
	}
	if f.bookings.byID[kept.ID].Status != domain.StatusConfirmed {
		t.Error("confirmed booking must not be touched")
	}
}
