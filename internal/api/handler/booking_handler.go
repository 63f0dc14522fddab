package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sharky83/CarRental/internal/core/domain"
	"github.com/Sharky83/CarRental/internal/core/ports"
)

// BookingHandler serves availability queries and the booking lifecycle.
type BookingHandler struct {
	bookings ports.BookingService
}

func NewBookingHandler(bookings ports.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// CarAvailability returns a car's occupied date ranges so clients can render
// a booking calendar. Public; unknown cars yield an empty set. The ranges
// travel under the "bookings" key, the shape date pickers already consume.
//
//	@Summary	Occupied date ranges for a car
//	@Tags		bookings
//	@Produce	json
//	@Param		carId	path	string	true	"car id"
//	@Success	200	{object}	map[string]any
//	@Router		/api/public-bookings/car/{carId} [get]
func (h *BookingHandler) CarAvailability(c echo.Context) error {
	carID := c.Param("carId")
	if carID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing car id")
	}

	ranges, err := h.bookings.CarAvailability(c.Request().Context(), carID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", envelope{"bookings": ranges})
}

// CheckAvailability reports whether a car is free for a date range, without
// reserving anything.
//
//	@Summary	Check a car's availability for a date range
//	@Tags		bookings
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	checkAvailabilityRequest	true	"car and dates"
//	@Success	200		{object}	map[string]any
//	@Router		/api/bookings/check-availability [post]
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	var req checkAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	r, err := requestRange(req.PickupDate, req.ReturnDate)
	if err != nil {
		return err
	}

	res, err := h.bookings.CheckAvailability(c.Request().Context(), req.CarID, r)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", envelope{
		"isAvailable":  res.Available,
		"bookedRanges": res.BookedRanges,
	})
}

// Create books a car for the authenticated renter.
//
//	@Summary	Create a booking
//	@Tags		bookings
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		payload	body	createBookingRequest	true	"car and dates"
//	@Success	201		{object}	map[string]any
//	@Router		/api/bookings/create [post]
func (h *BookingHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	r, err := requestRange(req.PickupDate, req.ReturnDate)
	if err != nil {
		return err
	}

	booking, err := h.bookings.Create(c.Request().Context(), ports.CreateBookingInput{
		UserID:     userID,
		CarID:      req.CarID,
		PickupDate: r.PickupDate,
		ReturnDate: r.ReturnDate,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Booking created", envelope{"booking": booking})
}

// UserBookings lists the authenticated renter's bookings, newest first.
//
//	@Summary	List the renter's bookings
//	@Tags		bookings
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]any
//	@Router		/api/bookings/user [get]
func (h *BookingHandler) UserBookings(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	bookings, err := h.bookings.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", envelope{"bookings": bookings})
}

// OwnerBookings lists bookings against all of the authenticated owner's cars.
//
//	@Summary	List bookings on the owner's cars
//	@Tags		bookings
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]any
//	@Router		/api/bookings/owner [get]
func (h *BookingHandler) OwnerBookings(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	bookings, err := h.bookings.ListForOwner(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", envelope{"bookings": bookings})
}

// ChangeStatus applies a booking status transition on behalf of the
// authenticated actor. Owners manage bookings on their cars; renters may
// only cancel their own.
//
//	@Summary	Change a booking's status
//	@Tags		bookings
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		payload	body	changeStatusRequest	true	"booking id and target status"
//	@Success	200		{object}	map[string]any
//	@Router		/api/bookings/change-status [post]
func (h *BookingHandler) ChangeStatus(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.bookings.ChangeStatus(c.Request().Context(), ports.ChangeStatusInput{
		ActorID:   userID,
		ActorRole: role,
		BookingID: req.BookingID,
		Status:    domain.BookingStatus(req.Status),
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Status updated", envelope{"booking": booking})
}

// requestRange parses wire dates into a normalized day interval.
func requestRange(pickup, ret string) (domain.DateRange, error) {
	p, err := parseDay(pickup)
	if err != nil {
		return domain.DateRange{}, err
	}
	r, err := parseDay(ret)
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.DateRange{PickupDate: p, ReturnDate: r}, nil
}
