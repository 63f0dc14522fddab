package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Sharky83/CarRental/internal/core/domain"
)

// dateLayout is the wire format for rental days. Times of day are never
// meaningful; everything is normalized to midnight UTC on the way in.
const dateLayout = "2006-01-02"

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid date: "+s)
	}
	return domain.Day(t), nil
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=user owner"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type addCarRequest struct {
	Brand           string   `json:"brand" validate:"required"`
	Model           string   `json:"model" validate:"required"`
	Image           string   `json:"image"`
	Year            int      `json:"year" validate:"required,gt=1900"`
	Category        string   `json:"category" validate:"required"`
	SeatingCapacity int      `json:"seating_capacity" validate:"required,gt=0"`
	FuelType        string   `json:"fuel_type" validate:"required"`
	Transmission    string   `json:"transmission" validate:"required"`
	PricePerDay     float64  `json:"pricePerDay" validate:"required,gt=0"`
	Location        string   `json:"location" validate:"required"`
	Description     string   `json:"description"`
	Features        []string `json:"features"`
}

type carIDRequest struct {
	CarID string `json:"carId" validate:"required"`
}

type checkAvailabilityRequest struct {
	CarID      string `json:"car" validate:"required"`
	PickupDate string `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	ReturnDate string `json:"returnDate" validate:"required,datetime=2006-01-02"`
}

type createBookingRequest struct {
	CarID      string `json:"car" validate:"required"`
	PickupDate string `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	ReturnDate string `json:"returnDate" validate:"required,datetime=2006-01-02"`
}

type changeStatusRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}
