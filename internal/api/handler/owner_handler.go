package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sharky83/CarRental/internal/core/ports"
)

// OwnerHandler serves fleet management for car owners.
type OwnerHandler struct {
	auth ports.AuthService
	cars ports.CarService
}

func NewOwnerHandler(auth ports.AuthService, cars ports.CarService) *OwnerHandler {
	return &OwnerHandler{auth: auth, cars: cars}
}

// ChangeRole upgrades the authenticated account to the owner role so it can
// list cars. Idempotent.
//
//	@Summary	Become a car owner
//	@Tags		owner
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]any
//	@Router		/api/owner/change-role [post]
func (h *OwnerHandler) ChangeRole(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.auth.ChangeRole(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Now you can list cars", envelope{"user": user})
}

// AddCar lists a new car under the authenticated owner.
//
//	@Summary	List a new car
//	@Tags		owner
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		payload	body	addCarRequest	true	"car details"
//	@Success	201		{object}	map[string]any
//	@Router		/api/owner/add-car [post]
func (h *OwnerHandler) AddCar(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req addCarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	car, err := h.cars.Add(c.Request().Context(), ports.AddCarInput{
		OwnerID:         userID,
		Brand:           req.Brand,
		Model:           req.Model,
		Image:           req.Image,
		Year:            req.Year,
		Category:        req.Category,
		SeatingCapacity: req.SeatingCapacity,
		FuelType:        req.FuelType,
		Transmission:    req.Transmission,
		PricePerDay:     req.PricePerDay,
		Location:        req.Location,
		Description:     req.Description,
		Features:        req.Features,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Car added", envelope{"car": car})
}

// Cars lists the authenticated owner's fleet, available or not.
//
//	@Summary	List the owner's cars
//	@Tags		owner
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]any
//	@Router		/api/owner/cars [get]
func (h *OwnerHandler) Cars(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	cars, err := h.cars.ListForOwner(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", envelope{"cars": cars})
}

// ToggleCar flips a car's availability flag.
//
//	@Summary	Toggle a car's availability
//	@Tags		owner
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		payload	body	carIDRequest	true	"car id"
//	@Success	200		{object}	map[string]any
//	@Router		/api/owner/toggle-car [post]
func (h *OwnerHandler) ToggleCar(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req carIDRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	car, err := h.cars.ToggleAvailability(c.Request().Context(), userID, req.CarID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Availability toggled", envelope{"car": car})
}

// DeleteCar removes a car from the catalogue.
//
//	@Summary	Remove a car
//	@Tags		owner
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		payload	body	carIDRequest	true	"car id"
//	@Success	200		{object}	map[string]any
//	@Router		/api/owner/delete-car [post]
func (h *OwnerHandler) DeleteCar(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req carIDRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.cars.Delete(c.Request().Context(), userID, req.CarID); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Car removed", nil)
}

// Dashboard aggregates the owner's fleet and booking activity.
//
//	@Summary	Owner dashboard aggregates
//	@Tags		owner
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]any
//	@Router		/api/owner/dashboard [get]
func (h *OwnerHandler) Dashboard(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	data, err := h.cars.Dashboard(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", envelope{"dashboardData": dashboardResponse{
		TotalCars:         data.TotalCars,
		TotalBookings:     data.TotalBookings,
		PendingBookings:   data.PendingBookings,
		CompletedBookings: data.ConfirmedBookings,
		RecentBookings:    data.RecentBookings,
		MonthlyRevenue:    data.MonthlyRevenue,
	}})
}

// dashboardResponse mirrors the dashboard card layout expected by clients.
type dashboardResponse struct {
	TotalCars         int     `json:"totalCars"`
	TotalBookings     int     `json:"totalBookings"`
	PendingBookings   int     `json:"pendingBookings"`
	CompletedBookings int     `json:"completedBookings"`
	RecentBookings    any     `json:"recentBookings"`
	MonthlyRevenue    float64 `json:"monthlyRevenue"`
}
