package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sharky83/CarRental/internal/core/ports"
)

// UserHandler serves account registration, login, profile data and the
// public car catalogue.
type UserHandler struct {
	auth ports.AuthService
	cars ports.CarService
}

func NewUserHandler(auth ports.AuthService, cars ports.CarService) *UserHandler {
	return &UserHandler{auth: auth, cars: cars}
}

// Register creates an account and returns a session token.
//
//	@Summary	Register a new account
//	@Tags		user
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	registerRequest	true	"account details"
//	@Success	201		{object}	map[string]any
//	@Router		/api/user/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "", envelope{"token": res.Token, "user": res.User})
}

// Login authenticates an account and returns a session token.
//
//	@Summary	Log in with e-mail and password
//	@Tags		user
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	loginRequest	true	"credentials"
//	@Success	200		{object}	map[string]any
//	@Router		/api/user/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", envelope{"token": res.Token, "user": res.User})
}

// Data returns the authenticated user's profile.
//
//	@Summary	Get the authenticated user's profile
//	@Tags		user
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]any
//	@Router		/api/user/data [get]
func (h *UserHandler) Data(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.auth.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", envelope{"user": user})
}

// Cars lists all cars currently open for booking. Public.
//
//	@Summary	List available cars
//	@Tags		user
//	@Produce	json
//	@Param		location	query	string	false	"filter by location"
//	@Param		category	query	string	false	"filter by category"
//	@Success	200	{object}	map[string]any
//	@Router		/api/user/cars [get]
func (h *UserHandler) Cars(c echo.Context) error {
	filter := ports.CarFilter{
		Location: c.QueryParam("location"),
		Category: c.QueryParam("category"),
	}

	cars, err := h.cars.ListAvailable(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", envelope{"cars": cars})
}
