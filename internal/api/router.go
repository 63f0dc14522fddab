package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sharky83/CarRental/internal/api/handler"
	"github.com/Sharky83/CarRental/internal/api/middleware"
	"github.com/Sharky83/CarRental/internal/core/domain"
	"github.com/Sharky83/CarRental/internal/core/ports"
)

// Deps carries everything the router needs. Services are constructed by the
// caller so the same instances can be shared with background jobs.
type Deps struct {
	Mongo     *mongo.Database
	Redis     *redis.Client
	Users     ports.UserRepository
	Auth      ports.AuthService
	Cars      ports.CarService
	Bookings  ports.BookingService
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("2M"))
	e.Use(echoprometheus.NewMiddleware("carrental"))

	// --- Handlers ---
	userHandler := handler.NewUserHandler(deps.Auth, deps.Cars)
	ownerHandler := handler.NewOwnerHandler(deps.Auth, deps.Cars)
	bookingHandler := handler.NewBookingHandler(deps.Bookings)
	healthHandler := handler.NewHealthHandler(deps.Mongo, deps.Redis)

	auth := middleware.Auth(deps.JWTSecret, deps.Users)
	ownerOnly := middleware.RequireRole(domain.RoleOwner)

	// --- Operational routes ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	api := e.Group("/api")

	// --- Accounts and public catalogue ---
	user := api.Group("/user")
	user.POST("/register", userHandler.Register)
	user.POST("/login", userHandler.Login)
	user.GET("/data", userHandler.Data, auth)
	user.GET("/cars", userHandler.Cars)

	// --- Owner fleet management ---
	owner := api.Group("/owner", auth)
	owner.POST("/change-role", ownerHandler.ChangeRole)
	owner.POST("/add-car", ownerHandler.AddCar, ownerOnly)
	owner.GET("/cars", ownerHandler.Cars, ownerOnly)
	owner.POST("/toggle-car", ownerHandler.ToggleCar, ownerOnly)
	owner.POST("/delete-car", ownerHandler.DeleteCar, ownerOnly)
	owner.GET("/dashboard", ownerHandler.Dashboard, ownerOnly)

	// --- Bookings ---
	api.GET("/public-bookings/car/:carId", bookingHandler.CarAvailability)

	bookings := api.Group("/bookings")
	// Alias kept for clients using the bookings prefix.
	bookings.GET("/car/:carId", bookingHandler.CarAvailability)
	bookings.POST("/check-availability", bookingHandler.CheckAvailability)
	bookings.POST("/create", bookingHandler.Create, auth)
	bookings.GET("/user", bookingHandler.UserBookings, auth)
	bookings.GET("/owner", bookingHandler.OwnerBookings, auth, ownerOnly)
	bookings.POST("/change-status", bookingHandler.ChangeStatus, auth)

	return e
}
