package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/Sharky83/CarRental/docs"
	"github.com/Sharky83/CarRental/internal/api"
	"github.com/Sharky83/CarRental/internal/core/ports"
	"github.com/Sharky83/CarRental/internal/core/service"
	mongodb "github.com/Sharky83/CarRental/internal/infrastructure/db/mongo"
	redisdb "github.com/Sharky83/CarRental/internal/infrastructure/db/redis"
	"github.com/Sharky83/CarRental/internal/infrastructure/notify"
	"github.com/Sharky83/CarRental/internal/infrastructure/queue"
	"github.com/Sharky83/CarRental/internal/jobs"
	"github.com/Sharky83/CarRental/internal/pkg/config"
	"github.com/Sharky83/CarRental/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

//	@title			Car Rental API
//	@version		1.0
//	@description	Car rental marketplace: accounts, fleet management, availability checks and bookings.
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	cars := mongodb.NewCarRepository(db)
	bookings := mongodb.NewBookingRepository(db)

	indexCtx, cancelIndexes := context.WithTimeout(ctx, 30*time.Second)
	defer cancelIndexes()
	for _, ensure := range []func(context.Context) error{
		users.EnsureIndexes, cars.EnsureIndexes, bookings.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	// --- Notifications ---
	var notifier ports.Notifier
	if cfg.SendGrid.APIKey != "" {
		notifier = notify.NewSendGridNotifier(cfg.SendGrid.APIKey, cfg.SendGrid.FromName, cfg.SendGrid.FromEmail, log)
	} else {
		log.Warn().Msg("sendgrid not configured, booking emails disabled")
		notifier = notify.NewNopNotifier(log)
	}
	dispatcher := queue.NewDispatcher(cfg.NotifyWorkers, notifier, log)
	dispatcher.Start(ctx)

	// --- Services ---
	carLock := redisdb.NewCarLock(rdb)
	authService := service.NewAuthService(users, cfg.JWTSecret, cfg.JWTExpire)
	carService := service.NewCarService(cars, bookings, log)
	bookingService := service.NewBookingService(bookings, cars, users, carLock, dispatcher, log)

	// --- Background jobs ---
	scheduler := jobs.NewScheduler(bookingService, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Mongo:     db,
		Redis:     rdb,
		Users:     users,
		Auth:      authService,
		Cars:      carService,
		Bookings:  bookingService,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting cron runs, then drain in-flight requests.
	<-scheduler.Stop().Done()
	if err := e.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
