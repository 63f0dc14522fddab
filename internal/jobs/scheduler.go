// Package jobs wires periodic maintenance tasks over the booking data.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Sharky83/CarRental/internal/core/ports"
)

// expireSchedule runs at the top of every hour. Expiry only needs day
// granularity, but an hourly sweep keeps the calendar fresh shortly after
// midnight in every timezone renters book from.
const expireSchedule = "0 * * * *"

// Scheduler owns the cron runner for booking maintenance.
type Scheduler struct {
	cron     *cron.Cron
	bookings ports.BookingService
	log      zerolog.Logger
}

func NewScheduler(bookings ports.BookingService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		bookings: bookings,
		log:      log,
	}
}

// Start registers the jobs and launches the cron runner.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(expireSchedule, s.expireStalePending)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) expireStalePending() {
	n, err := s.bookings.ExpireStalePending(context.Background())
	if err != nil {
		s.log.Error().Err(err).Msg("stale booking expiry failed")
		return
	}
	if n > 0 {
		s.log.Info().Int("count", n).Msg("stale pending bookings cancelled")
	}
}
