package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Sharky83/CarRental/internal/api/metrics"
	"github.com/Sharky83/CarRental/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes booking lifecycle events to a fixed set of workers using
// consistent hashing on the booking id, so the notifications for a single
// booking are delivered in order. Delivery runs off the request path; a full
// worker buffer drops the event rather than blocking a booking request.
type Dispatcher struct {
	workers  []chan ports.BookingEvent
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.BookingEvent, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.BookingEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its booking id.
func (d *Dispatcher) Enqueue(ev ports.BookingEvent) {
	i := d.shardIndex(ev.Booking.ID)
	select {
	case d.workers[i] <- ev:
		metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	default:
		d.log.Warn().
			Str("booking", ev.Booking.ID).
			Int("worker_id", i).
			Msg("notification queue full, event dropped")
	}
}

// shardIndex maps a booking id deterministically to a worker index.
func (d *Dispatcher) shardIndex(bookingID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(bookingID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.BookingEvent) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotifyQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := d.notifier.Notify(ctx, ev); err != nil {
				metrics.NotificationErrorsTotal.WithLabelValues(string(ev.Kind)).Inc()
				d.log.Error().Err(err).
					Str("booking", ev.Booking.ID).
					Int("worker_id", id).
					Msg("notification delivery failed")
				continue
			}
			metrics.NotificationsSentTotal.WithLabelValues(string(ev.Kind)).Inc()
		}
	}
}
