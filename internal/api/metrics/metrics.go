// Package metrics defines and registers all custom Prometheus metrics for the
// car-rental API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register themselves with the default registry via
// promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carrental"

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsCreatedTotal counts bookings that passed validation and the
// conflict check and were persisted.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings successfully created.",
	},
)

// BookingConflictsTotal counts booking requests rejected because the
// requested date range overlapped an existing non-cancelled booking.
var BookingConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_conflicts_total",
		Help:      "Total number of booking requests rejected due to date-range conflicts.",
	},
)

// AvailabilityChecksTotal counts explicit availability checks (the public
// check endpoint), not the authoritative re-check inside booking creation.
var AvailabilityChecksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "availability_checks_total",
		Help:      "Total number of availability checks served.",
	},
)

// BookingsExpiredTotal counts pending bookings auto-cancelled by the
// background expiry job.
var BookingsExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_expired_total",
		Help:      "Total number of stale pending bookings auto-cancelled.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsSentTotal counts booking notifications delivered.
// Label:
//   - kind: the lifecycle event (e.g. "booking_created")
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of booking notifications delivered.",
	},
	[]string{"kind"},
)

// NotificationErrorsTotal counts notification deliveries that failed.
var NotificationErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_errors_total",
		Help:      "Total number of booking notifications that failed to send.",
	},
	[]string{"kind"},
)

// NotifyQueueDepth tracks the number of events waiting in each dispatcher
// worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotifyQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notify_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
