package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yuzvak/retail-coordination-service/internal/domain/events"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	SalesCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_completed_total",
			Help: "Total number of completed sales by payment mode",
		},
		[]string{"payment_mode"},
	)

	SalesAccountedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_accounted_total",
			Help: "Total number of sales accounted against store stock",
		},
	)

	InvalidBarcodesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invalid_barcodes_total",
			Help: "Total number of scanned barcodes without a product",
		},
	)

	InvalidTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_invalid_transitions_total",
			Help: "Total number of checkout actions rejected in an illegal state",
		},
		[]string{"checkout"},
	)

	ExpressModeEnabledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "express_mode_enabled_total",
			Help: "Total number of express-mode activations on cash desks",
		},
	)

	OptimizerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "optimizer_runs_total",
			Help: "Total number of optimizer invocations for rebalancing",
		},
	)

	OptimizerFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "optimizer_failures_total",
			Help: "Total number of failed optimizer invocations",
		},
	)

	ReservationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_reservation_failures_total",
			Help: "Total number of failed sibling-store reservation calls",
		},
		[]string{"store"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published to the fabric",
		},
		[]string{"kind"},
	)
)

// ObserveEvent records fabric-level counters for a published envelope. The
// bus implementations call it so the domain packages stay metrics-free.
func ObserveEvent(env events.Envelope) {
	EventsPublishedTotal.WithLabelValues(string(env.Kind)).Inc()

	switch env.Kind {
	case events.KindInvalidBarcode:
		InvalidBarcodesTotal.Inc()
	case events.KindExpressModeEnabled:
		// The coordinator's command travels on the store topic; the desk
		// confirms an actual activation on its own checkout topic.
		if events.IsCheckoutTopic(env.Topic) {
			ExpressModeEnabledTotal.Inc()
		}
	}
}

var (
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of database connections in use",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
