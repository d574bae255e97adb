package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/forgelight/crucible/internal/domain"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Crafting Metrics
var (
	CraftsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCraftsTotal,
			Help: HelpTextCraftsTotal,
		},
		[]string{LabelResult},
	)

	BrewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBrewsTotal,
			Help: HelpTextBrewsTotal,
		},
		[]string{LabelOutcome},
	)

	DelayedDeliveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDelayedDeliveriesTotal,
			Help: HelpTextDelayedDeliveriesTotal,
		},
	)

	RecipesImportedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRecipesImportedTotal,
			Help: HelpTextRecipesImportedTotal,
		},
	)
)

// RecordCraft counts one crafting transaction by result label.
func RecordCraft(result string) {
	CraftsTotal.WithLabelValues(result).Inc()
}

// RecordBrew counts one cauldron brew by outcome.
func RecordBrew(outcome string) {
	BrewsTotal.WithLabelValues(outcome).Inc()
}

// RecordDelayedDeliveries counts delivered delayed-craft entries.
func RecordDelayedDeliveries(count int) {
	DelayedDeliveriesTotal.Add(float64(count))
}

// CraftResult maps a crafting error to its result label.
func CraftResult(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, domain.ErrToolMissing):
		return ResultToolMissing
	case errors.Is(err, domain.ErrInsufficientResource):
		return ResultInsufficientResource
	case errors.Is(err, domain.ErrCraftFailedNotConsumed):
		return ResultFailedNotConsumed
	case errors.Is(err, domain.ErrCraftFailedConsumed):
		return ResultFailedConsumed
	default:
		return ResultError
	}
}
