package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway operation outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeCached   = "cached"
)

var (
	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "icepay",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway operation latency in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "outcome"},
	)

	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icepay",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of gateway operations",
		},
		[]string{"operation", "outcome"},
	)
)

func init() {
	Registry.MustRegister(GatewayRequestDuration, GatewayRequestsTotal)
}

// ObserveGateway records one gateway operation that started at start.
func ObserveGateway(operation, outcome string, start time.Time) {
	GatewayRequestDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
	GatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
}
