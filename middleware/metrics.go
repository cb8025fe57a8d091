// middleware/metrics.go
package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	arbitrationDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbitration_decisions_total",
			Help: "Total number of submission approve/reject decisions",
		},
		[]string{"decision", "outcome"},
	)
)

// MetricsMiddleware records request counts and latencies per route pattern.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Route().Path gives the registered pattern (":id" not the value),
		// keeping label cardinality bounded.
		endpoint := c.Route().Path
		if endpoint == "" {
			endpoint = "unknown"
		}

		status := strconv.Itoa(c.Response().StatusCode())
		httpRequestsTotal.WithLabelValues(c.Method(), endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), endpoint).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordArbitration counts approve/reject outcomes.
func RecordArbitration(decision string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	arbitrationDecisionsTotal.WithLabelValues(decision, outcome).Inc()
}
