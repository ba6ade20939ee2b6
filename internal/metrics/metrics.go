package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isuumo_cache_lookups_total",
			Help: "Response cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ChairPurchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isuumo_chair_purchases_total",
			Help: "Chair purchase attempts by result (ok, sold_out, error)",
		},
		[]string{"result"},
	)

	ImportedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isuumo_imported_rows_total",
			Help: "Rows committed by CSV import",
		},
		[]string{"catalog"},
	)

	NazotteCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "isuumo_nazotte_candidates",
			Help:    "Bounding-box candidates examined per polygon search",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 40, 50},
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "isuumo_http_request_duration_seconds",
			Help: "HTTP request latency by route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// Middleware observes request latency keyed by the matched route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		RequestDuration.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
