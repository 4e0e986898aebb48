package api

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// httpMetrics holds the request counters. Registered once; tests build
// multiple servers against the same default registry.
type httpMetrics struct {
	requestsTotal *prometheus.CounterVec
	requestDur    *prometheus.HistogramVec
}

var (
	httpMetricsOnce sync.Once
	httpM           *httpMetrics
)

func getHTTPMetrics() *httpMetrics {
	httpMetricsOnce.Do(func() {
		httpM = &httpMetrics{
			requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dayplan_http_requests_total",
				Help: "HTTP requests by method, route and status.",
			}, []string{"method", "route", "status"}),
			requestDur: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "dayplan_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			}, []string{"method", "route"}),
		}
	})
	return httpM
}

// metricsMiddleware records one observation per request, labeled with the
// route pattern (":id" stays a placeholder) to keep cardinality bounded.
func metricsMiddleware() echo.MiddlewareFunc {
	m := getHTTPMetrics()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := c.Response().Status

			m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.requestDur.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
