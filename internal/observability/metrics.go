package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the Prometheus collectors exported on /metrics. Each instance
// owns its registry so several can coexist in one process.
type Metrics struct {
	registry    *prometheus.Registry
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
	logins      *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "Requests that ended with an application error, by error code.",
		}, []string{"method", "path", "code"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staff_logins_total",
			Help:      "Staff login attempts by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.reqDuration,
		m.reqInflight,
		m.reqErrors,
		m.logins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest observes a finished request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.reqDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordError counts an error rendered by the error middleware.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.reqErrors.WithLabelValues(method, path, code).Inc()
}

// RecordLogin counts a login attempt. outcome is "success" or the failure kind.
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// RequestLogger logs every request and feeds the request metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if metrics != nil {
			metrics.reqInflight.Inc()
			defer metrics.reqInflight.Dec()
		}

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()
		path := routePath(c)
		metrics.RecordRequest(path, c.Method(), status, duration)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		}
		if status >= 500 {
			logger.Warn("request", fields...)
		} else {
			logger.Debug("request", fields...)
		}
		return err
	}
}

// routePath prefers the matched route pattern to keep label cardinality bounded.
func routePath(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return c.Path()
}
