package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook outcome labels. One per terminal branch of the ingestion handler,
// so operators can tell bad-token floods from provider retries on a graph.
const (
	OutcomeCreated      = "created"
	OutcomeReconciled   = "reconciled"
	OutcomeIgnored      = "ignored_direction"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid_payload"
	OutcomeError        = "store_error"
	OutcomeRateLimited  = "rate_limited"
)

// Metrics holds all Prometheus metrics for the API process.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	WebhookEventsTotal *prometheus.CounterVec
	LeadsCapturedTotal *prometheus.CounterVec
}

var metrics *Metrics

// Init initializes all Prometheus metrics. Safe to call more than once;
// promauto registers globally, so the singleton guards double registration.
func Init() *Metrics {
	if metrics != nil {
		return metrics
	}

	metrics = &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		WebhookEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "Call-event webhook deliveries by terminal outcome",
			},
			[]string{"outcome"},
		),
		LeadsCapturedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_captured_total",
				Help: "Leads written by the ingestion path, by initial status",
			},
			[]string{"status"},
		),
	}
	return metrics
}

// WebhookOutcome records one terminal webhook result. Nil-safe so handlers
// stay testable without a registry.
func (m *Metrics) WebhookOutcome(outcome string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LeadCaptured(status string) {
	if m == nil {
		return
	}
	m.LeadsCapturedTotal.WithLabelValues(status).Inc()
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
