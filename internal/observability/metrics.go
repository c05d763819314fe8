package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by API and worker flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDuration     *prometheus.HistogramVec
	requestsDistributed     *prometheus.CounterVec
	entriesDeliveredTotal   prometheus.Counter
	quotesSubmittedTotal    prometheus.Counter
	quotesAcceptedTotal     prometheus.Counter
	acceptConflictsTotal    prometheus.Counter
	requestsExpiredTotal    prometheus.Counter
	notificationsCreated    *prometheus.CounterVec
	notificationsDropped    *prometheus.CounterVec
	notificationsDispatched *prometheus.CounterVec
	workerScansInflight     prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "quote_engine",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		requestsDistributed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "requests_distributed_total",
				Help:      "Total number of queue entries fanned out, grouped by request urgency.",
			},
			[]string{"urgency"},
		),
		entriesDeliveredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "entries_delivered_total",
				Help:      "Total number of queue entries released to seller inboxes.",
			},
		),
		quotesSubmittedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "quotes_submitted_total",
				Help:      "Total number of quotes submitted by sellers, including supersedes.",
			},
		),
		quotesAcceptedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "quotes_accepted_total",
				Help:      "Total number of quotes accepted by buyers.",
			},
		),
		acceptConflictsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "accept_conflicts_total",
				Help:      "Total number of acceptance attempts rejected because a winner already exists.",
			},
		),
		requestsExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "requests_expired_total",
				Help:      "Total number of part requests moved to expired state by the sweeper.",
			},
		),
		notificationsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "notifications_created_total",
				Help:      "Total number of notification records written, grouped by type.",
			},
			[]string{"type"},
		),
		notificationsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "notifications_dropped_total",
				Help:      "Total number of notifications lost to persistence failures, grouped by type.",
			},
			[]string{"type"},
		),
		notificationsDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quote_engine",
				Name:      "notifications_dispatched_total",
				Help:      "Total number of notifications published to the gateway queues, grouped by type.",
			},
			[]string{"type"},
		),
		workerScansInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "quote_engine",
				Name:      "worker_scans_inflight",
				Help:      "Number of background worker scans currently running.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.requestsDistributed,
		m.entriesDeliveredTotal,
		m.quotesSubmittedTotal,
		m.quotesAcceptedTotal,
		m.acceptConflictsTotal,
		m.requestsExpiredTotal,
		m.notificationsCreated,
		m.notificationsDropped,
		m.notificationsDispatched,
		m.workerScansInflight,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncRequestDistributed(urgency string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.requestsDistributed.WithLabelValues(normalizeLabel(urgency)).Add(float64(count))
}

func (m *Metrics) IncEntryDelivered() {
	if m == nil {
		return
	}
	m.entriesDeliveredTotal.Inc()
}

func (m *Metrics) IncQuoteSubmitted() {
	if m == nil {
		return
	}
	m.quotesSubmittedTotal.Inc()
}

func (m *Metrics) IncQuoteAccepted() {
	if m == nil {
		return
	}
	m.quotesAcceptedTotal.Inc()
}

func (m *Metrics) IncAcceptConflict() {
	if m == nil {
		return
	}
	m.acceptConflictsTotal.Inc()
}

func (m *Metrics) IncRequestExpired() {
	if m == nil {
		return
	}
	m.requestsExpiredTotal.Inc()
}

func (m *Metrics) IncNotificationCreated(notificationType string) {
	if m == nil {
		return
	}
	m.notificationsCreated.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

func (m *Metrics) IncNotificationDropped(notificationType string) {
	if m == nil {
		return
	}
	m.notificationsDropped.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

func (m *Metrics) IncNotificationDispatched(notificationType string) {
	if m == nil {
		return
	}
	m.notificationsDispatched.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

// TrackWorkerScan marks a background scan as running and returns a done
// callback for the caller to defer.
func (m *Metrics) TrackWorkerScan() func() {
	if m == nil {
		return func() {}
	}
	m.workerScansInflight.Inc()
	return m.workerScansInflight.Dec
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
