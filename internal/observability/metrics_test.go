package observability

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsDomainCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncRequestDistributed("HIGH", 3)
	metrics.IncRequestDistributed("high", 0)
	metrics.IncEntryDelivered()
	metrics.IncQuoteSubmitted()
	metrics.IncQuoteAccepted()
	metrics.IncAcceptConflict()
	metrics.IncRequestExpired()
	metrics.IncNotificationCreated("NEW_QUOTE")
	metrics.IncNotificationDropped("new_quote")
	metrics.IncNotificationDispatched("QUOTE_ACCEPTED")

	if got := testutil.ToFloat64(metrics.requestsDistributed.WithLabelValues("high")); got != 3 {
		t.Fatalf("requests_distributed_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.entriesDeliveredTotal); got != 1 {
		t.Fatalf("entries_delivered_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.quotesSubmittedTotal); got != 1 {
		t.Fatalf("quotes_submitted_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.acceptConflictsTotal); got != 1 {
		t.Fatalf("accept_conflicts_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.notificationsCreated.WithLabelValues("new_quote")); got != 1 {
		t.Fatalf("notifications_created_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.notificationsDropped.WithLabelValues("new_quote")); got != 1 {
		t.Fatalf("notifications_dropped_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.notificationsDispatched.WithLabelValues("quote_accepted")); got != 1 {
		t.Fatalf("notifications_dispatched_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	_, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}
