package provider

import (
	"context"

	"github.com/partline/quote-engine/internal/domain"
)

// Provider is the direct push port to the outbound messaging gateway. The
// durable path is the queue; a provider mirrors dispatched notifications to
// an HTTP endpoint for gateways that prefer push over consuming the queue.
type Provider interface {
	Send(ctx context.Context, notification domain.Notification) (*SendReceipt, error)
}

// SendReceipt stores gateway call metadata for audit logging.
type SendReceipt struct {
	StatusCode int
	Body       string
	MessageID  string
}
