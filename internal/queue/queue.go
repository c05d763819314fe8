package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/partline/quote-engine/internal/domain"
)

// Publisher publishes notification messages for the outbound messaging
// gateway (email/SMS), which consumes these queues on its own side.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg NotificationMessage) error
	Close() error
}

var gatewayRoles = []domain.Role{
	domain.RoleBuyer,
	domain.RoleSeller,
}

const (
	// queueMaxPriority is the RabbitMQ x-max-priority value for gateway queues.
	queueMaxPriority int32 = 3
)

// GatewayQueueName returns the per-role gateway queue name, e.g. notify.buyer.
func GatewayQueueName(role domain.Role) string {
	return fmt.Sprintf("notify.%s", strings.ToLower(role.String()))
}

// DLQName returns the dead-letter queue name for a role, e.g. dlq.notify.buyer.
func DLQName(role domain.Role) string {
	return fmt.Sprintf("dlq.%s", GatewayQueueName(role))
}

// GatewayQueueNames returns all gateway queues (2 total).
func GatewayQueueNames() []string {
	queues := make([]string, 0, len(gatewayRoles))
	for _, role := range gatewayRoles {
		queues = append(queues, GatewayQueueName(role))
	}
	return queues
}

// DLQNames returns all dead-letter queues (2 total).
func DLQNames() []string {
	queues := make([]string, 0, len(gatewayRoles))
	for _, role := range gatewayRoles {
		queues = append(queues, DLQName(role))
	}
	return queues
}

// PriorityValue maps a notification type to RabbitMQ message priority, so
// acceptance outcomes jump the gateway queue ahead of feed chatter.
func PriorityValue(t domain.NotificationType) uint8 {
	switch t {
	case domain.NotificationQuoteAccepted, domain.NotificationQuoteRejected:
		return 3
	case domain.NotificationNewQuote, domain.NotificationRequestExpiring, domain.NotificationRequestExpired:
		return 2
	case domain.NotificationSubscriptionEvent:
		return 1
	default:
		return 0
	}
}
