package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/observability"
	"github.com/partline/quote-engine/internal/repository"
	"go.uber.org/zap"
)

// Notifier appends rows to the per-user notification feed. Insertion is
// best-effort: a failure is logged and counted but never propagated, so it
// cannot roll back the business transaction that triggered it.
type Notifier struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewNotifier(notifications repository.NotificationRepository, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Notifier{
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

func (n *Notifier) SetMetrics(metrics *observability.Metrics) {
	if n == nil {
		return
	}
	n.metrics = metrics
}

// Notify appends one feed row. The returned notification is nil when the
// insert failed; callers must not treat that as an error.
func (n *Notifier) Notify(
	ctx context.Context,
	recipientID string,
	role domain.Role,
	notificationType domain.NotificationType,
	title string,
	body string,
	requestID *string,
) *domain.Notification {
	notification := &domain.Notification{
		ID:            uuid.NewString(),
		RecipientID:   strings.TrimSpace(recipientID),
		RecipientRole: role,
		Type:          notificationType,
		Title:         strings.TrimSpace(title),
		Body:          strings.TrimSpace(body),
		RequestID:     requestID,
		CreatedAt:     n.now().UTC(),
	}

	if err := notification.Validate(); err != nil {
		n.logger.Error("invalid notification dropped",
			zap.String("recipientId", recipientID),
			zap.String("type", notificationType.String()),
			zap.Error(err),
		)
		return nil
	}

	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("failed to append notification",
			zap.String("recipientId", notification.RecipientID),
			zap.String("type", notificationType.String()),
			zap.Error(err),
		)
		if n.metrics != nil {
			n.metrics.IncNotificationDropped(notificationType.String())
		}
		return nil
	}

	if n.metrics != nil {
		n.metrics.IncNotificationCreated(notificationType.String())
	}
	return notification
}

func (n *Notifier) MarkRead(ctx context.Context, id, recipientID string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrValidation
	}
	return n.notifications.MarkRead(ctx, strings.TrimSpace(id), recipientID)
}

func (n *Notifier) List(
	ctx context.Context,
	recipientID string,
	params repository.NotificationListParams,
) ([]domain.Notification, int64, error) {
	return n.notifications.ListByRecipient(ctx, recipientID, params)
}
