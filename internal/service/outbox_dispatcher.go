package service

import (
	"context"
	"fmt"
	"time"

	"github.com/partline/quote-engine/internal/observability"
	"github.com/partline/quote-engine/internal/provider"
	"github.com/partline/quote-engine/internal/queue"
	"github.com/partline/quote-engine/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultOutboxScanInterval = 5 * time.Second
	defaultOutboxScanLimit    = 100
)

// OutboxDispatcher drains undispatched notification rows to the outbound
// messaging gateway queue. Delivery is at-least-once: a publish failure
// leaves the row undispatched, and the next scan picks it up again.
type OutboxDispatcher struct {
	notifications repository.NotificationRepository
	publisher     queue.Publisher
	webhook       provider.Provider
	logger        *zap.Logger
	metrics       *observability.Metrics
	interval      time.Duration
	limit         int
	now           func() time.Time
}

func NewOutboxDispatcher(
	notifications repository.NotificationRepository,
	publisher queue.Publisher,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) (*OutboxDispatcher, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if interval <= 0 {
		interval = defaultOutboxScanInterval
	}
	if limit <= 0 {
		limit = defaultOutboxScanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OutboxDispatcher{
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
		interval:      interval,
		limit:         limit,
		now:           time.Now,
	}, nil
}

func (d *OutboxDispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// SetWebhook enables a best-effort push mirror alongside the queue. It never
// affects dispatch bookkeeping; the queue remains the durable path.
func (d *OutboxDispatcher) SetWebhook(webhook provider.Provider) {
	if d == nil {
		return
	}
	d.webhook = webhook
}

func (d *OutboxDispatcher) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := d.scanUndispatched(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error("outbox dispatcher initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.scanUndispatched(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				d.logger.Error("outbox dispatcher scan failed", zap.Error(err))
			}
		}
	}
}

func (d *OutboxDispatcher) scanUndispatched(ctx context.Context) error {
	if d.metrics != nil {
		defer d.metrics.TrackWorkerScan()()
	}

	undispatched, err := d.notifications.GetUndispatched(ctx, d.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch undispatched notifications: %w", err)
	}

	for i := range undispatched {
		notification := undispatched[i]
		msg := queue.NotificationMessage{
			NotificationID: notification.ID,
			RecipientID:    notification.RecipientID,
			Role:           notification.RecipientRole,
			Type:           notification.Type,
			Title:          notification.Title,
			Body:           notification.Body,
			RequestID:      notification.RequestID,
		}

		queueName := queue.GatewayQueueName(notification.RecipientRole)
		if err := d.publisher.Publish(ctx, queueName, msg); err != nil {
			d.logger.Error("failed to publish notification to gateway queue",
				zap.String("notificationId", notification.ID),
				zap.String("queue", queueName),
				zap.Error(err),
			)
			continue
		}

		if d.webhook != nil {
			if _, err := d.webhook.Send(ctx, notification); err != nil {
				if provider.IsTransient(err) {
					d.logger.Warn("gateway webhook push failed",
						zap.String("notificationId", notification.ID),
						zap.Error(err),
					)
				} else {
					d.logger.Error("gateway webhook rejected notification",
						zap.String("notificationId", notification.ID),
						zap.Error(err),
					)
				}
			}
		}

		if err := d.notifications.MarkDispatched(ctx, notification.ID, d.now().UTC()); err != nil {
			// The row stays undispatched; the gateway deduplicates on
			// notification id.
			d.logger.Error("failed to mark notification dispatched after publish",
				zap.String("notificationId", notification.ID),
				zap.Error(err),
			)
			continue
		}

		if d.metrics != nil {
			d.metrics.IncNotificationDispatched(notification.Type.String())
		}
	}

	return nil
}
