package service

import (
	"context"
	"fmt"
	"time"

	"github.com/partline/quote-engine/internal/observability"
	"github.com/partline/quote-engine/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultDeliveryScanInterval = 5 * time.Second
	defaultDeliveryBatchLimit   = 100
)

// DeliveryWorker periodically releases due queue entries to their sellers.
// The claim is a conditional update, so any number of worker instances can
// run concurrently; a lost claim is silently skipped, and a transient store
// error leaves the entry pending for the next tick.
type DeliveryWorker struct {
	entries  repository.EntryRepository
	logger   *zap.Logger
	metrics  *observability.Metrics
	interval time.Duration
	limit    int
	now      func() time.Time
}

func NewDeliveryWorker(
	entries repository.EntryRepository,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) (*DeliveryWorker, error) {
	if entries == nil {
		return nil, fmt.Errorf("entry repository is required")
	}
	if interval <= 0 {
		interval = defaultDeliveryScanInterval
	}
	if limit <= 0 {
		limit = defaultDeliveryBatchLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DeliveryWorker{
		entries:  entries,
		logger:   logger,
		interval: interval,
		limit:    limit,
		now:      time.Now,
	}, nil
}

func (w *DeliveryWorker) SetMetrics(metrics *observability.Metrics) {
	if w == nil {
		return
	}
	w.metrics = metrics
}

func (w *DeliveryWorker) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial scan so entries already due do not wait for the first ticker edge.
	if err := w.scanDue(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("delivery worker initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.scanDue(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("delivery worker scan failed", zap.Error(err))
			}
		}
	}
}

func (w *DeliveryWorker) scanDue(ctx context.Context) error {
	if w.metrics != nil {
		defer w.metrics.TrackWorkerScan()()
	}

	now := w.now().UTC()
	dueEntries, err := w.entries.GetDueForDelivery(ctx, now, w.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch due queue entries: %w", err)
	}

	for i := range dueEntries {
		entry := dueEntries[i]

		claimed, err := w.entries.MarkProcessed(ctx, entry.ID, now)
		if err != nil {
			// The entry stays pending and is retried on the next tick.
			w.logger.Error("failed to mark queue entry processed",
				zap.String("entryId", entry.ID),
				zap.String("requestId", entry.RequestID),
				zap.Error(err),
			)
			continue
		}
		if !claimed {
			w.logger.Debug("queue entry claimed elsewhere",
				zap.String("entryId", entry.ID),
			)
			continue
		}

		w.logger.Info("queue entry delivered",
			zap.String("entryId", entry.ID),
			zap.String("requestId", entry.RequestID),
			zap.String("sellerId", entry.SellerID),
		)
		if w.metrics != nil {
			w.metrics.IncEntryDelivered()
		}
	}

	return nil
}
