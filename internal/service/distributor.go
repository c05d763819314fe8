package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/observability"
	"github.com/partline/quote-engine/internal/repository"
	"go.uber.org/zap"
)

// TierResolver yields the request-visibility delay for a seller's current
// service tier. The seller-tier assignment itself is owned by the
// subscription service.
type TierResolver interface {
	RequestDelay(ctx context.Context, sellerID string) (time.Duration, error)
}

// Distributor fans a newly created request out to its candidate sellers,
// one queue entry per seller, each stamped with a tier-derived delivery time.
type Distributor struct {
	entries repository.EntryRepository
	tiers   TierResolver
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewDistributor(entries repository.EntryRepository, tiers TierResolver, logger *zap.Logger) (*Distributor, error) {
	if entries == nil {
		return nil, fmt.Errorf("entry repository is required")
	}
	if tiers == nil {
		return nil, fmt.Errorf("tier resolver is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Distributor{
		entries: entries,
		tiers:   tiers,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (d *Distributor) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Distribute inserts one pending queue entry per candidate seller in a single
// transaction, so the request is either fully fanned out or not at all. An
// empty candidate list is valid and leaves the request open with no entries.
// Re-running for the same request is idempotent.
func (d *Distributor) Distribute(ctx context.Context, request *domain.PartRequest, candidateSellerIDs []string) ([]domain.QueueEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if request == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrValidation)
	}
	if request.Status != domain.RequestStatusOpen {
		return nil, fmt.Errorf("%w: request %s is not open", domain.ErrPreconditionFailed, request.ID)
	}

	sellerIDs := dedupeSellerIDs(candidateSellerIDs)
	if len(sellerIDs) == 0 {
		return nil, nil
	}

	now := d.now().UTC()
	entries := make([]*domain.QueueEntry, 0, len(sellerIDs))
	for _, sellerID := range sellerIDs {
		delay, err := d.tiers.RequestDelay(ctx, sellerID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tier delay for seller %s: %w", sellerID, err)
		}
		if delay < 0 {
			delay = 0
		}

		entries = append(entries, &domain.QueueEntry{
			ID:          uuid.NewString(),
			RequestID:   request.ID,
			SellerID:    sellerID,
			Status:      domain.EntryStatusPending,
			ScheduledAt: now.Add(delay),
			CreatedAt:   now,
		})
	}

	if err := d.entries.CreateBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to fan out request %s: %w", request.ID, err)
	}

	d.logger.Info("request fanned out",
		zap.String("requestId", request.ID),
		zap.String("urgency", request.Urgency.String()),
		zap.Int("sellers", len(entries)),
	)
	if d.metrics != nil {
		d.metrics.IncRequestDistributed(request.Urgency.String(), len(entries))
	}

	out := make([]domain.QueueEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	return out, nil
}

func dedupeSellerIDs(sellerIDs []string) []string {
	seen := make(map[string]struct{}, len(sellerIDs))
	out := make([]string, 0, len(sellerIDs))
	for _, id := range sellerIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
