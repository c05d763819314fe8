package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/repository"
	"go.uber.org/zap"
)

// TierCacheInvalidator drops a seller's cached tier after a change.
type TierCacheInvalidator interface {
	Invalidate(ctx context.Context, sellerID string) error
}

// TierService applies seller tier changes pushed by the subscription service.
// Future fan-outs pick the new delay up immediately.
type TierService struct {
	tiers    repository.TierRepository
	cache    TierCacheInvalidator
	notifier *Notifier
	logger   *zap.Logger
}

func NewTierService(
	tiers repository.TierRepository,
	cache TierCacheInvalidator,
	notifier *Notifier,
	logger *zap.Logger,
) (*TierService, error) {
	if tiers == nil {
		return nil, fmt.Errorf("tier repository is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TierService{
		tiers:    tiers,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}, nil
}

func (s *TierService) SetSellerTier(ctx context.Context, sellerID string, tier domain.Tier) error {
	sellerID = strings.TrimSpace(sellerID)
	if sellerID == "" {
		return fmt.Errorf("%w: seller id is required", domain.ErrValidation)
	}
	if !tier.IsValid() {
		return fmt.Errorf("%w: invalid tier %q", domain.ErrValidation, tier)
	}

	if err := s.tiers.SetTier(ctx, sellerID, tier); err != nil {
		return fmt.Errorf("failed to set seller tier: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sellerID); err != nil {
			// Stale cache entries age out on their own TTL.
			s.logger.Warn("failed to invalidate tier cache",
				zap.String("sellerId", sellerID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("seller tier updated",
		zap.String("sellerId", sellerID),
		zap.String("tier", tier.String()),
	)

	s.notifier.Notify(ctx,
		sellerID,
		domain.RoleSeller,
		domain.NotificationSubscriptionEvent,
		"Service tier updated",
		fmt.Sprintf("Your service tier is now %s; new requests reach you after %s.",
			tier, tier.RequestDelay()),
		nil,
	)

	return nil
}

func (s *TierService) GetSellerTier(ctx context.Context, sellerID string) (domain.Tier, error) {
	sellerID = strings.TrimSpace(sellerID)
	if sellerID == "" {
		return "", fmt.Errorf("%w: seller id is required", domain.ErrValidation)
	}
	return s.tiers.GetTier(ctx, sellerID)
}
