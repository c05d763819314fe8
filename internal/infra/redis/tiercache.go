package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/repository"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	tierKeyPrefix  = "tier:seller:"
	defaultTierTTL = 5 * time.Minute
)

// CachedTierResolver resolves seller request delays through a Redis
// read-through cache over the tier store. Cache failures degrade to the
// store; a seller tier change is invalidated explicitly and otherwise ages
// out on TTL.
type CachedTierResolver struct {
	client *goredis.Client
	tiers  repository.TierRepository
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedTierResolver(client *goredis.Client, tiers repository.TierRepository, logger *zap.Logger) (*CachedTierResolver, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if tiers == nil {
		return nil, fmt.Errorf("tier repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CachedTierResolver{
		client: client,
		tiers:  tiers,
		ttl:    defaultTierTTL,
		logger: logger,
	}, nil
}

func (r *CachedTierResolver) RequestDelay(ctx context.Context, sellerID string) (time.Duration, error) {
	tier, err := r.resolveTier(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	return tier.RequestDelay(), nil
}

func (r *CachedTierResolver) Invalidate(ctx context.Context, sellerID string) error {
	return r.client.Del(ctx, tierKey(sellerID)).Err()
}

func (r *CachedTierResolver) resolveTier(ctx context.Context, sellerID string) (domain.Tier, error) {
	sellerID = strings.TrimSpace(sellerID)
	if sellerID == "" {
		return "", fmt.Errorf("%w: seller id is required", domain.ErrValidation)
	}

	key := tierKey(sellerID)

	cached, err := r.client.Get(ctx, key).Result()
	if err == nil {
		if tier, parseErr := domain.ParseTierFromString(cached); parseErr == nil {
			return tier, nil
		}
		// Unparsable cache value, fall through to the store.
	} else if err != goredis.Nil {
		r.logger.Warn("tier cache read failed",
			zap.String("sellerId", sellerID),
			zap.Error(err),
		)
	}

	tier, err := r.tiers.GetTier(ctx, sellerID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve seller tier: %w", err)
	}

	if err := r.client.Set(ctx, key, tier.String(), r.ttl).Err(); err != nil {
		r.logger.Warn("tier cache write failed",
			zap.String("sellerId", sellerID),
			zap.Error(err),
		)
	}

	return tier, nil
}

func tierKey(sellerID string) string {
	return tierKeyPrefix + sellerID
}
