package ratelimit

import "context"

// RateLimiter throttles quote submissions per seller.
type RateLimiter interface {
	Allow(ctx context.Context, sellerID string) (bool, error)
	Wait(ctx context.Context, sellerID string) error
}
