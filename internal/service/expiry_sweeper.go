package service

import (
	"context"
	"fmt"
	"time"

	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/observability"
	"github.com/partline/quote-engine/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultExpirySweepInterval = time.Minute
	defaultExpirySweepLimit    = 100
	defaultExpiryWarnWindow    = 24 * time.Hour
)

// ExpirySweeper drives the time-based terminal transition: requests past
// their expiry become expired, and owners get a one-time warning while the
// request is inside the warning window.
type ExpirySweeper struct {
	requests   repository.RequestRepository
	notifier   *Notifier
	logger     *zap.Logger
	metrics    *observability.Metrics
	interval   time.Duration
	limit      int
	warnWindow time.Duration
	now        func() time.Time
}

func NewExpirySweeper(
	requests repository.RequestRepository,
	notifier *Notifier,
	interval time.Duration,
	warnWindow time.Duration,
	logger *zap.Logger,
) (*ExpirySweeper, error) {
	if requests == nil {
		return nil, fmt.Errorf("request repository is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if interval <= 0 {
		interval = defaultExpirySweepInterval
	}
	if warnWindow <= 0 {
		warnWindow = defaultExpiryWarnWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExpirySweeper{
		requests:   requests,
		notifier:   notifier,
		logger:     logger,
		interval:   interval,
		limit:      defaultExpirySweepLimit,
		warnWindow: warnWindow,
		now:        time.Now,
	}, nil
}

func (s *ExpirySweeper) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

func (s *ExpirySweeper) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("expiry sweeper initial sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("expiry sweeper sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) error {
	if s.metrics != nil {
		defer s.metrics.TrackWorkerScan()()
	}

	now := s.now().UTC()

	if err := s.warnExpiring(ctx, now); err != nil {
		return err
	}
	return s.expireDue(ctx, now)
}

func (s *ExpirySweeper) warnExpiring(ctx context.Context, now time.Time) error {
	expiring, err := s.requests.GetExpiringSoon(ctx, now, s.warnWindow, s.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch expiring requests: %w", err)
	}

	for i := range expiring {
		request := expiring[i]

		// The conditional flag update makes the warning single-shot even
		// with concurrent sweeper instances.
		marked, err := s.requests.MarkExpiryNotified(ctx, request.ID)
		if err != nil {
			s.logger.Error("failed to mark expiry warning",
				zap.String("requestId", request.ID),
				zap.Error(err),
			)
			continue
		}
		if !marked {
			continue
		}

		s.notifier.Notify(ctx,
			request.BuyerID,
			domain.RoleBuyer,
			domain.NotificationRequestExpiring,
			"Request expiring soon",
			fmt.Sprintf("Your request for %q expires at %s.", request.PartName, request.ExpiresAt.Format(time.RFC3339)),
			&request.ID,
		)
	}

	return nil
}

func (s *ExpirySweeper) expireDue(ctx context.Context, now time.Time) error {
	due, err := s.requests.GetDueForExpiry(ctx, now, s.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch expired requests: %w", err)
	}

	for i := range due {
		request := due[i]

		expired, err := s.requests.MarkExpired(ctx, request.ID)
		if err != nil {
			s.logger.Error("failed to expire request",
				zap.String("requestId", request.ID),
				zap.Error(err),
			)
			continue
		}
		if !expired {
			// Fulfilled (or expired by another instance) in the meantime.
			continue
		}

		s.logger.Info("request expired",
			zap.String("requestId", request.ID),
		)
		if s.metrics != nil {
			s.metrics.IncRequestExpired()
		}

		s.notifier.Notify(ctx,
			request.BuyerID,
			domain.RoleBuyer,
			domain.NotificationRequestExpired,
			"Request expired",
			fmt.Sprintf("Your request for %q expired without an accepted quote.", request.PartName),
			&request.ID,
		)
	}

	return nil
}
