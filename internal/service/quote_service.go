package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/observability"
	"github.com/partline/quote-engine/internal/ratelimit"
	"github.com/partline/quote-engine/internal/repository"
	"go.uber.org/zap"
)

// SubmitQuoteCommand carries one seller quote submission.
type SubmitQuoteCommand struct {
	RequestID            string
	SellerID             string
	PriceCents           int64
	Currency             string
	DeliveryEstimateDays int
	Condition            domain.Condition
	Notes                string
}

// QuoteService handles the seller side of the lifecycle: quote submission,
// entry decline, and the processed-entry inbox.
type QuoteService struct {
	quotes   repository.QuoteRepository
	entries  repository.EntryRepository
	requests repository.RequestRepository
	notifier *Notifier
	limiter  ratelimit.RateLimiter
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewQuoteService(
	quotes repository.QuoteRepository,
	entries repository.EntryRepository,
	requests repository.RequestRepository,
	notifier *Notifier,
	limiter ratelimit.RateLimiter,
	logger *zap.Logger,
) (*QuoteService, error) {
	if quotes == nil || entries == nil || requests == nil {
		return nil, fmt.Errorf("quote, entry and request repositories are required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QuoteService{
		quotes:   quotes,
		entries:  entries,
		requests: requests,
		notifier: notifier,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *QuoteService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// SubmitQuote inserts or supersedes the seller's quote for a request. The
// seller must hold a processed, non-rejected queue entry and the request must
// not be in a terminal state. A re-submission updates the prior pending quote
// in place, so at most one non-rejected quote per (request, seller) exists.
func (s *QuoteService) SubmitQuote(ctx context.Context, cmd SubmitQuoteCommand) (*domain.Quote, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.RequestID = strings.TrimSpace(cmd.RequestID)
	cmd.SellerID = strings.TrimSpace(cmd.SellerID)
	if cmd.RequestID == "" || cmd.SellerID == "" {
		return nil, fmt.Errorf("%w: request id and seller id are required", domain.ErrValidation)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, cmd.SellerID)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate submission rate limit: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: quote submissions for seller %s", domain.ErrRateLimited, cmd.SellerID)
		}
	}

	entry, err := s.entries.GetForSeller(ctx, cmd.RequestID, cmd.SellerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: no queue entry for request %s and seller %s",
			domain.ErrPreconditionFailed, cmd.RequestID, cmd.SellerID)
	}
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.EntryStatusProcessed {
		return nil, fmt.Errorf("%w: queue entry %s is %s, not processed",
			domain.ErrPreconditionFailed, entry.ID, entry.Status)
	}

	request, err := s.requests.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: request %s is %s",
			domain.ErrPreconditionFailed, request.ID, request.Status)
	}

	quote := &domain.Quote{
		ID:                   uuid.NewString(),
		RequestID:            cmd.RequestID,
		SellerID:             cmd.SellerID,
		PriceCents:           cmd.PriceCents,
		Currency:             normalizeCurrency(cmd.Currency),
		DeliveryEstimateDays: cmd.DeliveryEstimateDays,
		Condition:            cmd.Condition,
		Notes:                strings.TrimSpace(cmd.Notes),
		Status:               domain.QuoteStatusPending,
		CreatedAt:            s.now().UTC(),
	}
	if err := quote.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.quotes.GetActiveForSeller(ctx, cmd.RequestID, cmd.SellerID)
	switch {
	case err == nil:
		if existing.Status == domain.QuoteStatusAccepted {
			return nil, fmt.Errorf("%w: quote %s is already accepted", domain.ErrConflict, existing.ID)
		}
		quote.ID = existing.ID
		quote.CreatedAt = existing.CreatedAt
		if err := s.quotes.UpdatePending(ctx, quote); err != nil {
			return nil, err
		}
		s.logger.Info("quote superseded",
			zap.String("quoteId", quote.ID),
			zap.String("requestId", cmd.RequestID),
			zap.String("sellerId", cmd.SellerID),
		)
	case errors.Is(err, domain.ErrNotFound):
		if err := s.quotes.Create(ctx, quote); err != nil {
			return nil, err
		}

		inProgress, err := s.requests.MarkInProgressIfOpen(ctx, cmd.RequestID)
		if err != nil {
			s.logger.Error("failed to mark request in progress",
				zap.String("requestId", cmd.RequestID),
				zap.Error(err),
			)
		} else if inProgress {
			s.logger.Info("request received its first quote",
				zap.String("requestId", cmd.RequestID),
			)
		}
	default:
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncQuoteSubmitted()
	}

	s.notifier.Notify(ctx,
		request.BuyerID,
		domain.RoleBuyer,
		domain.NotificationNewQuote,
		"New quote received",
		fmt.Sprintf("A seller quoted %s for %q.", formatPrice(quote.PriceCents, quote.Currency), request.PartName),
		&request.ID,
	)

	return quote, nil
}

// DeclineEntry records a seller opt-out; the request disappears from that
// seller's inbound view and never comes back.
func (s *QuoteService) DeclineEntry(ctx context.Context, entryID, sellerID string) error {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return fmt.Errorf("%w: entry id is required", domain.ErrValidation)
	}
	return s.entries.Decline(ctx, entryID, sellerID, s.now().UTC())
}

func (s *QuoteService) Inbox(ctx context.Context, sellerID string, params repository.InboxListParams) ([]domain.QueueEntry, int64, error) {
	return s.entries.ListInbox(ctx, sellerID, params)
}

func normalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return domain.DefaultCurrency
	}
	return currency
}

func formatPrice(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}
