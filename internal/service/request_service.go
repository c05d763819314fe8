package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/repository"
	"go.uber.org/zap"
)

const defaultRequestTTL = 7 * 24 * time.Hour

// RequestService creates part requests and serves the buyer-facing read side.
type RequestService struct {
	requests    repository.RequestRepository
	quotes      repository.QuoteRepository
	distributor *Distributor
	logger      *zap.Logger
	now         func() time.Time
}

func NewRequestService(
	requests repository.RequestRepository,
	quotes repository.QuoteRepository,
	distributor *Distributor,
	logger *zap.Logger,
) (*RequestService, error) {
	if requests == nil {
		return nil, fmt.Errorf("request repository is required")
	}
	if distributor == nil {
		return nil, fmt.Errorf("distributor is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RequestService{
		requests:    requests,
		quotes:      quotes,
		distributor: distributor,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Create persists the request and fans it out to the supplied candidate
// sellers. Candidate selection (specialization, coverage area) is the
// matching service's responsibility; this side only receives the list.
func (s *RequestService) Create(ctx context.Context, request *domain.PartRequest, candidateSellerIDs []string) (*domain.PartRequest, []domain.QueueEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if request == nil {
		return nil, nil, fmt.Errorf("%w: request is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	request.ID = strings.TrimSpace(request.ID)
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	request.Status = domain.RequestStatusOpen
	request.ExpiryNotified = false
	if request.ExpiresAt.IsZero() {
		request.ExpiresAt = now.Add(defaultRequestTTL)
	}

	if err := request.Validate(); err != nil {
		return nil, nil, err
	}
	if !request.ExpiresAt.After(now) {
		return nil, nil, fmt.Errorf("%w: expiry must be in the future", domain.ErrValidation)
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	entries, err := s.distributor.Distribute(ctx, request, candidateSellerIDs)
	if err != nil {
		// The request row stays open with zero entries; a retried
		// distribution converges because fan-out is idempotent.
		s.logger.Error("fan-out failed after request creation",
			zap.String("requestId", request.ID),
			zap.Error(err),
		)
		return nil, nil, err
	}

	return request, entries, nil
}

// Get returns a request with its quotes, restricted to the owner.
func (s *RequestService) Get(ctx context.Context, requestID, requesterID string) (*domain.PartRequest, []domain.Quote, error) {
	request, err := s.requests.GetByID(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return nil, nil, err
	}
	if request.BuyerID != requesterID {
		return nil, nil, domain.ErrUnauthorized
	}

	quotes, err := s.quotes.ListByRequest(ctx, request.ID)
	if err != nil {
		return nil, nil, err
	}

	return request, quotes, nil
}

func (s *RequestService) ListByBuyer(ctx context.Context, buyerID string, params repository.RequestListParams) ([]domain.PartRequest, int64, error) {
	return s.requests.ListByBuyer(ctx, buyerID, params)
}
