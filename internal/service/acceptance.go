package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/observability"
	"github.com/partline/quote-engine/internal/repository"
	"go.uber.org/zap"
)

// AcceptanceCoordinator executes the single-winner protocol. The atomic part
// lives in the acceptance store; this layer validates input, counts race
// losses, and fans out notifications after the commit.
type AcceptanceCoordinator struct {
	store    repository.AcceptanceStore
	notifier *Notifier
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewAcceptanceCoordinator(store repository.AcceptanceStore, notifier *Notifier, logger *zap.Logger) (*AcceptanceCoordinator, error) {
	if store == nil {
		return nil, fmt.Errorf("acceptance store is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AcceptanceCoordinator{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}, nil
}

func (c *AcceptanceCoordinator) SetMetrics(metrics *observability.Metrics) {
	if c == nil {
		return
	}
	c.metrics = metrics
}

// AcceptQuote makes one quote the sole winner of its request. Of two
// near-simultaneous accepts on the same request exactly one succeeds; the
// loser observes the request already fulfilled and gets ErrConflict.
func (c *AcceptanceCoordinator) AcceptQuote(ctx context.Context, requestID, quoteID, requesterID string) error {
	requestID, quoteID, requesterID, err := trimAcceptanceArgs(requestID, quoteID, requesterID)
	if err != nil {
		return err
	}

	result, err := c.store.Accept(ctx, requestID, quoteID, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) && c.metrics != nil {
			c.metrics.IncAcceptConflict()
		}
		return err
	}

	c.logger.Info("quote accepted",
		zap.String("requestId", requestID),
		zap.String("quoteId", quoteID),
		zap.Int("rejectedSiblings", len(result.Rejected)),
	)
	if c.metrics != nil {
		c.metrics.IncQuoteAccepted()
	}

	request := result.Request
	c.notifier.Notify(ctx,
		result.Accepted.SellerID,
		domain.RoleSeller,
		domain.NotificationQuoteAccepted,
		"Your quote was accepted",
		fmt.Sprintf("The buyer accepted your quote of %s for %q.",
			formatPrice(result.Accepted.PriceCents, result.Accepted.Currency), request.PartName),
		&request.ID,
	)
	c.notifier.Notify(ctx,
		request.BuyerID,
		domain.RoleBuyer,
		domain.NotificationQuoteAccepted,
		"Quote accepted",
		fmt.Sprintf("You accepted a quote for %q; the request is now fulfilled.", request.PartName),
		&request.ID,
	)
	for i := range result.Rejected {
		rejected := result.Rejected[i]
		c.notifier.Notify(ctx,
			rejected.SellerID,
			domain.RoleSeller,
			domain.NotificationQuoteRejected,
			"Your quote was not selected",
			fmt.Sprintf("The buyer chose another quote for %q.", request.PartName),
			&request.ID,
		)
	}

	return nil
}

// RejectQuote turns down a single quote without touching its siblings or the
// parent request.
func (c *AcceptanceCoordinator) RejectQuote(ctx context.Context, requestID, quoteID, requesterID string) error {
	requestID, quoteID, requesterID, err := trimAcceptanceArgs(requestID, quoteID, requesterID)
	if err != nil {
		return err
	}

	result, err := c.store.Reject(ctx, requestID, quoteID, requesterID)
	if err != nil {
		return err
	}

	c.logger.Info("quote rejected",
		zap.String("requestId", requestID),
		zap.String("quoteId", quoteID),
	)

	request := result.Request
	c.notifier.Notify(ctx,
		result.Rejected.SellerID,
		domain.RoleSeller,
		domain.NotificationQuoteRejected,
		"Your quote was declined",
		fmt.Sprintf("The buyer declined your quote for %q.", request.PartName),
		&request.ID,
	)
	c.notifier.Notify(ctx,
		request.BuyerID,
		domain.RoleBuyer,
		domain.NotificationQuoteRejected,
		"Quote declined",
		fmt.Sprintf("You declined a quote for %q.", request.PartName),
		&request.ID,
	)

	return nil
}

func trimAcceptanceArgs(requestID, quoteID, requesterID string) (string, string, string, error) {
	requestID = strings.TrimSpace(requestID)
	quoteID = strings.TrimSpace(quoteID)
	requesterID = strings.TrimSpace(requesterID)
	if requestID == "" || quoteID == "" {
		return "", "", "", fmt.Errorf("%w: request id and quote id are required", domain.ErrValidation)
	}
	if requesterID == "" {
		return "", "", "", domain.ErrUnauthorized
	}
	return requestID, quoteID, requesterID, nil
}
