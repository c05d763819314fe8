package repository

import (
	"context"
	"errors"

	"github.com/partline/quote-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AcceptResult describes the state committed by a successful acceptance,
// so the caller can fan out notifications after the transaction.
type AcceptResult struct {
	Request  domain.PartRequest
	Accepted domain.Quote
	Rejected []domain.Quote
}

// RejectResult describes a single-quote rejection.
type RejectResult struct {
	Request  domain.PartRequest
	Rejected domain.Quote
}

// AcceptanceStore executes the single-winner protocol as one atomic unit.
type AcceptanceStore interface {
	Accept(ctx context.Context, requestID, quoteID, requesterID string) (*AcceptResult, error)
	Reject(ctx context.Context, requestID, quoteID, requesterID string) (*RejectResult, error)
}

type GormAcceptanceStore struct {
	db *gorm.DB
}

func NewGormAcceptanceStore(db *gorm.DB) *GormAcceptanceStore {
	return &GormAcceptanceStore{db: db}
}

// Accept marks one quote as the sole winner: quote -> accepted, request ->
// fulfilled, every sibling quote -> rejected, all in one transaction. The
// part_requests row is locked for the duration, so a concurrent accept on a
// sibling quote serializes behind this one and observes the fulfilled status.
func (s *GormAcceptanceStore) Accept(ctx context.Context, requestID, quoteID, requesterID string) (*AcceptResult, error) {
	var result AcceptResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.BuyerID != requesterID {
			return domain.ErrUnauthorized
		}
		if request.Status.IsTerminal() {
			return domain.ErrConflict
		}

		var quote QuoteModel
		err = tx.First(&quote, "id = ? AND request_id = ?", quoteID, requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if quote.Status != domain.QuoteStatusPending {
			return domain.ErrConflict
		}

		var siblings []QuoteModel
		err = tx.
			Where("request_id = ? AND id <> ? AND status = ?", requestID, quoteID, domain.QuoteStatusPending).
			Find(&siblings).Error
		if err != nil {
			return err
		}

		if err := tx.Model(&QuoteModel{}).
			Where("id = ?", quoteID).
			Update("status", domain.QuoteStatusAccepted).Error; err != nil {
			return err
		}

		if len(siblings) > 0 {
			if err := tx.Model(&QuoteModel{}).
				Where("request_id = ? AND id <> ? AND status = ?", requestID, quoteID, domain.QuoteStatusPending).
				Update("status", domain.QuoteStatusRejected).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&RequestModel{}).
			Where("id = ?", requestID).
			Update("status", domain.RequestStatusFulfilled).Error; err != nil {
			return err
		}

		request.Status = domain.RequestStatusFulfilled
		quote.Status = domain.QuoteStatusAccepted

		result.Request = *requestModelToDomain(request)
		result.Accepted = *quoteModelToDomain(&quote)
		result.Rejected = make([]domain.Quote, 0, len(siblings))
		for i := range siblings {
			siblings[i].Status = domain.QuoteStatusRejected
			result.Rejected = append(result.Rejected, *quoteModelToDomain(&siblings[i]))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Reject transitions a single pending quote to rejected without touching its
// siblings or the parent request.
func (s *GormAcceptanceStore) Reject(ctx context.Context, requestID, quoteID, requesterID string) (*RejectResult, error) {
	var result RejectResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.BuyerID != requesterID {
			return domain.ErrUnauthorized
		}

		var quote QuoteModel
		err = tx.First(&quote, "id = ? AND request_id = ?", quoteID, requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if quote.Status != domain.QuoteStatusPending {
			return domain.ErrConflict
		}

		if err := tx.Model(&QuoteModel{}).
			Where("id = ?", quoteID).
			Update("status", domain.QuoteStatusRejected).Error; err != nil {
			return err
		}

		quote.Status = domain.QuoteStatusRejected
		result.Request = *requestModelToDomain(request)
		result.Rejected = *quoteModelToDomain(&quote)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func lockRequest(tx *gorm.DB, requestID string) (*RequestModel, error) {
	var request RequestModel
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, "id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}
