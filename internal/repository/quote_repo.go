package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/partline/quote-engine/internal/domain"
	"gorm.io/gorm"
)

type QuoteRepository interface {
	Create(ctx context.Context, q *domain.Quote) error
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	GetActiveForSeller(ctx context.Context, requestID, sellerID string) (*domain.Quote, error)
	UpdatePending(ctx context.Context, q *domain.Quote) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.Quote, error)
}

type GormQuoteRepo struct {
	db *gorm.DB
}

func NewGormQuoteRepo(db *gorm.DB) *GormQuoteRepo {
	return &GormQuoteRepo{db: db}
}

// Create inserts a quote while holding a lock on the parent request row, so
// an accept or expiry committing concurrently cannot leave a fresh pending
// quote on a terminal request.
func (r *GormQuoteRepo) Create(ctx context.Context, q *domain.Quote) error {
	model := quoteModelFromDomain(q)
	if model == nil {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockRequest(tx, model.RequestID)
		if err != nil {
			return err
		}
		if request.Status.IsTerminal() {
			return fmt.Errorf("%w: request is closed to new quotes", domain.ErrPreconditionFailed)
		}
		return tx.Create(model).Error
	})
	if err != nil {
		return err
	}

	*q = *quoteModelToDomain(model)
	return nil
}

func (r *GormQuoteRepo) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	var model QuoteModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return quoteModelToDomain(&model), nil
}

// GetActiveForSeller returns the seller's non-rejected quote for the request,
// or ErrNotFound. The partial unique index guarantees at most one exists.
func (r *GormQuoteRepo) GetActiveForSeller(ctx context.Context, requestID, sellerID string) (*domain.Quote, error) {
	var model QuoteModel
	err := r.db.WithContext(ctx).
		Where("request_id = ? AND seller_id = ? AND status <> ?",
			requestID, sellerID, domain.QuoteStatusRejected).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return quoteModelToDomain(&model), nil
}

// UpdatePending supersedes the fields of a still-pending quote in place,
// under the same request row lock as Create. ErrConflict means the quote
// left the pending state concurrently.
func (r *GormQuoteRepo) UpdatePending(ctx context.Context, q *domain.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockRequest(tx, q.RequestID)
		if err != nil {
			return err
		}
		if request.Status.IsTerminal() {
			return fmt.Errorf("%w: request is closed to new quotes", domain.ErrPreconditionFailed)
		}

		result := tx.
			Model(&QuoteModel{}).
			Where("id = ? AND status = ?", q.ID, domain.QuoteStatusPending).
			Updates(map[string]any{
				"price_cents":            q.PriceCents,
				"currency":               q.Currency,
				"delivery_estimate_days": q.DeliveryEstimateDays,
				"condition":              q.Condition,
				"notes":                  q.Notes,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrConflict
		}
		return nil
	})
}

func (r *GormQuoteRepo) ListByRequest(ctx context.Context, requestID string) ([]domain.Quote, error) {
	var models []QuoteModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	quotes := make([]domain.Quote, 0, len(models))
	for i := range models {
		quotes = append(quotes, *quoteModelToDomain(&models[i]))
	}
	return quotes, nil
}
