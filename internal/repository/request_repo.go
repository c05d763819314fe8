package repository

import (
	"context"
	"errors"
	"time"

	"github.com/partline/quote-engine/internal/domain"
	"gorm.io/gorm"
)

type RequestListParams struct {
	Status   *domain.RequestStatus
	Page     int
	PageSize int
}

type RequestRepository interface {
	Create(ctx context.Context, r *domain.PartRequest) error
	GetByID(ctx context.Context, id string) (*domain.PartRequest, error)
	ListByBuyer(ctx context.Context, buyerID string, params RequestListParams) ([]domain.PartRequest, int64, error)
	MarkInProgressIfOpen(ctx context.Context, id string) (bool, error)
	GetDueForExpiry(ctx context.Context, now time.Time, limit int) ([]domain.PartRequest, error)
	MarkExpired(ctx context.Context, id string) (bool, error)
	GetExpiringSoon(ctx context.Context, now time.Time, window time.Duration, limit int) ([]domain.PartRequest, error)
	MarkExpiryNotified(ctx context.Context, id string) (bool, error)
}

type GormRequestRepo struct {
	db *gorm.DB
}

func NewGormRequestRepo(db *gorm.DB) *GormRequestRepo {
	return &GormRequestRepo{db: db}
}

func (r *GormRequestRepo) Create(ctx context.Context, req *domain.PartRequest) error {
	model := requestModelFromDomain(req)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if req != nil {
		*req = *requestModelToDomain(model)
	}
	return nil
}

func (r *GormRequestRepo) GetByID(ctx context.Context, id string) (*domain.PartRequest, error) {
	var model RequestModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return requestModelToDomain(&model), nil
}

func (r *GormRequestRepo) ListByBuyer(ctx context.Context, buyerID string, params RequestListParams) ([]domain.PartRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&RequestModel{}).Where("buyer_id = ?", buyerID)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []RequestModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	requests := make([]domain.PartRequest, 0, len(models))
	for i := range models {
		requests = append(requests, *requestModelToDomain(&models[i]))
	}

	return requests, total, nil
}

// MarkInProgressIfOpen performs the open -> in_progress transition for the
// request's first quote. A false return means another quote got there first,
// which is not an error.
func (r *GormRequestRepo) MarkInProgressIfOpen(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&RequestModel{}).
		Where("id = ? AND status = ?", id, domain.RequestStatusOpen).
		Update("status", domain.RequestStatusInProgress)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormRequestRepo) GetDueForExpiry(ctx context.Context, now time.Time, limit int) ([]domain.PartRequest, error) {
	var models []RequestModel
	err := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at <= ?",
			[]domain.RequestStatus{domain.RequestStatusOpen, domain.RequestStatusInProgress}, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	requests := make([]domain.PartRequest, 0, len(models))
	for i := range models {
		requests = append(requests, *requestModelToDomain(&models[i]))
	}
	return requests, nil
}

// MarkExpired transitions an open or in-progress request to expired. A false
// return means the request reached a terminal state first.
func (r *GormRequestRepo) MarkExpired(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&RequestModel{}).
		Where("id = ? AND status IN ?", id,
			[]domain.RequestStatus{domain.RequestStatusOpen, domain.RequestStatusInProgress}).
		Update("status", domain.RequestStatusExpired)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormRequestRepo) GetExpiringSoon(ctx context.Context, now time.Time, window time.Duration, limit int) ([]domain.PartRequest, error) {
	var models []RequestModel
	err := r.db.WithContext(ctx).
		Where("status IN ? AND expiry_notified = false AND expires_at > ? AND expires_at <= ?",
			[]domain.RequestStatus{domain.RequestStatusOpen, domain.RequestStatusInProgress},
			now, now.Add(window)).
		Order("expires_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	requests := make([]domain.PartRequest, 0, len(models))
	for i := range models {
		requests = append(requests, *requestModelToDomain(&models[i]))
	}
	return requests, nil
}

// MarkExpiryNotified guards the expiring-soon warning so concurrent sweeper
// instances emit it at most once per request.
func (r *GormRequestRepo) MarkExpiryNotified(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&RequestModel{}).
		Where("id = ? AND expiry_notified = false", id).
		Update("expiry_notified", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
