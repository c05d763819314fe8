package repository

import (
	"context"
	"errors"
	"time"

	"github.com/partline/quote-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InboxListParams struct {
	Page     int
	PageSize int
}

type EntryRepository interface {
	CreateBatch(ctx context.Context, entries []*domain.QueueEntry) error
	GetByID(ctx context.Context, id string) (*domain.QueueEntry, error)
	GetForSeller(ctx context.Context, requestID, sellerID string) (*domain.QueueEntry, error)
	GetDueForDelivery(ctx context.Context, now time.Time, limit int) ([]domain.QueueEntry, error)
	MarkProcessed(ctx context.Context, id string, now time.Time) (bool, error)
	Decline(ctx context.Context, id, sellerID string, now time.Time) error
	ListInbox(ctx context.Context, sellerID string, params InboxListParams) ([]domain.QueueEntry, int64, error)
}

type GormEntryRepo struct {
	db *gorm.DB
}

func NewGormEntryRepo(db *gorm.DB) *GormEntryRepo {
	return &GormEntryRepo{db: db}
}

// CreateBatch inserts all entries of one fan-out in a single transaction.
// Duplicate (request, seller) pairs are ignored, so a re-run after a partial
// failure is safe and converges on the same row set.
func (r *GormEntryRepo) CreateBatch(ctx context.Context, entries []*domain.QueueEntry) error {
	models := make([]EntryModel, 0, len(entries))
	modelIndexes := make([]int, 0, len(entries))
	for i, e := range entries {
		model := entryModelFromDomain(e)
		if model != nil {
			models = append(models, *model)
			modelIndexes = append(modelIndexes, i)
		}
	}

	if len(models) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "request_id"}, {Name: "seller_id"}},
				DoNothing: true,
			}).
			CreateInBatches(&models, 100).Error
	})
	if err != nil {
		return err
	}

	// On a re-run the conflicting rows keep their original ids, so the
	// copy-back has to come from the table, not the insert batch.
	requestIDs := make([]string, 0, len(models))
	sellerIDs := make([]string, 0, len(models))
	for i := range models {
		requestIDs = append(requestIDs, models[i].RequestID)
		sellerIDs = append(sellerIDs, models[i].SellerID)
	}

	var persisted []EntryModel
	err = r.db.WithContext(ctx).
		Where("request_id IN ? AND seller_id IN ?", requestIDs, sellerIDs).
		Find(&persisted).Error
	if err != nil {
		return err
	}

	byPair := make(map[[2]string]*EntryModel, len(persisted))
	for i := range persisted {
		byPair[[2]string{persisted[i].RequestID, persisted[i].SellerID}] = &persisted[i]
	}

	for i := range models {
		idx := modelIndexes[i]
		if idx >= len(entries) || entries[idx] == nil {
			continue
		}
		if row, ok := byPair[[2]string{models[i].RequestID, models[i].SellerID}]; ok {
			*entries[idx] = *entryModelToDomain(row)
		}
	}

	return nil
}

func (r *GormEntryRepo) GetByID(ctx context.Context, id string) (*domain.QueueEntry, error) {
	var model EntryModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entryModelToDomain(&model), nil
}

func (r *GormEntryRepo) GetForSeller(ctx context.Context, requestID, sellerID string) (*domain.QueueEntry, error) {
	var model EntryModel
	err := r.db.WithContext(ctx).
		Where("request_id = ? AND seller_id = ?", requestID, sellerID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entryModelToDomain(&model), nil
}

// GetDueForDelivery returns pending entries whose scheduled delivery time has
// elapsed, most urgent parent request first, then oldest schedule.
func (r *GormEntryRepo) GetDueForDelivery(ctx context.Context, now time.Time, limit int) ([]domain.QueueEntry, error) {
	var models []EntryModel
	err := r.db.WithContext(ctx).
		Model(&EntryModel{}).
		Select("queue_entries.*").
		Joins("JOIN part_requests ON part_requests.id = queue_entries.request_id").
		Where("queue_entries.status = ? AND queue_entries.scheduled_at <= ?", domain.EntryStatusPending, now).
		Order("CASE part_requests.urgency WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END, queue_entries.scheduled_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.QueueEntry, 0, len(models))
	for i := range models {
		entries = append(entries, *entryModelToDomain(&models[i]))
	}
	return entries, nil
}

// MarkProcessed claims a pending entry. A false return means another worker
// instance won the claim or the seller declined first; the caller moves on.
func (r *GormEntryRepo) MarkProcessed(ctx context.Context, id string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&EntryModel{}).
		Where("id = ? AND status = ?", id, domain.EntryStatusPending).
		Updates(map[string]any{
			"status":       domain.EntryStatusProcessed,
			"processed_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Decline records a seller opt-out on a pending or processed entry.
func (r *GormEntryRepo) Decline(ctx context.Context, id, sellerID string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&EntryModel{}).
		Where("id = ? AND seller_id = ? AND status IN ?", id, sellerID,
			[]domain.EntryStatus{domain.EntryStatusPending, domain.EntryStatusProcessed}).
		Updates(map[string]any{
			"status":      domain.EntryStatusRejectedBySeller,
			"rejected_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var model EntryModel
		err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if model.SellerID != sellerID {
			return domain.ErrUnauthorized
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *GormEntryRepo) ListInbox(ctx context.Context, sellerID string, params InboxListParams) ([]domain.QueueEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&EntryModel{}).
		Where("seller_id = ? AND status = ?", sellerID, domain.EntryStatusProcessed)

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

	var models []EntryModel
	err := query.
		Order("processed_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	entries := make([]domain.QueueEntry, 0, len(models))
	for i := range models {
		entries = append(entries, *entryModelToDomain(&models[i]))
	}
	return entries, total, nil
}
