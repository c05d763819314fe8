package repository

import (
	"context"
	"errors"

	"github.com/partline/quote-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TierRepository interface {
	GetTier(ctx context.Context, sellerID string) (domain.Tier, error)
	SetTier(ctx context.Context, sellerID string, tier domain.Tier) error
}

type GormTierRepo struct {
	db *gorm.DB
}

func NewGormTierRepo(db *gorm.DB) *GormTierRepo {
	return &GormTierRepo{db: db}
}

// GetTier returns the seller's current tier. Sellers without an assignment
// default to the basic tier.
func (r *GormTierRepo) GetTier(ctx context.Context, sellerID string) (domain.Tier, error) {
	var model SellerTierModel
	err := r.db.WithContext(ctx).First(&model, "seller_id = ?", sellerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TierBasic, nil
	}
	if err != nil {
		return "", err
	}
	return model.Tier, nil
}

func (r *GormTierRepo) SetTier(ctx context.Context, sellerID string, tier domain.Tier) error {
	model := SellerTierModel{SellerID: sellerID, Tier: tier}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tier", "updated_at"}),
		}).
		Create(&model).Error
}
