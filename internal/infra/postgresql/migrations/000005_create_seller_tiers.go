package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/partline/quote-engine/internal/repository"
	"gorm.io/gorm"
)

func createSellerTiers() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000005_create_seller_tiers",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.SellerTierModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SellerTierModel{})
		},
	}
}
