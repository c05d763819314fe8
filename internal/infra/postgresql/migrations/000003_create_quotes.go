package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/partline/quote-engine/internal/repository"
	"gorm.io/gorm"
)

func createQuotes() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_quotes",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.QuoteModel{}); err != nil {
				return err
			}
			// One non-rejected quote per (request, seller) at any time.
			return tx.Exec(
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_quotes_active_per_seller ON quotes (request_id, seller_id) WHERE status <> 'REJECTED'`,
			).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.QuoteModel{})
		},
	}
}
