package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/partline/quote-engine/internal/repository"
	"gorm.io/gorm"
)

func createQueueEntries() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_queue_entries",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.EntryModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_entries_due ON queue_entries (scheduled_at) WHERE status = 'PENDING'`,
				`CREATE INDEX IF NOT EXISTS idx_entries_seller_status ON queue_entries (seller_id, status)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.EntryModel{})
		},
	}
}
