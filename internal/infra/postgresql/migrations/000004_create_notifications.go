package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/partline/quote-engine/internal/repository"
	"gorm.io/gorm"
)

func createNotifications() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_notifications",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.NotificationModel{}); err != nil {
				return err
			}
			return tx.Exec(
				`CREATE INDEX IF NOT EXISTS idx_notifications_outbox ON notifications (created_at) WHERE dispatched_at IS NULL`,
			).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.NotificationModel{})
		},
	}
}
