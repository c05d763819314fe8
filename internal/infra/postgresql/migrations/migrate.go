package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/partline/quote-engine/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_part_requests",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.RequestModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_requests_expiry ON part_requests (expires_at) WHERE status IN ('OPEN', 'IN_PROGRESS')`,
					`CREATE INDEX IF NOT EXISTS idx_requests_status ON part_requests (status)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.RequestModel{})
			},
		},
		createQueueEntries(),
		createQuotes(),
		createNotifications(),
		createSellerTiers(),
	})

	return m.Migrate()
}
