package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/infra/postgresql/migrations"
	"github.com/partline/quote-engine/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// These tests run against a real Postgres because the repository layer's
// guarantees live in its SQL: row locks, conditional updates, and ON CONFLICT
// behavior. Set TEST_DATABASE_DSN (or put it in .env) to enable them.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := migrations.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	truncateAll(t, db)
	t.Cleanup(func() {
		truncateAll(t, db)
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func truncateAll(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Exec("TRUNCATE part_requests, queue_entries, quotes, notifications, seller_tiers").Error
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func seedRequest(t *testing.T, db *gorm.DB, buyerID string, status domain.RequestStatus) *domain.PartRequest {
	t.Helper()

	request := &domain.PartRequest{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		PartName:  "Brake caliper",
		Condition: domain.ConditionAny,
		Urgency:   domain.UrgencyMedium,
		Status:    status,
		ExpiresAt: time.Now().UTC().Add(72 * time.Hour),
	}
	if err := repository.NewGormRequestRepo(db).Create(context.Background(), request); err != nil {
		t.Fatalf("failed to seed request: %v", err)
	}
	return request
}

func seedQuote(t *testing.T, db *gorm.DB, requestID, sellerID string) *domain.Quote {
	t.Helper()

	quote := &domain.Quote{
		ID:                   uuid.NewString(),
		RequestID:            requestID,
		SellerID:             sellerID,
		PriceCents:           12500,
		Currency:             "USD",
		DeliveryEstimateDays: 3,
		Condition:            domain.ConditionUsed,
		Status:               domain.QuoteStatusPending,
	}
	if err := repository.NewGormQuoteRepo(db).Create(context.Background(), quote); err != nil {
		t.Fatalf("failed to seed quote: %v", err)
	}
	return quote
}

func seedEntry(t *testing.T, db *gorm.DB, requestID, sellerID string, scheduledAt time.Time) *domain.QueueEntry {
	t.Helper()

	entry := &domain.QueueEntry{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		SellerID:    sellerID,
		Status:      domain.EntryStatusPending,
		ScheduledAt: scheduledAt,
	}
	err := repository.NewGormEntryRepo(db).CreateBatch(context.Background(), []*domain.QueueEntry{entry})
	if err != nil {
		t.Fatalf("failed to seed queue entry: %v", err)
	}
	return entry
}
