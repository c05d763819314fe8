package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/repository"
)

func TestEntryRepoCreateBatchIdempotentRerun(t *testing.T) {
	db := testDB(t)

	request := seedRequest(t, db, uuid.NewString(), domain.RequestStatusOpen)
	sellerA := uuid.NewString()
	sellerB := uuid.NewString()
	scheduledAt := time.Now().UTC().Truncate(time.Second)

	entries := repository.NewGormEntryRepo(db)

	first := []*domain.QueueEntry{
		{ID: uuid.NewString(), RequestID: request.ID, SellerID: sellerA, Status: domain.EntryStatusPending, ScheduledAt: scheduledAt},
		{ID: uuid.NewString(), RequestID: request.ID, SellerID: sellerB, Status: domain.EntryStatusPending, ScheduledAt: scheduledAt},
	}
	if err := entries.CreateBatch(context.Background(), first); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	// Re-run with fresh ids for the same (request, seller) pairs: the
	// conflicting rows are skipped and the originals must be returned.
	rerun := []*domain.QueueEntry{
		{ID: uuid.NewString(), RequestID: request.ID, SellerID: sellerA, Status: domain.EntryStatusPending, ScheduledAt: scheduledAt},
		{ID: uuid.NewString(), RequestID: request.ID, SellerID: sellerB, Status: domain.EntryStatusPending, ScheduledAt: scheduledAt},
	}
	if err := entries.CreateBatch(context.Background(), rerun); err != nil {
		t.Fatalf("CreateBatch() re-run error = %v", err)
	}

	if rerun[0].ID != first[0].ID || rerun[1].ID != first[1].ID {
		t.Fatalf("re-run ids = %s, %s, want originals %s, %s",
			rerun[0].ID, rerun[1].ID, first[0].ID, first[1].ID)
	}

	var count int64
	if err := db.Model(&repository.EntryModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 2 {
		t.Fatalf("entry rows = %d, want 2", count)
	}

	for _, entry := range rerun {
		if _, err := entries.GetByID(context.Background(), entry.ID); err != nil {
			t.Fatalf("returned entry id %s not persisted: %v", entry.ID, err)
		}
	}
}

func TestEntryRepoMarkProcessedClaimsOnce(t *testing.T) {
	db := testDB(t)

	request := seedRequest(t, db, uuid.NewString(), domain.RequestStatusOpen)
	entry := seedEntry(t, db, request.ID, uuid.NewString(), time.Now().UTC().Add(-time.Minute))

	entries := repository.NewGormEntryRepo(db)
	now := time.Now().UTC()

	claimed, err := entries.MarkProcessed(context.Background(), entry.ID, now)
	if err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	if !claimed {
		t.Fatal("first claim should succeed")
	}

	claimed, err = entries.MarkProcessed(context.Background(), entry.ID, now)
	if err != nil {
		t.Fatalf("MarkProcessed() second call error = %v", err)
	}
	if claimed {
		t.Fatal("second claim should lose, the entry is already processed")
	}

	persisted, err := entries.GetByID(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if persisted.Status != domain.EntryStatusProcessed || persisted.ProcessedAt == nil {
		t.Fatalf("entry = %+v, want PROCESSED with processed_at set", persisted)
	}
}

func TestEntryRepoGetDueForDeliveryOrdersByUrgency(t *testing.T) {
	db := testDB(t)

	now := time.Now().UTC()
	buyerID := uuid.NewString()

	lowRequest := seedRequest(t, db, buyerID, domain.RequestStatusOpen)
	db.Model(&repository.RequestModel{}).Where("id = ?", lowRequest.ID).Update("urgency", domain.UrgencyLow)
	highRequest := seedRequest(t, db, buyerID, domain.RequestStatusOpen)
	db.Model(&repository.RequestModel{}).Where("id = ?", highRequest.ID).Update("urgency", domain.UrgencyHigh)

	// The low-urgency entry has the older schedule; urgency still wins.
	lowEntry := seedEntry(t, db, lowRequest.ID, uuid.NewString(), now.Add(-2*time.Hour))
	highEntry := seedEntry(t, db, highRequest.ID, uuid.NewString(), now.Add(-time.Hour))
	seedEntry(t, db, highRequest.ID, uuid.NewString(), now.Add(time.Hour))

	entries := repository.NewGormEntryRepo(db)
	due, err := entries.GetDueForDelivery(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("GetDueForDelivery() error = %v", err)
	}

	if len(due) != 2 {
		t.Fatalf("due entries = %d, want 2 (future schedule excluded)", len(due))
	}
	if due[0].ID != highEntry.ID || due[1].ID != lowEntry.ID {
		t.Fatalf("order = %s, %s, want high-urgency first", due[0].ID, due[1].ID)
	}
}
