package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/partline/quote-engine/internal/domain"
)

func TestDistribute(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	delays := map[string]time.Duration{
		"seller-premium":  0,
		"seller-standard": 6 * time.Hour,
		"seller-basic":    24 * time.Hour,
	}

	var captured []*domain.QueueEntry
	entries := &fakeEntryRepo{
		createBatchFn: func(ctx context.Context, batch []*domain.QueueEntry) error {
			captured = batch
			return nil
		},
	}
	tiers := &fakeTierResolver{
		delayFn: func(ctx context.Context, sellerID string) (time.Duration, error) {
			return delays[sellerID], nil
		},
	}

	distributor, err := NewDistributor(entries, tiers, nil)
	if err != nil {
		t.Fatalf("NewDistributor() error = %v", err)
	}
	distributor.now = func() time.Time { return now }

	request := &domain.PartRequest{
		ID:      "req-1",
		BuyerID: "buyer-1",
		Urgency: domain.UrgencyHigh,
		Status:  domain.RequestStatusOpen,
	}

	out, err := distributor.Distribute(context.Background(), request, []string{
		"seller-premium",
		"seller-standard",
		"seller-basic",
		"seller-premium", // duplicate
		"  ",             // blank
	})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("fanned out %d entries, want 3", len(out))
	}
	if len(captured) != 3 {
		t.Fatalf("persisted %d entries, want 3", len(captured))
	}

	for _, entry := range captured {
		if entry.ID == "" {
			t.Error("entry id should be assigned")
		}
		if entry.RequestID != "req-1" {
			t.Errorf("entry request id = %q, want req-1", entry.RequestID)
		}
		if entry.Status != domain.EntryStatusPending {
			t.Errorf("entry status = %q, want PENDING", entry.Status)
		}

		wantScheduled := now.Add(delays[entry.SellerID])
		if !entry.ScheduledAt.Equal(wantScheduled) {
			t.Errorf("seller %s scheduled at %v, want %v", entry.SellerID, entry.ScheduledAt, wantScheduled)
		}
	}
}

func TestDistributeEmptyCandidates(t *testing.T) {
	t.Parallel()

	entries := &fakeEntryRepo{
		createBatchFn: func(ctx context.Context, batch []*domain.QueueEntry) error {
			t.Error("CreateBatch should not be called for an empty candidate list")
			return nil
		},
	}
	tiers := &fakeTierResolver{
		delayFn: func(ctx context.Context, sellerID string) (time.Duration, error) {
			return 0, nil
		},
	}

	distributor, err := NewDistributor(entries, tiers, nil)
	if err != nil {
		t.Fatalf("NewDistributor() error = %v", err)
	}

	request := &domain.PartRequest{ID: "req-1", Status: domain.RequestStatusOpen}
	out, err := distributor.Distribute(context.Background(), request, nil)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if out != nil {
		t.Fatalf("entries = %v, want nil", out)
	}
}

func TestDistributeRequiresOpenRequest(t *testing.T) {
	t.Parallel()

	entries := &fakeEntryRepo{}
	tiers := &fakeTierResolver{}

	distributor, err := NewDistributor(entries, tiers, nil)
	if err != nil {
		t.Fatalf("NewDistributor() error = %v", err)
	}

	request := &domain.PartRequest{ID: "req-1", Status: domain.RequestStatusFulfilled}
	_, err = distributor.Distribute(context.Background(), request, []string{"seller-1"})
	if !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("error = %v, want precondition failure", err)
	}
}

func TestDistributeTierLookupFailure(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("tier store unavailable")
	entries := &fakeEntryRepo{
		createBatchFn: func(ctx context.Context, batch []*domain.QueueEntry) error {
			t.Error("CreateBatch should not be called when tier lookup fails")
			return nil
		},
	}
	tiers := &fakeTierResolver{
		delayFn: func(ctx context.Context, sellerID string) (time.Duration, error) {
			return 0, wantErr
		},
	}

	distributor, err := NewDistributor(entries, tiers, nil)
	if err != nil {
		t.Fatalf("NewDistributor() error = %v", err)
	}

	request := &domain.PartRequest{ID: "req-1", Status: domain.RequestStatusOpen}
	_, err = distributor.Distribute(context.Background(), request, []string{"seller-1"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}
