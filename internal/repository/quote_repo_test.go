package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/repository"
)

func TestQuoteRepoCreateRejectsTerminalRequest(t *testing.T) {
	db := testDB(t)

	request := seedRequest(t, db, uuid.NewString(), domain.RequestStatusFulfilled)
	quotes := repository.NewGormQuoteRepo(db)

	quote := &domain.Quote{
		ID:         uuid.NewString(),
		RequestID:  request.ID,
		SellerID:   uuid.NewString(),
		PriceCents: 9900,
		Currency:   "USD",
		Condition:  domain.ConditionNew,
		Status:     domain.QuoteStatusPending,
	}
	err := quotes.Create(context.Background(), quote)
	if !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("error = %v, want precondition failed", err)
	}

	var count int64
	if err := db.Model(&repository.QuoteModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count quotes: %v", err)
	}
	if count != 0 {
		t.Fatalf("quote rows = %d, want 0 on a closed request", count)
	}
}

func TestQuoteRepoUpdatePendingRejectsTerminalRequest(t *testing.T) {
	db := testDB(t)

	buyerID := uuid.NewString()
	request := seedRequest(t, db, buyerID, domain.RequestStatusInProgress)
	quote := seedQuote(t, db, request.ID, uuid.NewString())

	db.Model(&repository.RequestModel{}).
		Where("id = ?", request.ID).
		Update("status", domain.RequestStatusExpired)

	quotes := repository.NewGormQuoteRepo(db)
	quote.PriceCents = 8800
	err := quotes.UpdatePending(context.Background(), quote)
	if !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("error = %v, want precondition failed", err)
	}
}

func TestQuoteRepoUpdatePendingConflictsOnDecidedQuote(t *testing.T) {
	db := testDB(t)

	buyerID := uuid.NewString()
	request := seedRequest(t, db, buyerID, domain.RequestStatusInProgress)
	quote := seedQuote(t, db, request.ID, uuid.NewString())

	store := repository.NewGormAcceptanceStore(db)
	if _, err := store.Reject(context.Background(), request.ID, quote.ID, buyerID); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	quotes := repository.NewGormQuoteRepo(db)
	quote.PriceCents = 8800
	err := quotes.UpdatePending(context.Background(), quote)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("error = %v, want conflict", err)
	}
}

func TestQuoteRepoGetActiveForSellerIgnoresRejected(t *testing.T) {
	db := testDB(t)

	buyerID := uuid.NewString()
	sellerID := uuid.NewString()
	request := seedRequest(t, db, buyerID, domain.RequestStatusInProgress)
	quote := seedQuote(t, db, request.ID, sellerID)

	quotes := repository.NewGormQuoteRepo(db)

	active, err := quotes.GetActiveForSeller(context.Background(), request.ID, sellerID)
	if err != nil {
		t.Fatalf("GetActiveForSeller() error = %v", err)
	}
	if active.ID != quote.ID {
		t.Fatalf("active quote = %s, want %s", active.ID, quote.ID)
	}

	store := repository.NewGormAcceptanceStore(db)
	if _, err := store.Reject(context.Background(), request.ID, quote.ID, buyerID); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	_, err = quotes.GetActiveForSeller(context.Background(), request.ID, sellerID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want not found after rejection", err)
	}
}
