package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntryStatus represents the delivery state of a queue entry.
type EntryStatus string

const (
	EntryStatusPending          EntryStatus = "PENDING"
	EntryStatusProcessed        EntryStatus = "PROCESSED"
	EntryStatusRejectedBySeller EntryStatus = "REJECTED_BY_SELLER"
	EntryStatusFailed           EntryStatus = "FAILED"
)

func (s EntryStatus) String() string { return string(s) }

func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusPending, EntryStatusProcessed, EntryStatusRejectedBySeller, EntryStatusFailed:
		return true
	}
	return false
}

func ParseEntryStatusFromString(s string) (EntryStatus, error) {
	st := EntryStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid entry status %q", ErrValidation, s)
	}
	return st, nil
}

// QueueEntry is the per-seller visibility record for one part request.
// Exactly one entry exists per (request, seller) pair; the request becomes
// visible to the seller only once the entry is processed.
type QueueEntry struct {
	ID          string
	RequestID   string
	SellerID    string
	Status      EntryStatus
	ScheduledAt time.Time
	ProcessedAt *time.Time
	RejectedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e *QueueEntry) Validate() error {
	if strings.TrimSpace(e.RequestID) == "" {
		return fmt.Errorf("%w: request id is required", ErrValidation)
	}
	if strings.TrimSpace(e.SellerID) == "" {
		return fmt.Errorf("%w: seller id is required", ErrValidation)
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("%w: invalid entry status %q", ErrValidation, e.Status)
	}
	if e.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduled delivery time is required", ErrValidation)
	}
	return nil
}

// Deliverable reports whether the entry is due for delivery at the given time.
func (e *QueueEntry) Deliverable(now time.Time) bool {
	return e.Status == EntryStatusPending && !e.ScheduledAt.After(now)
}
