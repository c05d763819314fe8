package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuoteStatus represents the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "PENDING"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

func (s QuoteStatus) String() string { return string(s) }

func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusAccepted, QuoteStatusRejected:
		return true
	}
	return false
}

func ParseQuoteStatusFromString(s string) (QuoteStatus, error) {
	st := QuoteStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid quote status %q", ErrValidation, s)
	}
	return st, nil
}

const (
	MaxQuoteNotesLength = 2000
	DefaultCurrency     = "USD"
)

// Quote is a seller's priced response to a part request. At most one quote
// per (request, seller) is non-rejected at any time, and at most one quote
// per request is ever accepted.
type Quote struct {
	ID                   string
	RequestID            string
	SellerID             string
	PriceCents           int64
	Currency             string
	DeliveryEstimateDays int
	Condition            Condition
	Notes                string
	Status               QuoteStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (q *Quote) Validate() error {
	if strings.TrimSpace(q.RequestID) == "" {
		return fmt.Errorf("%w: request id is required", ErrValidation)
	}
	if strings.TrimSpace(q.SellerID) == "" {
		return fmt.Errorf("%w: seller id is required", ErrValidation)
	}
	if q.PriceCents <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if q.DeliveryEstimateDays < 0 {
		return fmt.Errorf("%w: delivery estimate must not be negative", ErrValidation)
	}
	if !q.Condition.IsValid() {
		return fmt.Errorf("%w: invalid condition %q", ErrValidation, q.Condition)
	}
	if len([]rune(q.Notes)) > MaxQuoteNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrValidation, MaxQuoteNotesLength)
	}
	return nil
}
