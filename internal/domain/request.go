package domain

import (
	"fmt"
	"strings"
	"time"
)

// RequestStatus represents the lifecycle state of a part request.
type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "OPEN"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusFulfilled  RequestStatus = "FULFILLED"
	RequestStatusExpired    RequestStatus = "EXPIRED"
)

func (s RequestStatus) String() string { return string(s) }

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusInProgress, RequestStatusFulfilled, RequestStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusFulfilled || s == RequestStatusExpired
}

func ParseRequestStatusFromString(s string) (RequestStatus, error) {
	st := RequestStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid request status %q", ErrValidation, s)
	}
	return st, nil
}

// Urgency represents the buyer-declared urgency tier of a request.
type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

func (u Urgency) String() string { return string(u) }

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

// Rank orders urgencies for delivery scheduling, lower is more urgent.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyLow:
		return 2
	default:
		return 3
	}
}

func ParseUrgencyFromString(s string) (Urgency, error) {
	u := Urgency(strings.ToUpper(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", fmt.Errorf("%w: invalid urgency %q", ErrValidation, s)
	}
	return u, nil
}

// Condition represents the condition a part is requested or offered in.
type Condition string

const (
	ConditionNew         Condition = "NEW"
	ConditionUsed        Condition = "USED"
	ConditionRefurbished Condition = "REFURBISHED"
	ConditionAny         Condition = "ANY"
)

func (c Condition) String() string { return string(c) }

func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionRefurbished, ConditionAny:
		return true
	}
	return false
}

func ParseConditionFromString(s string) (Condition, error) {
	c := Condition(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: invalid condition %q", ErrValidation, s)
	}
	return c, nil
}

const (
	MaxPartNameLength    = 255
	MaxDescriptionLength = 4000
	MinVehicleYear       = 1900
)

// PartRequest is the buyer-owned root entity of the quote lifecycle.
type PartRequest struct {
	ID             string
	BuyerID        string
	PartName       string
	PartNumber     *string
	VehicleMake    string
	VehicleModel   string
	VehicleYear    int
	Condition      Condition
	BudgetCents    *int64
	Urgency        Urgency
	Location       string
	Description    string
	Status         RequestStatus
	ExpiresAt      time.Time
	ExpiryNotified bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *PartRequest) Validate() error {
	if strings.TrimSpace(r.BuyerID) == "" {
		return fmt.Errorf("%w: buyer id is required", ErrValidation)
	}
	if strings.TrimSpace(r.PartName) == "" {
		return fmt.Errorf("%w: part name is required", ErrValidation)
	}
	if len([]rune(r.PartName)) > MaxPartNameLength {
		return fmt.Errorf("%w: part name exceeds %d characters", ErrValidation, MaxPartNameLength)
	}
	if len([]rune(r.Description)) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}
	if r.VehicleYear != 0 && (r.VehicleYear < MinVehicleYear || r.VehicleYear > time.Now().Year()+1) {
		return fmt.Errorf("%w: invalid vehicle year %d", ErrValidation, r.VehicleYear)
	}
	if !r.Condition.IsValid() {
		return fmt.Errorf("%w: invalid condition %q", ErrValidation, r.Condition)
	}
	if !r.Urgency.IsValid() {
		return fmt.Errorf("%w: invalid urgency %q", ErrValidation, r.Urgency)
	}
	if r.BudgetCents != nil && *r.BudgetCents <= 0 {
		return fmt.Errorf("%w: budget must be positive", ErrValidation)
	}
	if r.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: expiry time is required", ErrValidation)
	}
	return nil
}
