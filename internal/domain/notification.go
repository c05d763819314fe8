package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies which side of the marketplace a user acts as.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	return r == RoleBuyer || r == RoleSeller
}

func ParseRoleFromString(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
	}
	return r, nil
}

// NotificationType enumerates the feed event kinds.
type NotificationType string

const (
	NotificationNewQuote          NotificationType = "NEW_QUOTE"
	NotificationQuoteAccepted     NotificationType = "QUOTE_ACCEPTED"
	NotificationQuoteRejected     NotificationType = "QUOTE_REJECTED"
	NotificationRequestExpiring   NotificationType = "REQUEST_EXPIRING"
	NotificationRequestExpired    NotificationType = "REQUEST_EXPIRED"
	NotificationSubscriptionEvent NotificationType = "SUBSCRIPTION_EVENT"
)

func (t NotificationType) String() string { return string(t) }

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationNewQuote, NotificationQuoteAccepted, NotificationQuoteRejected,
		NotificationRequestExpiring, NotificationRequestExpired, NotificationSubscriptionEvent:
		return true
	}
	return false
}

func ParseNotificationTypeFromString(s string) (NotificationType, error) {
	t := NotificationType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid notification type %q", ErrValidation, s)
	}
	return t, nil
}

// Notification is an append-only per-recipient feed row. Only the read flag
// is ever mutated after creation; DispatchedAt tracks outbox delivery to the
// outbound messaging gateway.
type Notification struct {
	ID            string
	RecipientID   string
	RecipientRole Role
	Type          NotificationType
	Title         string
	Body          string
	RequestID     *string
	Read          bool
	DispatchedAt  *time.Time
	CreatedAt     time.Time
}

func (n *Notification) Validate() error {
	if strings.TrimSpace(n.RecipientID) == "" {
		return fmt.Errorf("%w: recipient id is required", ErrValidation)
	}
	if !n.RecipientRole.IsValid() {
		return fmt.Errorf("%w: invalid recipient role %q", ErrValidation, n.RecipientRole)
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: invalid notification type %q", ErrValidation, n.Type)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}
