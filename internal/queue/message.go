package queue

import (
	"fmt"
	"strings"

	"github.com/partline/quote-engine/internal/domain"
)

// NotificationMessage is the broker payload handed to the messaging gateway.
type NotificationMessage struct {
	NotificationID string                  `json:"notificationId"`
	RecipientID    string                  `json:"recipientId"`
	Role           domain.Role             `json:"role"`
	Type           domain.NotificationType `json:"type"`
	Title          string                  `json:"title"`
	Body           string                  `json:"body,omitempty"`
	RequestID      *string                 `json:"requestId,omitempty"`
}

func (m NotificationMessage) Validate() error {
	if strings.TrimSpace(m.NotificationID) == "" {
		return fmt.Errorf("notificationId is required")
	}
	if strings.TrimSpace(m.RecipientID) == "" {
		return fmt.Errorf("recipientId is required")
	}
	if !m.Role.IsValid() {
		return fmt.Errorf("invalid role %q", m.Role)
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid notification type %q", m.Type)
	}
	return nil
}
