package repository

import (
	"time"

	"github.com/partline/quote-engine/internal/domain"
)

// RequestModel is the persistence model for the part_requests table.
type RequestModel struct {
	ID             string               `gorm:"type:uuid;primaryKey"`
	BuyerID        string               `gorm:"type:uuid;not null;index:idx_requests_buyer_created,priority:1"`
	PartName       string               `gorm:"type:varchar(255);not null"`
	PartNumber     *string              `gorm:"type:varchar(64)"`
	VehicleMake    string               `gorm:"type:varchar(64)"`
	VehicleModel   string               `gorm:"type:varchar(64)"`
	VehicleYear    int                  `gorm:"type:int"`
	Condition      domain.Condition     `gorm:"type:varchar(16);not null"`
	BudgetCents    *int64               `gorm:"type:bigint"`
	Urgency        domain.Urgency       `gorm:"type:varchar(10);not null"`
	Location       string               `gorm:"type:varchar(255)"`
	Description    string               `gorm:"type:text"`
	Status         domain.RequestStatus `gorm:"type:varchar(20);not null"`
	ExpiresAt      time.Time            `gorm:"type:timestamptz;not null"`
	ExpiryNotified bool                 `gorm:"not null;default:false"`
	CreatedAt      time.Time            `gorm:"index:idx_requests_buyer_created,priority:2"`
	UpdatedAt      time.Time
}

func (RequestModel) TableName() string {
	return "part_requests"
}

// EntryModel is the persistence model for queue_entries.
type EntryModel struct {
	ID          string             `gorm:"type:uuid;primaryKey"`
	RequestID   string             `gorm:"type:uuid;not null;uniqueIndex:idx_entries_request_seller,priority:1"`
	SellerID    string             `gorm:"type:uuid;not null;uniqueIndex:idx_entries_request_seller,priority:2"`
	Status      domain.EntryStatus `gorm:"type:varchar(20);not null"`
	ScheduledAt time.Time          `gorm:"type:timestamptz;not null"`
	ProcessedAt *time.Time         `gorm:"type:timestamptz"`
	RejectedAt  *time.Time         `gorm:"type:timestamptz"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (EntryModel) TableName() string {
	return "queue_entries"
}

// QuoteModel is the persistence model for quotes.
type QuoteModel struct {
	ID                   string             `gorm:"type:uuid;primaryKey"`
	RequestID            string             `gorm:"type:uuid;not null;index:idx_quotes_request_status,priority:1"`
	SellerID             string             `gorm:"type:uuid;not null"`
	PriceCents           int64              `gorm:"type:bigint;not null"`
	Currency             string             `gorm:"type:varchar(3);not null"`
	DeliveryEstimateDays int                `gorm:"type:int;not null"`
	Condition            domain.Condition   `gorm:"type:varchar(16);not null"`
	Notes                string             `gorm:"type:text"`
	Status               domain.QuoteStatus `gorm:"type:varchar(10);not null;index:idx_quotes_request_status,priority:2"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (QuoteModel) TableName() string {
	return "quotes"
}

// NotificationModel is the persistence model for notifications.
type NotificationModel struct {
	ID            string                  `gorm:"type:uuid;primaryKey"`
	RecipientID   string                  `gorm:"type:uuid;not null;index:idx_notifications_recipient_created,priority:1"`
	RecipientRole domain.Role             `gorm:"type:varchar(10);not null"`
	Type          domain.NotificationType `gorm:"type:varchar(24);not null"`
	Title         string                  `gorm:"type:varchar(255);not null"`
	Body          string                  `gorm:"type:text"`
	RequestID     *string                 `gorm:"type:uuid"`
	Read          bool                    `gorm:"not null;default:false"`
	DispatchedAt  *time.Time              `gorm:"type:timestamptz"`
	CreatedAt     time.Time               `gorm:"index:idx_notifications_recipient_created,priority:2"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// SellerTierModel is the persistence model for seller_tiers.
type SellerTierModel struct {
	SellerID  string      `gorm:"type:uuid;primaryKey"`
	Tier      domain.Tier `gorm:"type:varchar(10);not null"`
	UpdatedAt time.Time
}

func (SellerTierModel) TableName() string {
	return "seller_tiers"
}

func requestModelFromDomain(r *domain.PartRequest) *RequestModel {
	if r == nil {
		return nil
	}

	return &RequestModel{
		ID:             r.ID,
		BuyerID:        r.BuyerID,
		PartName:       r.PartName,
		PartNumber:     r.PartNumber,
		VehicleMake:    r.VehicleMake,
		VehicleModel:   r.VehicleModel,
		VehicleYear:    r.VehicleYear,
		Condition:      r.Condition,
		BudgetCents:    r.BudgetCents,
		Urgency:        r.Urgency,
		Location:       r.Location,
		Description:    r.Description,
		Status:         r.Status,
		ExpiresAt:      r.ExpiresAt,
		ExpiryNotified: r.ExpiryNotified,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func requestModelToDomain(m *RequestModel) *domain.PartRequest {
	if m == nil {
		return nil
	}

	return &domain.PartRequest{
		ID:             m.ID,
		BuyerID:        m.BuyerID,
		PartName:       m.PartName,
		PartNumber:     m.PartNumber,
		VehicleMake:    m.VehicleMake,
		VehicleModel:   m.VehicleModel,
		VehicleYear:    m.VehicleYear,
		Condition:      m.Condition,
		BudgetCents:    m.BudgetCents,
		Urgency:        m.Urgency,
		Location:       m.Location,
		Description:    m.Description,
		Status:         m.Status,
		ExpiresAt:      m.ExpiresAt,
		ExpiryNotified: m.ExpiryNotified,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func entryModelFromDomain(e *domain.QueueEntry) *EntryModel {
	if e == nil {
		return nil
	}

	return &EntryModel{
		ID:          e.ID,
		RequestID:   e.RequestID,
		SellerID:    e.SellerID,
		Status:      e.Status,
		ScheduledAt: e.ScheduledAt,
		ProcessedAt: e.ProcessedAt,
		RejectedAt:  e.RejectedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func entryModelToDomain(m *EntryModel) *domain.QueueEntry {
	if m == nil {
		return nil
	}

	return &domain.QueueEntry{
		ID:          m.ID,
		RequestID:   m.RequestID,
		SellerID:    m.SellerID,
		Status:      m.Status,
		ScheduledAt: m.ScheduledAt,
		ProcessedAt: m.ProcessedAt,
		RejectedAt:  m.RejectedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func quoteModelFromDomain(q *domain.Quote) *QuoteModel {
	if q == nil {
		return nil
	}

	return &QuoteModel{
		ID:                   q.ID,
		RequestID:            q.RequestID,
		SellerID:             q.SellerID,
		PriceCents:           q.PriceCents,
		Currency:             q.Currency,
		DeliveryEstimateDays: q.DeliveryEstimateDays,
		Condition:            q.Condition,
		Notes:                q.Notes,
		Status:               q.Status,
		CreatedAt:            q.CreatedAt,
		UpdatedAt:            q.UpdatedAt,
	}
}

func quoteModelToDomain(m *QuoteModel) *domain.Quote {
	if m == nil {
		return nil
	}

	return &domain.Quote{
		ID:                   m.ID,
		RequestID:            m.RequestID,
		SellerID:             m.SellerID,
		PriceCents:           m.PriceCents,
		Currency:             m.Currency,
		DeliveryEstimateDays: m.DeliveryEstimateDays,
		Condition:            m.Condition,
		Notes:                m.Notes,
		Status:               m.Status,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func notificationModelFromDomain(n *domain.Notification) *NotificationModel {
	if n == nil {
		return nil
	}

	return &NotificationModel{
		ID:            n.ID,
		RecipientID:   n.RecipientID,
		RecipientRole: n.RecipientRole,
		Type:          n.Type,
		Title:         n.Title,
		Body:          n.Body,
		RequestID:     n.RequestID,
		Read:          n.Read,
		DispatchedAt:  n.DispatchedAt,
		CreatedAt:     n.CreatedAt,
	}
}

func notificationModelToDomain(m *NotificationModel) *domain.Notification {
	if m == nil {
		return nil
	}

	return &domain.Notification{
		ID:            m.ID,
		RecipientID:   m.RecipientID,
		RecipientRole: m.RecipientRole,
		Type:          m.Type,
		Title:         m.Title,
		Body:          m.Body,
		RequestID:     m.RequestID,
		Read:          m.Read,
		DispatchedAt:  m.DispatchedAt,
		CreatedAt:     m.CreatedAt,
	}
}
