package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/repository"
)

type NotificationService interface {
	List(ctx context.Context, recipientID string, params repository.NotificationListParams) ([]domain.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

type NotificationHandler struct {
	notifications NotificationService
}

func NewNotificationHandler(notifications NotificationService) (*NotificationHandler, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification service is required")
	}
	return &NotificationHandler{notifications: notifications}, nil
}

func RegisterNotificationRoutes(router fiber.Router, notifications NotificationService) error {
	h, err := NewNotificationHandler(notifications)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/notifications", h.ListNotifications)
	v1.Post("/notifications/:id/read", h.MarkNotificationRead)

	return nil
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	RequestID *string   `json:"requestId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type listNotificationsResponse struct {
	Data []notificationResponse `json:"data"`
	Meta listMeta               `json:"meta"`
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, "")
	if err != nil {
		return err
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return err
	}

	params := repository.NotificationListParams{
		UnreadOnly: c.QueryBool("unreadOnly", false),
		Page:       page,
		PageSize:   pageSize,
	}

	notifications, total, err := h.notifications.List(c.Context(), identity.UserID, params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		data = append(data, notificationResponse{
			ID:        n.ID,
			Type:      n.Type.String(),
			Title:     n.Title,
			Body:      n.Body,
			RequestID: n.RequestID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(listNotificationsResponse{
		Data: data,
		Meta: listMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func (h *NotificationHandler) MarkNotificationRead(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, "")
	if err != nil {
		return err
	}

	id := strings.TrimSpace(c.Params("id"))
	if err := h.notifications.MarkRead(c.Context(), id, identity.UserID); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"notificationId": id,
		"read":           true,
	})
}
