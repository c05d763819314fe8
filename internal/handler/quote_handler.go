package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/repository"
	"github.com/partline/quote-engine/internal/service"
)

type QuoteService interface {
	SubmitQuote(ctx context.Context, cmd service.SubmitQuoteCommand) (*domain.Quote, error)
	DeclineEntry(ctx context.Context, entryID, sellerID string) error
	Inbox(ctx context.Context, sellerID string, params repository.InboxListParams) ([]domain.QueueEntry, int64, error)
}

type QuoteHandler struct {
	quotes QuoteService
}

func NewQuoteHandler(quotes QuoteService) (*QuoteHandler, error) {
	if quotes == nil {
		return nil, fmt.Errorf("quote service is required")
	}
	return &QuoteHandler{quotes: quotes}, nil
}

func RegisterQuoteRoutes(router fiber.Router, quotes QuoteService) error {
	h, err := NewQuoteHandler(quotes)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/requests/:id/quotes", h.SubmitQuote)
	v1.Get("/inbox", h.ListInbox)
	v1.Post("/entries/:id/decline", h.DeclineEntry)

	return nil
}

type submitQuoteRequest struct {
	PriceCents           int64  `json:"priceCents" validate:"required,gt=0"`
	Currency             string `json:"currency"`
	DeliveryEstimateDays int    `json:"deliveryEstimateDays" validate:"gte=0"`
	Condition            string `json:"condition" validate:"required"`
	Notes                string `json:"notes"`
}

type quoteResponse struct {
	ID                   string    `json:"id"`
	RequestID            string    `json:"requestId"`
	SellerID             string    `json:"sellerId"`
	PriceCents           int64     `json:"priceCents"`
	Currency             string    `json:"currency"`
	DeliveryEstimateDays int       `json:"deliveryEstimateDays"`
	Condition            string    `json:"condition"`
	Notes                string    `json:"notes,omitempty"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

type inboxEntryResponse struct {
	ID          string     `json:"id"`
	RequestID   string     `json:"requestId"`
	Status      string     `json:"status"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type listInboxResponse struct {
	Data []inboxEntryResponse `json:"data"`
	Meta listMeta             `json:"meta"`
}

func (h *QuoteHandler) SubmitQuote(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, domain.RoleSeller)
	if err != nil {
		return err
	}

	var req submitQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	condition, err := domain.ParseConditionFromString(req.Condition)
	if err != nil {
		return toHTTPError(err)
	}

	quote, err := h.quotes.SubmitQuote(c.Context(), service.SubmitQuoteCommand{
		RequestID:            strings.TrimSpace(c.Params("id")),
		SellerID:             identity.UserID,
		PriceCents:           req.PriceCents,
		Currency:             req.Currency,
		DeliveryEstimateDays: req.DeliveryEstimateDays,
		Condition:            condition,
		Notes:                req.Notes,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toQuoteResponse(quote))
}

func (h *QuoteHandler) ListInbox(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, domain.RoleSeller)
	if err != nil {
		return err
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return err
	}

	entries, total, err := h.quotes.Inbox(c.Context(), identity.UserID, repository.InboxListParams{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]inboxEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, inboxEntryResponse{
			ID:          entry.ID,
			RequestID:   entry.RequestID,
			Status:      entry.Status.String(),
			ScheduledAt: entry.ScheduledAt,
			ProcessedAt: entry.ProcessedAt,
			CreatedAt:   entry.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(listInboxResponse{
		Data: data,
		Meta: listMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func (h *QuoteHandler) DeclineEntry(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, domain.RoleSeller)
	if err != nil {
		return err
	}

	entryID := strings.TrimSpace(c.Params("id"))
	if err := h.quotes.DeclineEntry(c.Context(), entryID, identity.UserID); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"entryId": entryID,
		"status":  domain.EntryStatusRejectedBySeller.String(),
	})
}

func toQuoteResponses(quotes []domain.Quote) []quoteResponse {
	responses := make([]quoteResponse, 0, len(quotes))
	for i := range quotes {
		responses = append(responses, toQuoteResponse(&quotes[i]))
	}
	return responses
}

func toQuoteResponse(q *domain.Quote) quoteResponse {
	if q == nil {
		return quoteResponse{}
	}

	return quoteResponse{
		ID:                   q.ID,
		RequestID:            q.RequestID,
		SellerID:             q.SellerID,
		PriceCents:           q.PriceCents,
		Currency:             q.Currency,
		DeliveryEstimateDays: q.DeliveryEstimateDays,
		Condition:            q.Condition.String(),
		Notes:                q.Notes,
		Status:               q.Status.String(),
		CreatedAt:            q.CreatedAt,
		UpdatedAt:            q.UpdatedAt,
	}
}
