package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/repository"
)

var validate = validator.New()

type RequestService interface {
	Create(ctx context.Context, request *domain.PartRequest, candidateSellerIDs []string) (*domain.PartRequest, []domain.QueueEntry, error)
	Get(ctx context.Context, requestID, requesterID string) (*domain.PartRequest, []domain.Quote, error)
	ListByBuyer(ctx context.Context, buyerID string, params repository.RequestListParams) ([]domain.PartRequest, int64, error)
}

type AcceptanceService interface {
	AcceptQuote(ctx context.Context, requestID, quoteID, requesterID string) error
	RejectQuote(ctx context.Context, requestID, quoteID, requesterID string) error
}

type RequestHandler struct {
	requests   RequestService
	acceptance AcceptanceService
}

func NewRequestHandler(requests RequestService, acceptance AcceptanceService) (*RequestHandler, error) {
	if requests == nil {
		return nil, fmt.Errorf("request service is required")
	}
	if acceptance == nil {
		return nil, fmt.Errorf("acceptance service is required")
	}
	return &RequestHandler{requests: requests, acceptance: acceptance}, nil
}

func RegisterRequestRoutes(router fiber.Router, requests RequestService, acceptance AcceptanceService) error {
	h, err := NewRequestHandler(requests, acceptance)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/requests", h.CreateRequest)
	v1.Get("/requests/:id", h.GetRequest)
	v1.Get("/requests", h.ListRequests)
	v1.Post("/requests/:id/accept", h.AcceptQuote)
	v1.Post("/requests/:id/reject", h.RejectQuote)

	return nil
}

type createRequestRequest struct {
	PartName           string   `json:"partName" validate:"required"`
	PartNumber         *string  `json:"partNumber,omitempty"`
	VehicleMake        string   `json:"vehicleMake" validate:"required"`
	VehicleModel       string   `json:"vehicleModel" validate:"required"`
	VehicleYear        int      `json:"vehicleYear" validate:"required"`
	Condition          string   `json:"condition"`
	BudgetCents        *int64   `json:"budgetCents,omitempty"`
	Urgency            string   `json:"urgency"`
	Location           string   `json:"location"`
	Description        string   `json:"description"`
	ExpiresAt          *string  `json:"expiresAt,omitempty"`
	CandidateSellerIDs []string `json:"candidateSellerIds" validate:"required,min=1,dive,required"`
}

type requestResponse struct {
	ID           string     `json:"id"`
	BuyerID      string     `json:"buyerId"`
	PartName     string     `json:"partName"`
	PartNumber   *string    `json:"partNumber,omitempty"`
	VehicleMake  string     `json:"vehicleMake"`
	VehicleModel string     `json:"vehicleModel"`
	VehicleYear  int        `json:"vehicleYear"`
	Condition    string     `json:"condition"`
	BudgetCents  *int64     `json:"budgetCents,omitempty"`
	Urgency      string     `json:"urgency"`
	Location     string     `json:"location,omitempty"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type createRequestResponse struct {
	Request    requestResponse `json:"request"`
	EntryCount int             `json:"entryCount"`
}

type requestDetailResponse struct {
	Request requestResponse `json:"request"`
	Quotes  []quoteResponse `json:"quotes"`
}

type listRequestsResponse struct {
	Data []requestResponse `json:"data"`
	Meta listMeta          `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type quoteRefRequest struct {
	QuoteID string `json:"quoteId" validate:"required"`
}

func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, domain.RoleBuyer)
	if err != nil {
		return err
	}

	var req createRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	request, err := requestToDomain(req, identity.UserID)
	if err != nil {
		return toHTTPError(err)
	}

	created, entries, err := h.requests.Create(c.Context(), request, req.CandidateSellerIDs)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(createRequestResponse{
		Request:    toRequestResponse(created),
		EntryCount: len(entries),
	})
}

func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, "")
	if err != nil {
		return err
	}

	id := strings.TrimSpace(c.Params("id"))
	request, quotes, err := h.requests.Get(c.Context(), id, identity.UserID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(requestDetailResponse{
		Request: toRequestResponse(request),
		Quotes:  toQuoteResponses(quotes),
	})
}

func (h *RequestHandler) ListRequests(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, domain.RoleBuyer)
	if err != nil {
		return err
	}

	page, pageSize, err := parsePagination(c)
	if err != nil {
		return err
	}

	params := repository.RequestListParams{Page: page, PageSize: pageSize}
	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseRequestStatusFromString(rawStatus)
		if err != nil {
			return toHTTPError(err)
		}
		params.Status = &status
	}

	requests, total, err := h.requests.ListByBuyer(c.Context(), identity.UserID, params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]requestResponse, 0, len(requests))
	for i := range requests {
		data = append(data, toRequestResponse(&requests[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listRequestsResponse{
		Data: data,
		Meta: listMeta{Page: params.Page, PageSize: params.PageSize, Total: total},
	})
}

func (h *RequestHandler) AcceptQuote(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, domain.RoleBuyer)
	if err != nil {
		return err
	}

	var req quoteRefRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	requestID := strings.TrimSpace(c.Params("id"))
	if err := h.acceptance.AcceptQuote(c.Context(), requestID, req.QuoteID, identity.UserID); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"requestId": requestID,
		"quoteId":   req.QuoteID,
		"status":    domain.QuoteStatusAccepted.String(),
	})
}

func (h *RequestHandler) RejectQuote(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, domain.RoleBuyer)
	if err != nil {
		return err
	}

	var req quoteRefRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	requestID := strings.TrimSpace(c.Params("id"))
	if err := h.acceptance.RejectQuote(c.Context(), requestID, req.QuoteID, identity.UserID); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"requestId": requestID,
		"quoteId":   req.QuoteID,
		"status":    domain.QuoteStatusRejected.String(),
	})
}

func requestToDomain(req createRequestRequest, buyerID string) (*domain.PartRequest, error) {
	condition := domain.ConditionAny
	if strings.TrimSpace(req.Condition) != "" {
		parsed, err := domain.ParseConditionFromString(req.Condition)
		if err != nil {
			return nil, err
		}
		condition = parsed
	}

	urgency := domain.UrgencyMedium
	if strings.TrimSpace(req.Urgency) != "" {
		parsed, err := domain.ParseUrgencyFromString(req.Urgency)
		if err != nil {
			return nil, err
		}
		urgency = parsed
	}

	request := &domain.PartRequest{
		BuyerID:      buyerID,
		PartName:     strings.TrimSpace(req.PartName),
		PartNumber:   req.PartNumber,
		VehicleMake:  strings.TrimSpace(req.VehicleMake),
		VehicleModel: strings.TrimSpace(req.VehicleModel),
		VehicleYear:  req.VehicleYear,
		Condition:    condition,
		BudgetCents:  req.BudgetCents,
		Urgency:      urgency,
		Location:     strings.TrimSpace(req.Location),
		Description:  strings.TrimSpace(req.Description),
	}

	if req.ExpiresAt != nil {
		expiresAt, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.ExpiresAt))
		if err != nil {
			return nil, fmt.Errorf("%w: expiresAt must be RFC3339", domain.ErrValidation)
		}
		request.ExpiresAt = expiresAt
	}

	return request, nil
}

func toRequestResponse(r *domain.PartRequest) requestResponse {
	if r == nil {
		return requestResponse{}
	}

	return requestResponse{
		ID:           r.ID,
		BuyerID:      r.BuyerID,
		PartName:     r.PartName,
		PartNumber:   r.PartNumber,
		VehicleMake:  r.VehicleMake,
		VehicleModel: r.VehicleModel,
		VehicleYear:  r.VehicleYear,
		Condition:    r.Condition.String(),
		BudgetCents:  r.BudgetCents,
		Urgency:      r.Urgency.String(),
		Location:     r.Location,
		Description:  r.Description,
		Status:       r.Status.String(),
		ExpiresAt:    r.ExpiresAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
