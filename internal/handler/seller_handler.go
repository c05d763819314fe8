package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/partline/quote-engine/internal/domain"
)

type TierService interface {
	SetSellerTier(ctx context.Context, sellerID string, tier domain.Tier) error
	GetSellerTier(ctx context.Context, sellerID string) (domain.Tier, error)
}

type SellerHandler struct {
	tiers TierService
}

func NewSellerHandler(tiers TierService) (*SellerHandler, error) {
	if tiers == nil {
		return nil, fmt.Errorf("tier service is required")
	}
	return &SellerHandler{tiers: tiers}, nil
}

func RegisterSellerRoutes(router fiber.Router, tiers TierService) error {
	h, err := NewSellerHandler(tiers)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Put("/sellers/:id/tier", h.SetTier)
	v1.Get("/sellers/:id/tier", h.GetTier)

	return nil
}

type setTierRequest struct {
	Tier string `json:"tier" validate:"required"`
}

func (h *SellerHandler) SetTier(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, domain.RoleSeller)
	if err != nil {
		return err
	}

	sellerID := strings.TrimSpace(c.Params("id"))
	// Sellers manage their own subscription only.
	if sellerID != identity.UserID {
		return fiber.NewError(fiber.StatusForbidden, "cannot change another seller's tier")
	}

	var req setTierRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	tier, err := domain.ParseTierFromString(req.Tier)
	if err != nil {
		return toHTTPError(err)
	}

	if err := h.tiers.SetSellerTier(c.Context(), sellerID, tier); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sellerId": sellerID,
		"tier":     tier.String(),
	})
}

func (h *SellerHandler) GetTier(c *fiber.Ctx) error {
	identity, err := requireIdentity(c, domain.RoleSeller)
	if err != nil {
		return err
	}

	sellerID := strings.TrimSpace(c.Params("id"))
	if sellerID != identity.UserID {
		return fiber.NewError(fiber.StatusForbidden, "cannot view another seller's tier")
	}

	tier, err := h.tiers.GetSellerTier(c.Context(), sellerID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sellerId": sellerID,
		"tier":     tier.String(),
	})
}
