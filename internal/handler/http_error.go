package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/partline/quote-engine/internal/auth"
	"github.com/partline/quote-engine/internal/domain"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrPreconditionFailed):
		return fiber.NewError(fiber.StatusPreconditionFailed, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
	default:
		return err
	}
}

// requireIdentity returns the authenticated caller, optionally restricted to
// one role.
func requireIdentity(c *fiber.Ctx, role domain.Role) (auth.Identity, error) {
	identity, ok := auth.FromContext(c)
	if !ok {
		return auth.Identity{}, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	if role != "" && identity.Role != role {
		return auth.Identity{}, fiber.NewError(fiber.StatusForbidden, fmt.Sprintf("%s role required", role))
	}
	return identity, nil
}

func parsePagination(c *fiber.Ctx) (int, int, error) {
	page := c.QueryInt("page", defaultPage)
	pageSize := c.QueryInt("pageSize", defaultPageSize)

	if page < 1 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "page must be >= 1")
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("pageSize must be between 1 and %d", maxPageSize))
	}

	return page, pageSize, nil
}
