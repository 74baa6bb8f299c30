package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/DevEdward666/study-hub-app/internal/pkg/billing"
)

// jsonError writes a uniform error body
func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// billingErrorResponse maps billing sentinel errors onto HTTP responses.
// Unmatched errors become a 500.
func billingErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, billing.ErrInvalidCredential):
		return jsonError(c, fiber.StatusBadRequest, "invalid_qr", "QR code does not match this table")
	case errors.Is(err, billing.ErrResourceDisabled):
		return jsonError(c, fiber.StatusConflict, "table_disabled", "Table is disabled")
	case errors.Is(err, billing.ErrResourceBusy):
		return jsonError(c, fiber.StatusConflict, "table_occupied", "Table is already occupied")
	case errors.Is(err, billing.ErrUserAlreadyInSession):
		return jsonError(c, fiber.StatusConflict, "already_in_session", "User already has an open session")
	case errors.Is(err, billing.ErrInsufficientFunds):
		return jsonError(c, fiber.StatusPaymentRequired, "insufficient_credits", "Credit balance is below one hour at this table's rate")
	case errors.Is(err, billing.ErrSubscriptionNotActive):
		return jsonError(c, fiber.StatusConflict, "subscription_not_active", "Subscription is not active")
	case errors.Is(err, billing.ErrSubscriptionExhausted):
		return jsonError(c, fiber.StatusPaymentRequired, "subscription_exhausted", "Subscription has no remaining hours")
	case errors.Is(err, billing.ErrUnauthorized):
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Not allowed for this user")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Something went wrong")
	}
}

// parseUintParam parses a numeric route parameter
func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

// getPagination reads offset/limit query parameters with sane bounds
func getPagination(c *fiber.Ctx) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit = c.QueryInt("limit", 25)
	if limit < 1 || limit > 100 {
		limit = 25
	}
	return offset, limit
}
