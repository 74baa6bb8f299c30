package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/DevEdward666/study-hub-app/app/models"
	"github.com/DevEdward666/study-hub-app/app/repository"
	"github.com/DevEdward666/study-hub-app/internal/pkg/jobqueue"
)

// HandleAdminListUsers returns users with pagination, or a search result set
func HandleAdminListUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetUserRepository()

	if query := c.Query("q"); query != "" {
		users, err := repo.Search(query)
		if err != nil {
			return billingErrorResponse(c, err)
		}
		return c.JSON(fiber.Map{"users": users})
	}

	offset, limit := getPagination(c)
	users, err := repo.List(offset, limit)
	if err != nil {
		return billingErrorResponse(c, err)
	}
	total, err := repo.Count()
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"users":  users,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// HandleAdminSetUserStatus activates or disables an account
func HandleAdminSetUserStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "User id must be numeric")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}
	switch req.Status {
	case models.STATUS_ACTIVE, models.STATUS_INACTIVE, models.STATUS_DISABLED:
	default:
		return jsonError(c, fiber.StatusBadRequest, "invalid_status", "Status must be active, inactive or disabled")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(id)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	user.Status = req.Status
	if err := repo.Update(user); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

// HandleAdminGetSettings returns the application settings
func HandleAdminGetSettings(c *fiber.Ctx) error {
	settings, err := repository.GetGlobalFactory().GetSettingRepository().Get()
	if err != nil {
		return billingErrorResponse(c, err)
	}
	return c.JSON(settings)
}

// HandleAdminSaveSettings persists updated application settings
func HandleAdminSaveSettings(c *fiber.Ctx) error {
	var settings models.AppSettings
	if err := c.BodyParser(&settings); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}
	if err := settings.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := repository.GetGlobalFactory().GetSettingRepository().Save(&settings); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"saved": true})
}

// HandleAdminQueueStats reports background job queue counters
func HandleAdminQueueStats(c *fiber.Ctx) error {
	manager := jobqueue.GetManager(nil)
	queue := manager.GetQueue()
	ctx := context.Background()

	stats, err := queue.GetJobStats(ctx)
	if err != nil {
		return billingErrorResponse(c, err)
	}
	pending, err := queue.GetQueueSize(ctx)
	if err != nil {
		return billingErrorResponse(c, err)
	}
	processing, err := queue.GetProcessingSize(ctx)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"running":    manager.IsRunning(),
		"stats":      stats,
		"pending":    pending,
		"processing": processing,
	})
}

// HandleAdminReconcileNow enqueues an immediate stale-session sweep
func HandleAdminReconcileNow(c *fiber.Ctx) error {
	if err := jobqueue.GetManager(nil).RunReconcileOnce(); err != nil {
		return billingErrorResponse(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"enqueued": true})
}
