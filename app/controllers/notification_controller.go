package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DevEdward666/study-hub-app/app/repository"
	"github.com/DevEdward666/study-hub-app/internal/pkg/usercontext"
)

// HandleListNotifications returns the caller's notifications
func HandleListNotifications(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := getPagination(c)

	repo := repository.GetGlobalFactory().GetNotificationRepository()
	notifications, err := repo.GetByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	unread, err := repo.CountUnread(userCtx.UserID)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread":        unread,
		"offset":        offset,
		"limit":         limit,
	})
}

// HandleMarkNotificationRead marks one of the caller's notifications read
func HandleMarkNotificationRead(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Notification id must be numeric")
	}

	repo := repository.GetGlobalFactory().GetNotificationRepository()
	if err := repo.MarkRead(id, userCtx.UserID); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"read": true})
}

// HandleMarkAllNotificationsRead marks every unread notification read
func HandleMarkAllNotificationsRead(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetNotificationRepository()
	if err := repo.MarkAllRead(userCtx.UserID); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"read": true})
}
