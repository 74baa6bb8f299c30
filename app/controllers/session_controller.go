package controllers

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DevEdward666/study-hub-app/app/models"
	"github.com/DevEdward666/study-hub-app/app/repository"
	"github.com/DevEdward666/study-hub-app/internal/pkg/billing"
	"github.com/DevEdward666/study-hub-app/internal/pkg/database"
	"github.com/DevEdward666/study-hub-app/internal/pkg/usercontext"
)

var (
	engine     *billing.Service
	engineOnce sync.Once
)

// SetEngine installs the billing engine used by the session handlers.
// Main calls this once during startup; tests may install a fake.
func SetEngine(s *billing.Service) {
	engine = s
}

func getEngine() *billing.Service {
	engineOnce.Do(func() {
		if engine == nil {
			engine = billing.NewServiceFromDB(database.GetDB())
		}
	})
	return engine
}

type startCreditSessionRequest struct {
	TableID uint   `json:"table_id"`
	QRCode  string `json:"qr_code"`
}

type startSubscriptionSessionRequest struct {
	TableID        uint `json:"table_id"`
	SubscriptionID uint `json:"subscription_id"`
}

// sessionsEnabled reports whether the admin maintenance toggle allows new
// sessions. Open sessions are unaffected and can always be closed.
func sessionsEnabled() bool {
	settings := models.GetAppSettings()
	return settings == nil || settings.AreSessionsEnabled()
}

// HandleStartCreditSession opens a pay-per-use session on a table
func HandleStartCreditSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if !sessionsEnabled() {
		return jsonError(c, fiber.StatusServiceUnavailable, "sessions_disabled", "Session starts are temporarily disabled")
	}

	var req startCreditSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}

	session, err := getEngine().StartCreditSession(c.Context(), userCtx.UserID, req.TableID, req.QRCode)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": session.ID,
		"table_id":   session.TableID,
		"kind":       billing.KindCredit,
		"start_time": session.StartTime.UTC().Format(time.RFC3339),
	})
}

// HandleEndCreditSession closes a pay-per-use session and settles the charge.
// Ending a session that is already closed returns 200 with already_closed set.
func HandleEndCreditSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Session id must be numeric")
	}

	result, err := getEngine().EndCreditSession(c.Context(), sessionID, userCtx.UserID)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(result)
}

// HandleStartSubscriptionSession opens a pre-paid-hours session on a table
func HandleStartSubscriptionSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if !sessionsEnabled() {
		return jsonError(c, fiber.StatusServiceUnavailable, "sessions_disabled", "Session starts are temporarily disabled")
	}

	var req startSubscriptionSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}

	session, err := getEngine().StartSubscriptionSession(c.Context(), userCtx.UserID, req.TableID, req.SubscriptionID)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id":      session.ID,
		"table_id":        session.TableID,
		"subscription_id": session.SubscriptionID,
		"kind":            billing.KindSubscription,
		"start_time":      session.StartTime.UTC().Format(time.RFC3339),
	})
}

// HandleEndSubscriptionSession closes a pre-paid session, consuming fractional
// hours. Pause and end are the same operation.
func HandleEndSubscriptionSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Session id must be numeric")
	}

	result, err := getEngine().EndSubscriptionSession(c.Context(), sessionID, userCtx.UserID)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(result)
}

// HandleActiveSession returns the caller's open session of either kind, if any
func HandleActiveSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repo := repository.GetGlobalFactory().GetSessionRepository()

	credit, err := repo.ActiveCreditSession(userCtx.UserID)
	if err != nil {
		return billingErrorResponse(c, err)
	}
	if credit != nil {
		return c.JSON(fiber.Map{"kind": billing.KindCredit, "session": credit})
	}

	sub, err := repo.ActiveSubscriptionSession(userCtx.UserID)
	if err != nil {
		return billingErrorResponse(c, err)
	}
	if sub != nil {
		return c.JSON(fiber.Map{"kind": billing.KindSubscription, "session": sub})
	}

	return c.JSON(fiber.Map{"kind": nil, "session": nil})
}

// HandleSessionHistory returns the caller's past sessions of both kinds
func HandleSessionHistory(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := getPagination(c)
	repo := repository.GetGlobalFactory().GetSessionRepository()

	credit, err := repo.CreditHistory(userCtx.UserID, offset, limit)
	if err != nil {
		return billingErrorResponse(c, err)
	}
	subscription, err := repo.SubscriptionHistory(userCtx.UserID, offset, limit)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"credit_sessions":       credit,
		"subscription_sessions": subscription,
		"offset":                offset,
		"limit":                 limit,
	})
}
