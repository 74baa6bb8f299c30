package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DevEdward666/study-hub-app/app/repository"
	"github.com/DevEdward666/study-hub-app/internal/pkg/usercontext"
)

type topupRequest struct {
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes"`
}

// HandleGetWallet returns the caller's credit balance and lifetime spend
func HandleGetWallet(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetWalletRepository()
	credits, err := repo.GetByUserID(userCtx.UserID)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"balance":     credits.Balance,
		"total_spent": credits.TotalSpent,
	})
}

// HandleTopup adds credits to the caller's balance
func HandleTopup(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req topupRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}
	if req.Amount <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_amount", "Topup amount must be positive")
	}

	repo := repository.GetGlobalFactory().GetWalletRepository()
	credits, err := repo.Topup(userCtx.UserID, req.Amount, req.Notes)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"balance":     credits.Balance,
		"total_spent": credits.TotalSpent,
	})
}

// HandleWalletTransactions returns the caller's ledger history
func HandleWalletTransactions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := getPagination(c)

	repo := repository.GetGlobalFactory().GetWalletRepository()
	transactions, err := repo.Transactions(userCtx.UserID, offset, limit)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	total, err := repo.CountTransactions(userCtx.UserID)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"transactions": transactions,
		"total":        total,
		"offset":       offset,
		"limit":        limit,
	})
}
