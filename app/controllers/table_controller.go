package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DevEdward666/study-hub-app/app/models"
	"github.com/DevEdward666/study-hub-app/app/repository"
	"github.com/DevEdward666/study-hub-app/internal/pkg/database"
	"github.com/DevEdward666/study-hub-app/internal/pkg/registry"
	"github.com/DevEdward666/study-hub-app/internal/pkg/usercontext"
)

type createTableRequest struct {
	HourlyRate float64 `json:"hourly_rate"`
	Capacity   int     `json:"capacity"`
	Location   string  `json:"location"`
}

type updateTableRequest struct {
	HourlyRate *float64 `json:"hourly_rate"`
	Capacity   *int     `json:"capacity"`
	Location   *string  `json:"location"`
	IsDisabled *bool    `json:"is_disabled"`
}

// HandleListTables returns all tables, or only free ones with ?available=true
func HandleListTables(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetTableRepository()

	var (
		tables []models.Table
		err    error
	)
	if c.QueryBool("available", false) {
		tables, err = repo.GetAvailable()
	} else {
		tables, err = repo.GetAll()
	}
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"tables": tables})
}

// HandleGetTable returns one table. Admins also see the current occupant,
// resolved through the session tables.
func HandleGetTable(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Table id must be numeric")
	}

	repo := repository.GetGlobalFactory().GetTableRepository()
	table, err := repo.GetByID(id)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	response := fiber.Map{"table": table}

	if usercontext.IsAdmin(c) && table.IsOccupied {
		occupant, err := registry.New(database.GetDB()).ActiveOccupant(table.ID)
		if err != nil {
			return billingErrorResponse(c, err)
		}
		response["occupant"] = occupant
	}

	return c.JSON(response)
}

// HandleTableAvailability reports whether a table can accept a new session
func HandleTableAvailability(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Table id must be numeric")
	}

	available, err := registry.New(database.GetDB()).IsAvailable(id)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"table_id": id, "available": available})
}

// HandleTableOccupant resolves the open session holding a table (admin).
// A free table answers with a null occupant.
func HandleTableOccupant(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Table id must be numeric")
	}

	if _, err := repository.GetGlobalFactory().GetTableRepository().GetByID(id); err != nil {
		return billingErrorResponse(c, err)
	}

	occupant, err := registry.New(database.GetDB()).ActiveOccupant(id)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"table_id": id, "occupant": occupant})
}

// HandleCreateTable creates a table with a fresh QR token (admin)
func HandleCreateTable(c *fiber.Ctx) error {
	var req createTableRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}

	table, err := models.NewTable(req.HourlyRate, req.Capacity, req.Location)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	repo := repository.GetGlobalFactory().GetTableRepository()
	if err := repo.Create(table); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"table": table})
}

// HandleUpdateTable updates table attributes (admin). Disabling an occupied
// table never evicts the open session; it only blocks new starts.
func HandleUpdateTable(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Table id must be numeric")
	}

	var req updateTableRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}

	repo := repository.GetGlobalFactory().GetTableRepository()
	table, err := repo.GetByID(id)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	if req.HourlyRate != nil {
		table.HourlyRate = *req.HourlyRate
	}
	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	if req.Location != nil {
		table.Location = *req.Location
	}
	if req.IsDisabled != nil {
		table.IsDisabled = *req.IsDisabled
	}

	if err := table.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := repo.Update(table); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"table": table})
}

// HandleDeleteTable removes a table (admin). Occupied tables cannot be removed.
func HandleDeleteTable(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Table id must be numeric")
	}

	repo := repository.GetGlobalFactory().GetTableRepository()
	table, err := repo.GetByID(id)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	if table.IsOccupied {
		return jsonError(c, fiber.StatusConflict, "table_occupied", "Cannot delete an occupied table")
	}

	if err := repo.Delete(id); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"deleted": true})
}
