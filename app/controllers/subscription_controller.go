package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DevEdward666/study-hub-app/app/models"
	"github.com/DevEdward666/study-hub-app/app/repository"
	"github.com/DevEdward666/study-hub-app/internal/pkg/usercontext"
)

type createPackageRequest struct {
	Name          string  `json:"name"`
	PackageType   string  `json:"package_type"`
	DurationValue int     `json:"duration_value"`
	Price         float64 `json:"price"`
}

type purchaseRequest struct {
	PackageID uint `json:"package_id"`
}

// HandleListPackages returns packages offered for purchase. Admins see
// deactivated ones too with ?all=true.
func HandleListPackages(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetPackageRepository()

	var (
		packages []models.SubscriptionPackage
		err      error
	)
	if c.QueryBool("all", false) && usercontext.IsAdmin(c) {
		packages, err = repo.GetAll()
	} else {
		packages, err = repo.GetActive()
	}
	if err != nil {
		return billingErrorResponse(c, err)
	}

	type packageView struct {
		models.SubscriptionPackage
		TotalHours float64 `json:"total_hours"`
	}
	views := make([]packageView, 0, len(packages))
	for _, pkg := range packages {
		views = append(views, packageView{SubscriptionPackage: pkg, TotalHours: pkg.TotalHours()})
	}

	return c.JSON(fiber.Map{"packages": views})
}

// HandleCreatePackage creates a subscription package (admin)
func HandleCreatePackage(c *fiber.Ctx) error {
	var req createPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}

	pkg := &models.SubscriptionPackage{
		Name:          req.Name,
		PackageType:   req.PackageType,
		DurationValue: req.DurationValue,
		Price:         req.Price,
		IsActive:      true,
	}
	if err := pkg.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	repo := repository.GetGlobalFactory().GetPackageRepository()
	if err := repo.Create(pkg); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"package": pkg, "total_hours": pkg.TotalHours()})
}

// HandleUpdatePackage updates a package (admin). Existing subscriptions keep
// their purchase-time snapshots.
func HandleUpdatePackage(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Package id must be numeric")
	}

	repo := repository.GetGlobalFactory().GetPackageRepository()
	pkg, err := repo.GetByID(id)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	var req struct {
		Name          *string  `json:"name"`
		PackageType   *string  `json:"package_type"`
		DurationValue *int     `json:"duration_value"`
		Price         *float64 `json:"price"`
		IsActive      *bool    `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}

	if req.Name != nil {
		pkg.Name = *req.Name
	}
	if req.PackageType != nil {
		pkg.PackageType = *req.PackageType
	}
	if req.DurationValue != nil {
		pkg.DurationValue = *req.DurationValue
	}
	if req.Price != nil {
		pkg.Price = *req.Price
	}
	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}

	if err := pkg.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := repo.Update(pkg); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"package": pkg, "total_hours": pkg.TotalHours()})
}

// HandlePurchaseSubscription buys a package for the caller. Hours and price
// are snapshotted; activation waits for the first session.
func HandlePurchaseSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Could not parse request body")
	}

	factory := repository.GetGlobalFactory()
	pkg, err := factory.GetPackageRepository().GetByID(req.PackageID)
	if err != nil {
		return billingErrorResponse(c, err)
	}
	if !pkg.IsActive {
		return jsonError(c, fiber.StatusConflict, "package_inactive", "This package is not available for purchase")
	}

	sub, err := factory.GetSubscriptionRepository().Purchase(userCtx.UserID, pkg)
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subscription": sub})
}

// HandleListSubscriptions returns the caller's subscriptions
func HandleListSubscriptions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetSubscriptionRepository()

	var (
		subs []models.UserSubscription
		err  error
	)
	if c.QueryBool("usable", false) {
		subs, err = repo.GetUsableByUserID(userCtx.UserID)
	} else {
		subs, err = repo.GetByUserID(userCtx.UserID)
	}
	if err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"subscriptions": subs})
}

// HandleCancelSubscription cancels one of the caller's active subscriptions
func HandleCancelSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "Subscription id must be numeric")
	}

	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	if err := repo.Cancel(id, userCtx.UserID); err != nil {
		return billingErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"cancelled": true})
}
