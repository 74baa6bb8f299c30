package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/DevEdward666/study-hub-app/app/controllers"
	"github.com/DevEdward666/study-hub-app/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "StudyHub API",
		})
	})

	v1 := api.Group("/v1")

	// Auth
	v1.Post("/register", controllers.HandleRegister)
	v1.Post("/login", controllers.HandleLogin)
	v1.Post("/logout", middleware.RequireAuth, controllers.HandleLogout)
	v1.Get("/me", middleware.RequireAuth, controllers.HandleMe)

	// Tables
	v1.Get("/tables", middleware.RequireAuth, controllers.HandleListTables)
	v1.Get("/tables/:id", middleware.RequireAuth, controllers.HandleGetTable)
	v1.Get("/tables/:id/availability", middleware.RequireAuth, controllers.HandleTableAvailability)
	v1.Get("/tables/:id/occupant", middleware.RequireAdmin, controllers.HandleTableOccupant)
	v1.Post("/tables", middleware.RequireAdmin, controllers.HandleCreateTable)
	v1.Put("/tables/:id", middleware.RequireAdmin, controllers.HandleUpdateTable)
	v1.Delete("/tables/:id", middleware.RequireAdmin, controllers.HandleDeleteTable)

	// Sessions
	v1.Post("/sessions/credit/start", middleware.RequireAuth, controllers.HandleStartCreditSession)
	v1.Post("/sessions/credit/:id/end", middleware.RequireAuth, controllers.HandleEndCreditSession)
	v1.Post("/sessions/subscription/start", middleware.RequireAuth, controllers.HandleStartSubscriptionSession)
	v1.Post("/sessions/subscription/:id/end", middleware.RequireAuth, controllers.HandleEndSubscriptionSession)
	// Pause is close; a later resume opens a fresh session.
	v1.Post("/sessions/subscription/:id/pause", middleware.RequireAuth, controllers.HandleEndSubscriptionSession)
	v1.Get("/sessions/active", middleware.RequireAuth, controllers.HandleActiveSession)
	v1.Get("/sessions/history", middleware.RequireAuth, controllers.HandleSessionHistory)

	// Wallet
	v1.Get("/wallet", middleware.RequireAuth, controllers.HandleGetWallet)
	v1.Post("/wallet/topup", middleware.RequireAuth, controllers.HandleTopup)
	v1.Get("/wallet/transactions", middleware.RequireAuth, controllers.HandleWalletTransactions)

	// Packages and subscriptions
	v1.Get("/packages", middleware.RequireAuth, controllers.HandleListPackages)
	v1.Post("/packages", middleware.RequireAdmin, controllers.HandleCreatePackage)
	v1.Put("/packages/:id", middleware.RequireAdmin, controllers.HandleUpdatePackage)
	v1.Post("/subscriptions", middleware.RequireAuth, controllers.HandlePurchaseSubscription)
	v1.Get("/subscriptions", middleware.RequireAuth, controllers.HandleListSubscriptions)
	v1.Post("/subscriptions/:id/cancel", middleware.RequireAuth, controllers.HandleCancelSubscription)

	// Notifications
	v1.Get("/notifications", middleware.RequireAuth, controllers.HandleListNotifications)
	v1.Post("/notifications/:id/read", middleware.RequireAuth, controllers.HandleMarkNotificationRead)
	v1.Post("/notifications/read-all", middleware.RequireAuth, controllers.HandleMarkAllNotificationsRead)

	// Admin
	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.Get("/dashboard", controllers.HandleDashboard)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Put("/users/:id/status", controllers.HandleAdminSetUserStatus)
	admin.Get("/settings", controllers.HandleAdminGetSettings)
	admin.Put("/settings", controllers.HandleAdminSaveSettings)
	admin.Get("/queue", controllers.HandleAdminQueueStats)
	admin.Post("/reconcile", controllers.HandleAdminReconcileNow)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
