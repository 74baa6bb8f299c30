package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/DevEdward666/study-hub-app/app/controllers"
	"github.com/DevEdward666/study-hub-app/app/models"
	"github.com/DevEdward666/study-hub-app/app/repository"
	"github.com/DevEdward666/study-hub-app/internal/pkg/billing"
	"github.com/DevEdward666/study-hub-app/internal/pkg/cache"
	"github.com/DevEdward666/study-hub-app/internal/pkg/database"
	"github.com/DevEdward666/study-hub-app/internal/pkg/env"
	"github.com/DevEdward666/study-hub-app/internal/pkg/jobqueue"
	"github.com/DevEdward666/study-hub-app/internal/pkg/router"
)

func main() {
	app := NewApplication()

	// Graceful shutdown: stop the job queue before the listener exits
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		jobqueue.GetManager(nil).Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())

	if err := models.LoadSettings(database.GetDB()); err != nil {
		log.Printf("failed to load settings, using defaults: %v", err)
	}

	engine := billing.NewServiceFromDB(database.GetDB())
	controllers.SetEngine(engine)

	app := fiber.New(fiber.Config{
		AppName: "StudyHub",
	})
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	// Background jobs: stale-session reconciliation and low-hours warnings
	jobqueue.GetManager(engine).Start()

	return app
}
