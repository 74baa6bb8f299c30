package router

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestApiRouterMountsSessionAndTableRoutes(t *testing.T) {
	app := fiber.New()
	ApiRouter{}.InstallRouter(app)

	routes := make(map[string]bool)
	for _, r := range app.GetRoutes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/sessions/credit/start",
		"POST /api/v1/sessions/credit/:id/end",
		"POST /api/v1/sessions/subscription/start",
		"POST /api/v1/sessions/subscription/:id/end",
		"POST /api/v1/sessions/subscription/:id/pause",
		"GET /api/v1/tables/:id/availability",
		"GET /api/v1/tables/:id/occupant",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
