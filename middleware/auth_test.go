package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bug-bounty-system/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildApp mirrors the route layout used in main: groups mount the user
// context middleware on "/", and the infrastructure endpoints are plain
// app routes registered afterwards.
func buildApp() *fiber.App {
	app := fiber.New()

	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/bugs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"bugs": []string{}})
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"leaderboard": []string{}})
	})
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendString("# HELP\n")
	})

	return app
}

func TestPublicRoutesSkipUserContext(t *testing.T) {
	app := buildApp()

	for _, path := range []string{"/healthz", "/leaderboard", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "%s must not require X-User-ID", path)
	}
}

func TestSecuredRoutesRequireUserHeader(t *testing.T) {
	app := buildApp()

	req := httptest.NewRequest(http.MethodGet, "/bugs", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/bugs", nil)
	req.Header.Set("X-User-ID", "user-123")
	req.Header.Set("X-User-Reputation", "42")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
