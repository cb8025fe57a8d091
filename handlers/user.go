// handlers/user.go
package handlers

import (
	"bug-bounty-system/middleware"
	"bug-bounty-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, reputation *services.ReputationService) {
	// 🔓 Leaderboard is public (still behind the gateway token)
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		entries, err := reputation.Leaderboard(c.Context())
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(fiber.Map{"leaderboard": entries})
	})

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/users/:id/reputation", func(c *fiber.Ctx) error {
		rep, err := reputation.GetUserReputation(c.Params("id"))
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(rep)
	})
}
