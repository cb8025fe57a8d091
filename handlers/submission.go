// handlers/submission.go
package handlers

import (
	"bug-bounty-system/middleware"
	"bug-bounty-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSubmissionRoutes(app *fiber.App, submissions *services.SubmissionService, arbitration *services.ArbitrationService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/bugs/:id/submissions", func(c *fiber.Ctx) error {
		var in services.CreateSubmissionInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "code": "INVALID_INPUT"})
		}
		sub, err := submissions.CreateSubmission(middleware.ActorFromCtx(c), c.Params("id"), &in)
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	secured.Get("/bugs/:id/submissions", func(c *fiber.Ctx) error {
		subs, err := submissions.ListSubmissions(middleware.ActorFromCtx(c), c.Params("id"))
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(fiber.Map{"submissions": subs})
	})

	secured.Post("/bugs/:id/submissions/:submission_id/approve", func(c *fiber.Ctx) error {
		sub, err := arbitration.Approve(middleware.ActorFromCtx(c), c.Params("id"), c.Params("submission_id"))
		middleware.RecordArbitration("approve", err == nil)
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(sub)
	})

	secured.Post("/bugs/:id/submissions/:submission_id/reject", func(c *fiber.Ctx) error {
		sub, err := arbitration.Reject(middleware.ActorFromCtx(c), c.Params("id"), c.Params("submission_id"))
		middleware.RecordArbitration("reject", err == nil)
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(sub)
	})
}
