// handlers/bug.go
package handlers

import (
	"strconv"

	"bug-bounty-system/middleware"
	"bug-bounty-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBugRoutes(app *fiber.App, bugs *services.BugService, lifecycle *services.LifecycleService, assignments *services.AssignmentService, duplicates *services.DuplicateService) {
	// 🔐 All bug routes require user context from the gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/bugs", func(c *fiber.Ctx) error {
		var in services.CreateBugInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "code": "INVALID_INPUT"})
		}
		bug, err := bugs.CreateBug(middleware.ActorFromCtx(c), &in)
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(bug)
	})

	secured.Get("/bugs", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		filter := services.BugFilter{
			Status:     c.Query("status"),
			Tag:        c.Query("tag"),
			AuthorID:   c.Query("author_id"),
			AssigneeID: c.Query("assigned_to_id"),
			Search:     c.Query("search"),
			Page:       page,
			Limit:      limit,
		}
		items, total, err := bugs.ListBugs(&filter)
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(fiber.Map{
			"bugs":  items,
			"total": total,
			"page":  filter.Page,
			"limit": filter.Limit,
		})
	})

	// Duplicate check comes before /bugs/:id so the router doesn't treat
	// "check-duplicates" as a bug ID.
	secured.Post("/bugs/check-duplicates", func(c *fiber.Ctx) error {
		var q services.DuplicateQuery
		if err := c.BodyParser(&q); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "code": "INVALID_INPUT"})
		}
		matches, err := duplicates.CheckDuplicates(&q)
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(fiber.Map{"matches": matches})
	})

	secured.Get("/bugs/:id", func(c *fiber.Ctx) error {
		bug, err := bugs.GetBug(c.Params("id"))
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(bug)
	})

	secured.Get("/bugs/:id/transitions", func(c *fiber.Ctx) error {
		transitions, err := bugs.GetTransitions(c.Params("id"))
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(fiber.Map{"transitions": transitions})
	})

	secured.Patch("/bugs/:id/status", func(c *fiber.Ctx) error {
		var req struct {
			Status string `json:"status"`
			Notes  string `json:"notes"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "code": "INVALID_INPUT"})
		}
		bug, err := lifecycle.ChangeStatus(middleware.ActorFromCtx(c), c.Params("id"), req.Status, req.Notes)
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(bug)
	})

	secured.Patch("/bugs/:id/assignment", func(c *fiber.Ctx) error {
		var req struct {
			AssignedToID *string `json:"assigned_to_id"`
			Notes        string  `json:"notes"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "code": "INVALID_INPUT"})
		}
		bug, err := assignments.SetAssignment(middleware.ActorFromCtx(c), c.Params("id"), req.AssignedToID, req.Notes)
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.JSON(bug)
	})

	secured.Post("/bugs/:id/attachments", func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required", "code": "INVALID_INPUT"})
		}
		attachment, err := bugs.AddAttachment(middleware.ActorFromCtx(c), c.Params("id"), file)
		if err != nil {
			return services.RenderError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(attachment)
	})
}
