package handlers

import (
	"conservation-tracker/middleware"
	"conservation-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLessonRoutes(app *fiber.App, lessons *services.LessonService) {
	group := app.Group("/lessons", middleware.UserContextMiddleware())

	group.Get("/", func(c *fiber.Ctx) error {
		list, err := lessons.ListLessons()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	group.Post("/:id/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := lessons.CompleteLesson(userID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})
}
