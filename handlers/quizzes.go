package handlers

import (
	"conservation-tracker/middleware"
	"conservation-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuizRoutes(app *fiber.App, quizzes *services.QuizService) {
	group := app.Group("/quizzes", middleware.UserContextMiddleware())

	group.Get("/", func(c *fiber.Ctx) error {
		list, err := quizzes.ListQuizzes()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	group.Get("/streak", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		state, err := quizzes.GetState(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(state)
	})

	group.Post("/:id/submit", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			CorrectAnswers int `json:"correct_answers"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		result, err := quizzes.SubmitQuiz(userID, c.Params("id"), req.CorrectAnswers)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})
}
