package handlers

import (
	"time"

	"conservation-tracker/middleware"
	"conservation-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, events *services.EventService) {
	group := app.Group("/events", middleware.UserContextMiddleware())

	group.Get("/", func(c *fiber.Ctx) error {
		list, err := events.ListEvents(c.Query("status"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	group.Get("/:id", func(c *fiber.Ctx) error {
		event, err := events.GetEvent(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	})

	group.Post("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			Title       string  `json:"title"`
			Description string  `json:"description"`
			Location    string  `json:"location"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			StartTime   string  `json:"start_time"`
			EndTime     string  `json:"end_time"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		start, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start_time (use RFC3339)"})
		}
		var end time.Time
		if req.EndTime != "" {
			end, err = time.Parse(time.RFC3339, req.EndTime)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end_time (use RFC3339)"})
			}
		}

		event, err := events.CreateEvent(userID, services.CreateEventInput{
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
			StartTime:   start,
			EndTime:     end,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(event)
	})

	group.Post("/:id/register", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		p, err := events.Register(c.Params("id"), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	// Organizer/admin: mark a registered participant as attended.
	group.Post("/:id/attend", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id required"})
		}

		if err := events.MarkAttended(c.Params("id"), req.UserID, userID, middleware.UserRoles(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "participant marked attended"})
	})

	// Organizer/admin: one-way completion, pays out attended participants.
	group.Post("/:id/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		summary, err := events.CompleteEvent(c.Params("id"), userID, middleware.UserRoles(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	})
}
