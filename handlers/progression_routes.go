// handlers/progression_routes.go
package handlers

import (
	"strconv"

	"conservation-tracker/middleware"
	"conservation-tracker/models"
	"conservation-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, rewards *services.RewardService, streaks *services.StreakService) {
	// 🔐 Secured routes — require user context from the gateway
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prog, err := rewards.EnsureProgressRecord(userID)
		if err != nil {
			return respondError(c, err)
		}

		within := services.ProgressWithinLevel(prog.TotalXP, prog.Level)
		return c.JSON(fiber.Map{
			"id":                 prog.ID,
			"xp":                 prog.TotalXP,
			"level":              prog.Level,
			"level_progress":     within,
			"streak_days":        prog.StreakDays,
			"streak_freezes":     prog.StreakFreezes,
			"last_check_in":      prog.LastCheckIn,
			"total_observations": prog.TotalObservations,
			"total_events":       prog.TotalEvents,
			"total_quizzes":      prog.TotalQuizzes,
			"total_lessons":      prog.TotalLessons,
			"last_level_up_at":   prog.LastLevelUpAt,
		})
	})

	securedGroup.Get("/user/progress/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))
		history, err := rewards.GetHistory(userID, page, size)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(history)
	})

	securedGroup.Get("/user/streak", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		status, err := streaks.Status(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(status)
	})

	securedGroup.Post("/user/checkin", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := streaks.CheckIn(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Get("/user/progress/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var awards []models.BadgeAward
		if err := rewards.DB.Where("external_user_id = ?", userID).
			Order("earned_at DESC").Find(&awards).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badges",
				"cause": err.Error(),
			})
		}

		defsByCode := make(map[string]models.BadgeDefinition)
		var defs []models.BadgeDefinition
		if err := rewards.DB.Find(&defs).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badge catalog",
				"cause": err.Error(),
			})
		}
		for _, d := range defs {
			defsByCode[d.Code] = d
		}

		response := make([]fiber.Map, 0, len(awards))
		for _, a := range awards {
			def := defsByCode[a.BadgeCode]
			response = append(response, fiber.Map{
				"code":        a.BadgeCode,
				"name":        def.Name,
				"description": def.Description,
				"icon_url":    def.IconURL,
				"rarity":      def.Rarity,
				"earned_at":   a.EarnedAt,
			})
		}
		return c.JSON(response)
	})

	// Public catalog: hidden badges stay hidden until the caller has earned them.
	securedGroup.Get("/badges/catalog", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		earned := make(map[string]bool)
		var awards []models.BadgeAward
		if err := rewards.DB.Where("external_user_id = ?", userID).Find(&awards).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badge awards",
				"cause": err.Error(),
			})
		}
		for _, a := range awards {
			earned[a.BadgeCode] = true
		}

		var defs []models.BadgeDefinition
		if err := rewards.DB.Order("created_at ASC").Find(&defs).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badge catalog",
				"cause": err.Error(),
			})
		}

		response := make([]fiber.Map, 0, len(defs))
		for _, d := range defs {
			if d.Hidden && !earned[d.Code] {
				continue
			}
			response = append(response, fiber.Map{
				"code":        d.Code,
				"name":        d.Name,
				"description": d.Description,
				"icon_url":    d.IconURL,
				"rarity":      d.Rarity,
				"earned":      earned[d.Code],
			})
		}
		return c.JSON(response)
	})

	// Admin endpoints
	adminGroup := app.Group("/admin", middleware.UserContextMiddleware(), requireRole("admin"))

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
			XP     int64  `json:"xp"`
			Reason string `json:"reason"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		result, err := rewards.GrantXP(req.UserID, req.XP, req.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	adminGroup.Post("/xp/reset", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
			Reason string `json:"reason"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		prog, err := rewards.ResetProgress(req.UserID, req.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(prog)
	})
}

// requireRole guards a route group behind a gateway-provided role.
func requireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, r := range middleware.UserRoles(c) {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "requires role: " + role,
		})
	}
}
