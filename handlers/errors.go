package handlers

import (
	"errors"

	"conservation-tracker/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the engine error taxonomy to HTTP in one place so every
// route reports conflicts, validation failures etc. identically.
func respondError(c *fiber.Ctx, err error) error {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "validation failed",
			"cause": vErr.Error(),
		})
	}

	var nfErr *services.NotFoundError
	if errors.As(err, &nfErr) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": nfErr.Error(),
		})
	}

	var pErr *services.PermissionError
	if errors.As(err, &pErr) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": pErr.Error(),
		})
	}

	var cErr *services.ConflictError
	if errors.As(err, &cErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  cErr.Error(),
			"benign": cErr.Benign,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}
