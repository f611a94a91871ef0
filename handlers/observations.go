package handlers

import (
	"fmt"
	"path/filepath"
	"strconv"

	"conservation-tracker/middleware"
	"conservation-tracker/services"
	"conservation-tracker/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupObservationRoutes(app *fiber.App, observations *services.ObservationService) {
	group := app.Group("/observations", middleware.UserContextMiddleware())

	group.Get("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		list, err := observations.ListByUser(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	group.Get("/:slug", func(c *fiber.Ctx) error {
		obs, err := observations.GetBySlug(c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(obs)
	})

	// Multipart submission: fields + optional photo.
	group.Post("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		in := services.SubmitInput{
			Title:       c.FormValue("title"),
			SpeciesName: c.FormValue("species_name"),
			Description: c.FormValue("description"),
		}
		if latStr := c.FormValue("latitude"); latStr != "" {
			lat, err := strconv.ParseFloat(latStr, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid latitude"})
			}
			in.Latitude = &lat
		}
		if lngStr := c.FormValue("longitude"); lngStr != "" {
			lng, err := strconv.ParseFloat(lngStr, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid longitude"})
			}
			in.Longitude = &lng
		}

		if photo, err := c.FormFile("photo"); err == nil && photo != nil {
			key := fmt.Sprintf("observations/%s%s", uuid.NewString(), filepath.Ext(photo.Filename))
			if utils.StorageEnabled() {
				url, err := utils.UploadPhoto(photo, key)
				if err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
						"error": "failed to upload photo",
						"cause": err.Error(),
					})
				}
				in.PhotoURL = url
			} else {
				dest := utils.GetUploadPath(filepath.Base(key))
				if err := utils.SaveFile(photo, dest); err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
						"error": "failed to save photo",
						"cause": err.Error(),
					})
				}
				in.PhotoURL = "/uploads/" + filepath.Base(key)
			}
		}

		obs, result, err := observations.Submit(userID, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"observation": obs,
			"reward":      result,
		})
	})

	// Reviewer/admin moderation verdicts.
	group.Post("/:id/review", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			Verdict string `json:"verdict"` // approve | reject | dispute
			Note    string `json:"note"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		obs, err := observations.Review(c.Params("id"), userID, middleware.UserRoles(c), req.Verdict, req.Note)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(obs)
	})
}
