package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nysselive/nysselive/pkg/tracker"
)

func MapRouter(router fiber.Router, controller *tracker.Controller, scene *tracker.SceneRenderer) {
	router.Get("/scene", func(c *fiber.Ctx) error {
		return c.JSON(scene.Scene())
	})

	router.Post("/select/:vehicleRef", func(c *fiber.Ctx) error {
		err := controller.Select(c.Params("vehicleRef"))
		if errors.Is(err, tracker.ErrUnknownVehicle) {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Unknown vehicle reference",
			})
		}
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"selected": controller.Selected(),
		})
	})

	router.Delete("/select", func(c *fiber.Ctx) error {
		controller.Deselect()

		return c.SendStatus(fiber.StatusNoContent)
	})

	router.Put("/routes", func(c *fiber.Ctx) error {
		var request struct {
			Headsigns []string `json:"headsigns"`
		}
		if err := c.BodyParser(&request); err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Body must contain a headsigns array",
			})
		}
		if request.Headsigns == nil {
			request.Headsigns = []string{}
		}

		controller.SetVisibleRoutes(request.Headsigns)

		return c.JSON(fiber.Map{
			"routes": request.Headsigns,
		})
	})

	router.Delete("/routes", func(c *fiber.Ctx) error {
		controller.SetVisibleRoutes(nil)

		return c.SendStatus(fiber.StatusNoContent)
	})
}
