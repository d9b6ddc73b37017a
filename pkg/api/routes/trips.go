package routes

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nysselive/nysselive/pkg/nysse"
	"github.com/nysselive/nysselive/pkg/trips"
)

type TripResolver interface {
	Resolve(ctx context.Context, lookup trips.Lookup) (*nysse.TripDetails, error)
}

func TripLookupRouter(router fiber.Router, resolver TripResolver) {
	router.Post("/", func(c *fiber.Ctx) error {
		var lookup trips.Lookup
		if err := c.BodyParser(&lookup); err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Body must be a trip lookup",
			})
		}
		if err := lookup.Validate(); err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		details, err := resolver.Resolve(c.Context(), lookup)
		if errors.Is(err, trips.ErrNotFound) {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "No trip matched the lookup",
			})
		}
		if err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(details)
	})
}
