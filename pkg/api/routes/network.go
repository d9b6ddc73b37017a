package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nysselive/nysselive/pkg/nysse"
)

// NetworkData serves the slow moving network description.
type NetworkData interface {
	AllRoutes(ctx context.Context) ([]nysse.Route, error)
	Alerts(ctx context.Context) ([]nysse.Alert, error)
}

func RoutesRouter(router fiber.Router, data NetworkData) {
	router.Get("/", func(c *fiber.Ctx) error {
		networkRoutes, err := data.AllRoutes(c.Context())
		if err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(networkRoutes)
	})
}

func AlertsRouter(router fiber.Router, data NetworkData) {
	router.Get("/", func(c *fiber.Ctx) error {
		alerts, err := data.Alerts(c.Context())
		if err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(alerts)
	})
}
