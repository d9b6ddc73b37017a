package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// GraphQLProxy forwards frontend queries to the upstream GraphQL service so
// the subscription key stays server side.
type GraphQLProxy interface {
	Passthrough(ctx context.Context, body []byte) ([]byte, error)
}

func DigitransitRouter(router fiber.Router, proxy GraphQLProxy) {
	router.Post("/", func(c *fiber.Ctx) error {
		raw, err := proxy.Passthrough(c.Context(), c.Body())
		if err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(raw)
	})
}
