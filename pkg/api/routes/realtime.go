package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nysselive/nysselive/pkg/nysse"
)

// SnapshotSource is the live vehicle feed as the poller last saw it.
type SnapshotSource interface {
	Snapshots() []nysse.VehicleSnapshot
}

func RealtimeRouter(router fiber.Router, source SnapshotSource) {
	router.Get("/", func(c *fiber.Ctx) error {
		snapshots := source.Snapshots()
		if snapshots == nil {
			snapshots = []nysse.VehicleSnapshot{}
		}

		return c.JSON(snapshots)
	})
}
