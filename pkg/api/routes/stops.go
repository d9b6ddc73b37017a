package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nysselive/nysselive/pkg/digitransit"
	"github.com/nysselive/nysselive/pkg/nysse"
)

// StopData serves the stop list and departure boards.
type StopData interface {
	AllStops(ctx context.Context) ([]nysse.Stop, error)
	StopDepartures(ctx context.Context, stopID string) (*digitransit.StopTimetable, error)
	StopsDepartures(ctx context.Context, stopIDs []string) (map[string]*digitransit.StopTimetable, error)
}

// DepartureBoard is the formatted departure listing for one stop.
type DepartureBoard struct {
	GtfsID      string            `json:"gtfsId"`
	Name        string            `json:"name"`
	VehicleMode string            `json:"vehicleMode"`
	Departures  []nysse.Departure `json:"departures"`
}

func StopsRouter(router fiber.Router, data StopData, timezone *time.Location) {
	router.Get("/", func(c *fiber.Ctx) error {
		stops, err := data.AllStops(c.Context())
		if err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(stops)
	})

	router.Get("/:identifier/departures", func(c *fiber.Ctx) error {
		timetable, err := data.StopDepartures(c.Context(), c.Params("identifier"))
		if err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if timetable == nil {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Stop not found",
			})
		}

		return c.JSON(departureBoard(timetable, timezone, time.Now()))
	})

	// batch departure boards for every stop a board screen shows
	router.Post("/departures", func(c *fiber.Ctx) error {
		var request struct {
			StopIDs []string `json:"stopIds"`
		}
		if err := c.BodyParser(&request); err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Body must contain a stopIds array",
			})
		}

		timetables, err := data.StopsDepartures(c.Context(), request.StopIDs)
		if err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		now := time.Now()
		boards := map[string]DepartureBoard{}
		for stopID, timetable := range timetables {
			if timetable == nil {
				continue
			}
			boards[stopID] = departureBoard(timetable, timezone, now)
		}

		return c.JSON(boards)
	})
}

func departureBoard(timetable *digitransit.StopTimetable, timezone *time.Location, now time.Time) DepartureBoard {
	board := DepartureBoard{
		GtfsID:      timetable.GtfsID,
		Name:        timetable.Name,
		VehicleMode: timetable.VehicleMode,
		Departures:  []nysse.Departure{},
	}

	for _, entry := range timetable.StopTimes {
		stopTime := entry.StopTime()

		departure := nysse.Departure{
			RouteShortName: entry.Trip.Route.ShortName,
			Headsign:       entry.Headsign,
			Time:           stopTime.FormatDeparture(timezone),
			OffSchedule:    stopTime.OffSchedule(),
		}
		if minutes, ok := stopTime.MinutesUntil(now); ok {
			departure.MinutesUntil = &minutes
		}

		board.Departures = append(board.Departures, departure)
	}

	return board
}
