// Package api is the HTTP surface. It glues the realtime poller, the
// GraphQL client and the vehicle map controller under one fiber app.
package api

import (
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/nysselive/nysselive/pkg/api/routes"
	"github.com/nysselive/nysselive/pkg/digitransit"
	"github.com/nysselive/nysselive/pkg/stats"
	"github.com/nysselive/nysselive/pkg/tracker"
	"github.com/nysselive/nysselive/pkg/trips"
)

// The upstream GraphQL service rate limits aggressively, so the API applies
// its own per client limit first.
const rateLimitPerMinute = 100

type Server struct {
	Snapshots routes.SnapshotSource
	Client    *digitransit.Client
	Resolver  *trips.Resolver
	Tracker   *tracker.Controller
	Scene     *tracker.SceneRenderer
	Collector *stats.Collector
	Timezone  *time.Location
}

func (s *Server) App() *fiber.App {
	if s.Timezone == nil {
		s.Timezone = time.UTC
	}

	webApp := fiber.New()
	webApp.Use(NewLogger())

	webApp.Get("version", routes.APIVersion)
	if s.Collector != nil {
		webApp.Get("/metrics", adaptor.HTTPHandler(s.Collector.Handler()))
	}

	group := webApp.Group("/api", limiter.New(limiter.Config{
		Max:        rateLimitPerMinute,
		Expiration: time.Minute,
	}))

	routes.RealtimeRouter(group.Group("/realtime"), s.Snapshots)
	routes.TripLookupRouter(group.Group("/trip-lookup"), s.Resolver)
	routes.StopsRouter(group.Group("/stops"), s.Client, s.Timezone)
	routes.RoutesRouter(group.Group("/routes"), s.Client)
	routes.AlertsRouter(group.Group("/alerts"), s.Client)
	routes.DigitransitRouter(group.Group("/digitransit"), s.Client)
	routes.MapRouter(group.Group("/map"), s.Tracker, s.Scene)

	return webApp
}

func (s *Server) Listen(listen string) error {
	return s.App().Listen(listen)
}
