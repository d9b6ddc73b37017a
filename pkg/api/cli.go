package api

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/nysselive/nysselive/pkg/config"
	"github.com/nysselive/nysselive/pkg/digitransit"
	"github.com/nysselive/nysselive/pkg/querycache"
	"github.com/nysselive/nysselive/pkg/realtime"
	"github.com/nysselive/nysselive/pkg/redis_client"
	"github.com/nysselive/nysselive/pkg/stats"
	"github.com/nysselive/nysselive/pkg/tracker"
	"github.com/nysselive/nysselive/pkg/trips"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Value: "config.yml",
						Usage: "path to the config file",
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server, overrides the config",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					listen := cfg.Listen
					if c.String("listen") != "" {
						listen = c.String("listen")
					}

					collector := stats.NewCollector()

					cacheOptions := querycache.Options{
						MaxEntries: cfg.Cache.MaxEntries,
					}
					if cacheOptions.TTLs, err = cacheTTLs(cfg.Cache); err != nil {
						return err
					}
					if cfg.Cache.Redis.Address != "" {
						if err := redis_client.Connect(cfg.Cache.Redis); err != nil {
							return err
						}
						cacheOptions.RedisClient = redis_client.Client
					}

					queryCache, err := querycache.New(cacheOptions, collector)
					if err != nil {
						return err
					}

					client := digitransit.NewClient(cfg.Digitransit, queryCache, collector)
					resolver := trips.NewResolver(client)

					timezone, err := time.LoadLocation("Europe/Helsinki")
					if err != nil {
						return err
					}

					scene := tracker.NewSceneRenderer()
					controller := tracker.NewController(scene, resolver, cfg.Trips.RefreshInterval())

					poller := realtime.New(cfg.Realtime, collector)
					poller.Start()
					defer poller.Stop()

					go func() {
						for range time.Tick(cfg.Realtime.Interval()) {
							controller.Apply(poller.Snapshots())
						}
					}()

					server := &Server{
						Snapshots: poller,
						Client:    client,
						Resolver:  resolver,
						Tracker:   controller,
						Scene:     scene,
						Collector: collector,
						Timezone:  timezone,
					}

					warmupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
					defer cancel()
					if err := server.Warmup(warmupCtx); err != nil {
						log.Warn().Err(err).Msg("Query cache warmup failed")
					}

					return server.Listen(listen)
				},
			},
		},
	}
}

func cacheTTLs(cfg config.CacheConfig) (map[querycache.Class]time.Duration, error) {
	ttls := map[querycache.Class]time.Duration{}

	for class, value := range map[querycache.Class]string{
		querycache.ClassStops:  cfg.StopsTTL,
		querycache.ClassRoutes: cfg.RoutesTTL,
		querycache.ClassAlerts: cfg.AlertsTTL,
		querycache.ClassTrips:  cfg.TripsTTL,
	} {
		ttl, err := config.ISODuration(value)
		if err != nil {
			return nil, err
		}
		ttls[class] = ttl
	}

	return ttls, nil
}
