package trips

import (
	"context"
	"errors"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/nysselive/nysselive/pkg/config"
	"github.com/nysselive/nysselive/pkg/digitransit"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "trips",
		Usage: "Query scheduled trip data",
		Subcommands: []*cli.Command{
			{
				Name:  "lookup",
				Usage: "resolve a route, direction, date and start time to a trip",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "path to the config file", Value: "config.yml"},
					&cli.StringFlag{Name: "route", Usage: "route short name, eg. 3", Required: true},
					&cli.IntFlag{Name: "direction", Usage: "direction of travel, 0 or 1"},
					&cli.StringFlag{Name: "date", Usage: "service date, eg. 2026-08-28", Required: true},
					&cli.StringFlag{Name: "time", Usage: "scheduled start time as HHMM, eg. 1435", Required: true},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					client := digitransit.NewClient(cfg.Digitransit, nil, nil)
					resolver := NewResolver(client)

					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()

					details, err := resolver.Resolve(ctx, Lookup{
						RouteHeadsign: c.String("route"),
						Direction:     c.Int("direction"),
						ServiceDate:   c.String("date"),
						ScheduledTime: c.String("time"),
					})
					if errors.Is(err, ErrNotFound) {
						log.Warn().Msg("No trip matched the lookup")
						return nil
					}
					if err != nil {
						return err
					}

					pretty.Println(details)

					return nil
				},
			},
		},
	}
}
