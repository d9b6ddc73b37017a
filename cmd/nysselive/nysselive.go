package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/nysselive/nysselive/pkg/api"
	"github.com/nysselive/nysselive/pkg/trips"

	_ "time/tzdata"
)

func main() {
	godotenv.Load()

	if os.Getenv("NYSSE_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("NYSSE_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "nysselive",
		Description: "Live departure boards and vehicle map for the Nysse network",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			trips.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
