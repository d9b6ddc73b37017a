package api

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Warmup primes the query cache with the slow moving network data so the
// first board and map loads do not all stampede the upstream.
func (s *Server) Warmup(ctx context.Context) error {
	fetchers := pool.New().WithErrors().WithContext(ctx)

	fetchers.Go(func(ctx context.Context) error {
		_, err := s.Client.AllStops(ctx)
		return err
	})
	fetchers.Go(func(ctx context.Context) error {
		_, err := s.Client.AllRoutes(ctx)
		return err
	})
	fetchers.Go(func(ctx context.Context) error {
		_, err := s.Client.Alerts(ctx)
		return err
	})

	if err := fetchers.Wait(); err != nil {
		return err
	}

	log.Info().Msg("Query cache warmed")

	return nil
}
