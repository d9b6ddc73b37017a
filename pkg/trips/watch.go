package trips

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nysselive/nysselive/pkg/nysse"
)

// Watch resolves the lookup immediately and then again every interval,
// calling apply with each successful result. Refreshes are sequential, so a
// slow upstream never stacks requests. Watch blocks until ctx is cancelled.
func (r *Resolver) Watch(ctx context.Context, lookup Lookup, interval time.Duration, apply func(*nysse.TripDetails)) {
	for {
		details, err := r.Resolve(ctx, lookup)

		if ctx.Err() != nil {
			// Cancelled while the request was in flight. The result no
			// longer has an owner, so drop it.
			return
		}

		if err != nil {
			if errors.Is(err, ErrNotFound) {
				log.Debug().
					Str("route", lookup.RouteHeadsign).
					Str("date", lookup.ServiceDate).
					Str("time", lookup.ScheduledTime).
					Msg("Trip refresh found no match")
			} else {
				log.Error().Err(err).
					Str("route", lookup.RouteHeadsign).
					Msg("Trip refresh failed")
			}
		} else {
			apply(details)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
