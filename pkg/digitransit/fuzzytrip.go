package digitransit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nysselive/nysselive/pkg/querycache"
)

// FuzzyTripQuery asks the upstream for the scheduled trip closest to a live
// vehicle observation. The upstream owns the match tolerance; this side only
// has to construct the parameters correctly.
type FuzzyTripQuery struct {
	// Route is the fully qualified route id, eg. "tampere:1"
	Route       string
	Direction   int
	ServiceDate string
	// TimeSeconds is the scheduled start as seconds since midnight of the
	// service day; past-midnight trips exceed 86400
	TimeSeconds int
}

func (q FuzzyTripQuery) cacheKey() string {
	return fmt.Sprintf("%s:%d:%s:%d", q.Route, q.Direction, q.ServiceDate, q.TimeSeconds)
}

// FuzzyTrip runs the fuzzy trip lookup and returns the raw data payload,
// cached briefly to collapse repeated lookups while a detail view refreshes.
func (c *Client) FuzzyTrip(ctx context.Context, q FuzzyTripQuery) (json.RawMessage, error) {
	query := fmt.Sprintf(`{
		fuzzyTrip(route: "%s", direction: %d, date: "%s", time: %d) {
			tripShortName,
			routeShortName,
			gtfsId,
			tripHeadsign,
			geometry,
			stops {
				gtfsId,
				name
			},
			stoptimesForDate(serviceDate: "%s") {
			  stop {
				  gtfsId,
				  name,
				  zoneId
			  },
			  serviceDay,
			  realtimeDeparture,
			  scheduledDeparture,
			}
		}
	}`, q.Route, q.Direction, q.ServiceDate, q.TimeSeconds, strings.ReplaceAll(q.ServiceDate, "-", ""))

	return c.cachedQuery(ctx, querycache.ClassTrips, q.cacheKey(), query)
}
