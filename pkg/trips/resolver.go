// Package trips resolves live vehicle observations to their scheduled trips
// via the upstream fuzzy trip lookup.
package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nysselive/nysselive/pkg/digitransit"
	"github.com/nysselive/nysselive/pkg/nysse"
)

// ErrNotFound means the upstream had no trip matching the lookup. Callers
// degrade gracefully, eg. by not drawing a route path.
var ErrNotFound = errors.New("no trip matched the lookup")

// Lookup identifies a scheduled trip the way the realtime feed describes
// one: route short name, direction, service date and a scheduled start time
// in the feed native HHMM format.
type Lookup struct {
	RouteHeadsign string `json:"routeHeadsign"`
	Direction     int    `json:"direction"`
	ServiceDate   string `json:"serviceDate"`
	ScheduledTime string `json:"scheduledTime"`
}

// TimeSeconds converts the HHMM start time into seconds since midnight of
// the service day. Post-midnight trips can exceed 24 hours, which the
// upstream expects.
func (l Lookup) TimeSeconds() (int, error) {
	if len(l.ScheduledTime) < 4 {
		return 0, fmt.Errorf("invalid scheduled time %q", l.ScheduledTime)
	}

	hours, err := strconv.Atoi(l.ScheduledTime[:len(l.ScheduledTime)-2])
	if err != nil {
		return 0, fmt.Errorf("invalid scheduled time %q", l.ScheduledTime)
	}

	minutes, err := strconv.Atoi(l.ScheduledTime[len(l.ScheduledTime)-2:])
	if err != nil {
		return 0, fmt.Errorf("invalid scheduled time %q", l.ScheduledTime)
	}

	return hours*60*60 + minutes*60, nil
}

func (l Lookup) Validate() error {
	if l.RouteHeadsign == "" || l.ServiceDate == "" {
		return fmt.Errorf("route headsign and service date are required")
	}

	_, err := l.TimeSeconds()
	return err
}

type Resolver struct {
	client *digitransit.Client
}

func NewResolver(client *digitransit.Client) *Resolver {
	return &Resolver{client: client}
}

type fuzzyTripPayload struct {
	TripShortName    string       `json:"tripShortName"`
	RouteShortName   string       `json:"routeShortName"`
	GtfsID           string       `json:"gtfsId"`
	TripHeadsign     string       `json:"tripHeadsign"`
	Geometry         [][2]float64 `json:"geometry"`
	StoptimesForDate []struct {
		Stop               nysse.Stop `json:"stop"`
		ServiceDay         int64      `json:"serviceDay"`
		RealtimeDeparture  int        `json:"realtimeDeparture"`
		ScheduledDeparture int        `json:"scheduledDeparture"`
	} `json:"stoptimesForDate"`
}

// Resolve runs the fuzzy lookup and normalizes the response. An upstream
// miss or an unusable response yields ErrNotFound rather than a hard error;
// transport failures propagate as is.
func (r *Resolver) Resolve(ctx context.Context, lookup Lookup) (*nysse.TripDetails, error) {
	timeSeconds, err := lookup.TimeSeconds()
	if err != nil {
		return nil, err
	}

	route := lookup.RouteHeadsign
	if !strings.HasPrefix(route, r.client.FeedID()+":") {
		route = r.client.FeedID() + ":" + route
	}

	data, err := r.client.FuzzyTrip(ctx, digitransit.FuzzyTripQuery{
		Route:       route,
		Direction:   lookup.Direction,
		ServiceDate: lookup.ServiceDate,
		TimeSeconds: timeSeconds,
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		FuzzyTrip *fuzzyTripPayload `json:"fuzzyTrip"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, ErrNotFound
	}
	if decoded.FuzzyTrip == nil {
		return nil, ErrNotFound
	}

	payload := decoded.FuzzyTrip

	details := &nysse.TripDetails{
		GtfsID:         payload.GtfsID,
		TripShortName:  payload.TripShortName,
		RouteShortName: payload.RouteShortName,
		Headsign:       payload.TripHeadsign,
		Geometry:       payload.Geometry,
		StopTimes:      make([]nysse.StopTime, 0, len(payload.StoptimesForDate)),
	}

	for _, stopTime := range payload.StoptimesForDate {
		details.StopTimes = append(details.StopTimes, nysse.StopTime{
			Stop:               stopTime.Stop,
			ServiceDay:         stopTime.ServiceDay,
			ScheduledDeparture: stopTime.ScheduledDeparture,
			RealtimeDeparture:  stopTime.RealtimeDeparture,
		})
	}

	return details, nil
}
