package digitransit

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/nysselive/nysselive/pkg/nysse"
	"github.com/nysselive/nysselive/pkg/querycache"
	"github.com/nysselive/nysselive/pkg/util"
)

// Characters allowed through in frontend supplied stop identifiers
var stopIDSanitizer = regexp.MustCompile(`[^A-Za-z0-9:_\-\., ]`)

const departuresPerStop = 5

// AllStops returns every stop in the configured feed. Stop geometry changes
// rarely, so this sits in the longest lived cache class.
func (c *Client) AllStops(ctx context.Context) ([]nysse.Stop, error) {
	query := fmt.Sprintf(`{
		stops(feeds: "%s") {
			gtfsId,
			name,
			code,
			zoneId,
			vehicleMode,
			lat,
			lon
		}
	}`, c.feedID)

	data, err := c.cachedQuery(ctx, querycache.ClassStops, "all", query)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Stops []nysse.Stop `json:"stops"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	return decoded.Stops, nil
}

// AllRoutes returns every route in the feed, for the map line picker.
func (c *Client) AllRoutes(ctx context.Context) ([]nysse.Route, error) {
	query := fmt.Sprintf(`{
		routes(feeds: "%s") {
			gtfsId,
			shortName,
			longName,
			mode
		}
	}`, c.feedID)

	data, err := c.cachedQuery(ctx, querycache.ClassRoutes, "all", query)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Routes []nysse.Route `json:"routes"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	return decoded.Routes, nil
}

// Alerts returns the current service alerts for the feed.
func (c *Client) Alerts(ctx context.Context) ([]nysse.Alert, error) {
	query := fmt.Sprintf(`{
		alerts(feeds: "%s") {
			alertHeaderText,
			alertDescriptionText,
			alertSeverityLevel,
			effectiveStartDate,
			effectiveEndDate
		}
	}`, c.feedID)

	data, err := c.cachedQuery(ctx, querycache.ClassAlerts, "all", query)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Alerts []nysse.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	return decoded.Alerts, nil
}

// StopTimetable is the departure board data for one stop.
type StopTimetable struct {
	GtfsID      string           `json:"gtfsId"`
	Name        string           `json:"name"`
	VehicleMode string           `json:"vehicleMode"`
	StopTimes   []TimetableEntry `json:"stoptimesWithoutPatterns"`
}

type TimetableEntry struct {
	ServiceDay         int64  `json:"serviceDay"`
	ScheduledArrival   int    `json:"scheduledArrival"`
	ScheduledDeparture int    `json:"scheduledDeparture"`
	RealtimeArrival    int    `json:"realtimeArrival"`
	RealtimeDeparture  int    `json:"realtimeDeparture"`
	Headsign           string `json:"headsign"`
	Trip               struct {
		Route struct {
			ShortName string `json:"shortName"`
		} `json:"route"`
	} `json:"trip"`
}

// StopTime converts a timetable entry into the shared stop time shape used by
// the departure formatters.
func (e TimetableEntry) StopTime() nysse.StopTime {
	return nysse.StopTime{
		ServiceDay:         e.ServiceDay,
		ScheduledDeparture: e.ScheduledDeparture,
		RealtimeDeparture:  e.RealtimeDeparture,
	}
}

// StopDepartures returns the next departures for a single stop. Departure
// rows carry realtime estimates, so they are never cached.
func (c *Client) StopDepartures(ctx context.Context, stopID string) (*StopTimetable, error) {
	stopID = SanitizeStopID(stopID)

	query := fmt.Sprintf(`{
		stop(id: "%s") {
			gtfsId,
			name,
			vehicleMode,
			stoptimesWithoutPatterns(numberOfDepartures: %d) {
				serviceDay
				scheduledArrival
				scheduledDeparture
				realtimeArrival
				realtimeDeparture
				trip {
					route {
						shortName
					}
				}
				headsign
			}
		}
	}`, stopID, departuresPerStop)

	data, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Stop *StopTimetable `json:"stop"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	return decoded.Stop, nil
}

// StopsDepartures returns departure boards for several stops in one query.
// Each stop becomes an alias in the document, with ":" mapped to "_" the way
// GraphQL alias syntax requires.
func (c *Client) StopsDepartures(ctx context.Context, stopIDs []string) (map[string]*StopTimetable, error) {
	sanitized := make([]string, 0, len(stopIDs))
	for _, id := range stopIDs {
		if clean := SanitizeStopID(id); clean != "" {
			sanitized = append(sanitized, clean)
		}
	}
	sanitized = util.RemoveDuplicateStrings(sanitized, nil)

	if len(sanitized) == 0 {
		return map[string]*StopTimetable{}, nil
	}

	var sections []string
	for _, id := range sanitized {
		sections = append(sections, fmt.Sprintf(`%s: stop(id: "%s") {
			gtfsId,
			name,
			vehicleMode,
			stoptimesWithoutPatterns(numberOfDepartures: %d) {
				serviceDay
				scheduledArrival
				scheduledDeparture
				realtimeArrival
				realtimeDeparture
				trip {
					route {
						shortName
					}
				}
				headsign
			}
		}`, strings.ReplaceAll(id, ":", "_"), id, departuresPerStop))
	}

	data, err := c.Query(ctx, fmt.Sprintf("{\n%s\n}", strings.Join(sections, "\n")))
	if err != nil {
		return nil, err
	}

	var decoded map[string]*StopTimetable
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	boards := make(map[string]*StopTimetable, len(decoded))
	for alias, timetable := range decoded {
		if timetable != nil {
			boards[strings.Replace(alias, "_", ":", 1)] = timetable
		}
	}

	return boards, nil
}

// SanitizeStopID strips anything outside the known stop identifier alphabet
// from a frontend supplied value.
func SanitizeStopID(stopID string) string {
	return stopIDSanitizer.ReplaceAllString(stopID, "")
}
