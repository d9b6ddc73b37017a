package nysse

import (
	"fmt"
	"math"
	"time"
)

// Boards never count down further out than this
const departureCountdownCutoffMinutes = 60

// Departure is one formatted row of a stop departure board.
type Departure struct {
	RouteShortName string `json:"routeShortName"`
	Headsign       string `json:"headsign"`
	Time           string `json:"time"`
	MinutesUntil   *int   `json:"minutesUntil,omitempty"`
	OffSchedule    bool   `json:"offSchedule"`
}

// OffSchedule reports whether the realtime departure deviates from the
// scheduled one.
func (st StopTime) OffSchedule() bool {
	return st.RealtimeDeparture != st.ScheduledDeparture
}

// FormatDeparture renders the realtime departure instant as zero padded local
// HH:MM, prefixed with "* " when the departure is off schedule.
func (st StopTime) FormatDeparture(loc *time.Location) string {
	instant := time.Unix(st.DepartureUnix(), 0).In(loc)

	prefix := ""
	if st.OffSchedule() {
		prefix = "* "
	}

	return fmt.Sprintf("%s%02d:%02d", prefix, instant.Hour(), instant.Minute())
}

// MinutesUntil returns the floored number of minutes until the realtime
// departure. ok is false once the countdown exceeds the cutoff, so a board
// shows nothing instead of an irrelevant number.
func (st StopTime) MinutesUntil(now time.Time) (minutes int, ok bool) {
	minutes = int(math.Floor(float64(st.DepartureUnix()-now.Unix()) / 60))

	if minutes > departureCountdownCutoffMinutes {
		return 0, false
	}

	return minutes, true
}

// CountdownLabel renders the stop tooltip countdown, eg. "5 min". ok is
// false once the departure has passed, so refreshes drop stops the vehicle
// has already served. Unlike MinutesUntil there is no upper cutoff; the far
// end of a trip is still worth labelling.
func (st StopTime) CountdownLabel(now time.Time) (label string, ok bool) {
	remaining := st.DepartureUnix() - now.Unix()
	if remaining <= 0 {
		return "", false
	}

	return fmt.Sprintf("%d min", remaining/60), true
}

// FormatDelay formats a schedule deviation the way the vehicle bubble shows
// it, eg. "2.3 min myöhässä" or "1.0 min etuajassa".
func FormatDelay(delaySeconds int64) string {
	suffix := "myöhässä"
	if delaySeconds < 0 {
		suffix = "etuajassa"
	}

	minutes := math.Round(math.Abs(float64(delaySeconds))/60*10) / 10

	return fmt.Sprintf("%.1f min %s", minutes, suffix)
}
