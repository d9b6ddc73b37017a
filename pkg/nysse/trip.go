package nysse

// TripDetails is a scheduled trip resolved through the fuzzy trip lookup,
// with the geometry and per-stop timing needed to draw a route path and ETAs.
type TripDetails struct {
	GtfsID         string `json:"gtfsId"`
	TripShortName  string `json:"tripShortName"`
	RouteShortName string `json:"routeShortName"`
	Headsign       string `json:"headsign"`

	// Geometry is an ordered sequence of longitude, latitude pairs
	Geometry [][2]float64 `json:"geometry"`

	// StopTimes are ordered by stop sequence along Geometry
	StopTimes []StopTime `json:"stopTimes"`
}

// StopTime is one scheduled and realtime departure at a stop. Departure
// offsets are seconds from ServiceDay, the local midnight of the operating
// day, and can exceed 24h for trips past midnight.
type StopTime struct {
	Stop               Stop  `json:"stop"`
	ServiceDay         int64 `json:"serviceDay"`
	ScheduledDeparture int   `json:"scheduledDeparture"`
	RealtimeDeparture  int   `json:"realtimeDeparture"`
}

// DepartureUnix is the absolute realtime departure instant in epoch seconds.
func (st StopTime) DepartureUnix() int64 {
	return st.ServiceDay + int64(st.RealtimeDeparture)
}
