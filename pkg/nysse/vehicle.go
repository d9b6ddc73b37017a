package nysse

// VehicleSnapshot is a single realtime vehicle observation taken from the
// SIRI vehicle monitoring feed. A snapshot only lives within one poll batch;
// the whole set is replaced on every successful poll.
type VehicleSnapshot struct {
	VehicleRef string `json:"vehicleRef"`

	// Headsign is the route short name ("1", "70", ...). It doubles as the
	// route matching key for the fuzzy trip lookup.
	Headsign    string `json:"headsign"`
	Direction   int    `json:"direction"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	// Location is latitude, longitude
	Location [2]float64 `json:"location"`
	Bearing  float64    `json:"bearing"`

	// DelaySeconds is negative when the vehicle is running early
	DelaySeconds int64 `json:"delaySeconds"`

	// TripDate is the service date as YYYY-MM-DD
	TripDate string `json:"tripDate"`
	// TripTime is the scheduled start time in the feed native HHMM format,
	// which can exceed 2400 for post-midnight service
	TripTime string `json:"tripTime"`
}

func (v VehicleSnapshot) Latitude() float64 {
	return v.Location[0]
}

func (v VehicleSnapshot) Longitude() float64 {
	return v.Location[1]
}
