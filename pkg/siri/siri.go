// Package siri models the JSON rendition of a SIRI vehicle monitoring
// delivery as published by the ITS Factory feed, along with the delay
// duration format it uses.
package siri

// Document is the top level SIRI JSON document. Only the vehicle monitoring
// delivery path is structurally required; anything else the feed includes is
// ignored.
type Document struct {
	Siri struct {
		ServiceDelivery struct {
			ResponseTimestamp         int64                       `json:"ResponseTimestamp"`
			ProducerRef               Ref                         `json:"ProducerRef"`
			VehicleMonitoringDelivery []VehicleMonitoringDelivery `json:"VehicleMonitoringDelivery"`
		} `json:"ServiceDelivery"`
	} `json:"Siri"`
}

type VehicleMonitoringDelivery struct {
	ResponseTimestamp int64             `json:"ResponseTimestamp"`
	VehicleActivity   []VehicleActivity `json:"VehicleActivity"`
}

type VehicleActivity struct {
	RecordedAtTime          int64                   `json:"RecordedAtTime"`
	ValidUntilTime          int64                   `json:"ValidUntilTime"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

type MonitoredVehicleJourney struct {
	LineRef                 Ref                     `json:"LineRef"`
	DirectionRef            Ref                     `json:"DirectionRef"`
	FramedVehicleJourneyRef FramedVehicleJourneyRef `json:"FramedVehicleJourneyRef"`
	OperatorRef             Ref                     `json:"OperatorRef"`
	OriginName              Ref                     `json:"OriginName"`
	DestinationName         Ref                     `json:"DestinationName"`
	Monitored               bool                    `json:"Monitored"`
	VehicleLocation         VehicleLocation         `json:"VehicleLocation"`
	Bearing                 float64                 `json:"Bearing"`
	Delay                   string                  `json:"Delay"`
	VehicleRef              Ref                     `json:"VehicleRef"`
}

type FramedVehicleJourneyRef struct {
	// DataFrameRef carries the service date as YYYY-MM-DD
	DataFrameRef Ref `json:"DataFrameRef"`
	// DatedVehicleJourneyRef carries the scheduled start time as HHMM
	DatedVehicleJourneyRef string `json:"DatedVehicleJourneyRef"`
}

type VehicleLocation struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

// Ref is the feed's wrapper around plain string values.
type Ref struct {
	Value string `json:"value"`
}
