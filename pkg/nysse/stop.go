package nysse

type Stop struct {
	GtfsID      string  `json:"gtfsId"`
	Name        string  `json:"name"`
	Code        string  `json:"code,omitempty"`
	ZoneID      string  `json:"zoneId,omitempty"`
	VehicleMode string  `json:"vehicleMode,omitempty"`
	Latitude    float64 `json:"lat,omitempty"`
	Longitude   float64 `json:"lon,omitempty"`
}

type Route struct {
	GtfsID    string `json:"gtfsId"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
	Mode      string `json:"mode"`
}

type Alert struct {
	HeaderText         string `json:"alertHeaderText"`
	DescriptionText    string `json:"alertDescriptionText"`
	SeverityLevel      string `json:"alertSeverityLevel,omitempty"`
	EffectiveStartDate int64  `json:"effectiveStartDate,omitempty"`
	EffectiveEndDate   int64  `json:"effectiveEndDate,omitempty"`
}
