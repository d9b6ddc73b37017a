package tracker

import "github.com/nysselive/nysselive/pkg/nysse"

// MarkerState is everything a renderer needs to draw one vehicle.
type MarkerState struct {
	Latitude  float64
	Longitude float64
	Icon      MarkerIcon
	Popup     string
}

// Renderer is the drawing surface the controller reconciles against. The
// controller guarantees calls are serialized, so implementations do not need
// their own locking. DrawRoutePath replaces any previously drawn path.
type Renderer interface {
	CreateVehicleMarker(vehicleRef string, state MarkerState)
	UpdateVehicleMarker(vehicleRef string, state MarkerState)
	RemoveVehicleMarker(vehicleRef string)

	DrawRoutePath(geometry [][2]float64)
	RemoveRoutePath()

	BindStopTooltip(stop nysse.Stop, label string)
	RemoveStopTooltips()

	DimStops()
	RestoreStops()
}
