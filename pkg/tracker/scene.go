package tracker

import (
	"sort"
	"sync"

	"github.com/nysselive/nysselive/pkg/nysse"
)

// SceneMarker is one vehicle as last drawn.
type SceneMarker struct {
	VehicleRef string     `json:"vehicleRef"`
	Latitude   float64    `json:"lat"`
	Longitude  float64    `json:"lon"`
	Icon       MarkerIcon `json:"icon"`
	Popup      string     `json:"popup"`
}

// SceneStop is a stop on the selected trip with its departure tooltip.
type SceneStop struct {
	Stop    nysse.Stop `json:"stop"`
	Tooltip string     `json:"tooltip"`
}

// Scene is a point in time description of the whole map.
type Scene struct {
	Markers     []SceneMarker `json:"markers"`
	RoutePath   [][2]float64  `json:"routePath,omitempty"`
	Stops       []SceneStop   `json:"stops,omitempty"`
	StopsDimmed bool          `json:"stopsDimmed"`
}

// SceneRenderer is a Renderer that keeps the drawn state as data so clients
// can fetch the whole scene over HTTP. Safe for concurrent reads.
type SceneRenderer struct {
	mu sync.RWMutex

	markers map[string]SceneMarker
	path    [][2]float64
	stops   []SceneStop
	dimmed  bool
}

func NewSceneRenderer() *SceneRenderer {
	return &SceneRenderer{
		markers: map[string]SceneMarker{},
	}
}

func (s *SceneRenderer) CreateVehicleMarker(vehicleRef string, state MarkerState) {
	s.setMarker(vehicleRef, state)
}

func (s *SceneRenderer) UpdateVehicleMarker(vehicleRef string, state MarkerState) {
	s.setMarker(vehicleRef, state)
}

func (s *SceneRenderer) setMarker(vehicleRef string, state MarkerState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers[vehicleRef] = SceneMarker{
		VehicleRef: vehicleRef,
		Latitude:   state.Latitude,
		Longitude:  state.Longitude,
		Icon:       state.Icon,
		Popup:      state.Popup,
	}
}

func (s *SceneRenderer) RemoveVehicleMarker(vehicleRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.markers, vehicleRef)
}

func (s *SceneRenderer) DrawRoutePath(geometry [][2]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.path = geometry
}

func (s *SceneRenderer) RemoveRoutePath() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.path = nil
}

func (s *SceneRenderer) BindStopTooltip(stop nysse.Stop, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stops = append(s.stops, SceneStop{Stop: stop, Tooltip: label})
}

func (s *SceneRenderer) RemoveStopTooltips() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stops = nil
}

func (s *SceneRenderer) DimStops() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dimmed = true
}

func (s *SceneRenderer) RestoreStops() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dimmed = false
}

// Scene returns a copy of the current scene with markers in a stable order.
func (s *SceneRenderer) Scene() Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scene := Scene{
		Markers:     make([]SceneMarker, 0, len(s.markers)),
		StopsDimmed: s.dimmed,
	}

	for _, marker := range s.markers {
		scene.Markers = append(scene.Markers, marker)
	}
	sort.Slice(scene.Markers, func(i, j int) bool {
		return scene.Markers[i].VehicleRef < scene.Markers[j].VehicleRef
	})

	scene.RoutePath = append(scene.RoutePath, s.path...)
	scene.Stops = append(scene.Stops, s.stops...)

	return scene
}
