// Package tracker keeps a rendered vehicle map in sync with the realtime
// feed. It owns marker lifecycle, vehicle selection and the trip overlay
// that selection brings up.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nysselive/nysselive/pkg/nysse"
	"github.com/nysselive/nysselive/pkg/trips"
)

// ErrUnknownVehicle means a selection referenced a vehicle that is not in
// the current snapshot set.
var ErrUnknownVehicle = errors.New("unknown vehicle reference")

const iconCacheLimit = 512

// TripWatcher keeps a trip lookup fresh. Watch blocks until its context is
// cancelled, calling apply with every successful refresh.
type TripWatcher interface {
	Watch(ctx context.Context, lookup trips.Lookup, interval time.Duration, apply func(*nysse.TripDetails))
}

// selection is the live state of one selected vehicle. torn makes teardown
// idempotent when the same selection is dismissed through several paths at
// once, eg. an explicit deselect racing the vehicle dropping off the feed.
type selection struct {
	vehicleRef string
	cancel     context.CancelFunc
	torn       bool
}

type Controller struct {
	mu sync.Mutex

	renderer Renderer
	watcher  TripWatcher

	refreshInterval time.Duration

	icons         *iconCache
	vehicles      map[string]nysse.VehicleSnapshot
	lastBatch     []nysse.VehicleSnapshot
	visibleRoutes map[string]struct{}
	selected      *selection
}

func NewController(renderer Renderer, watcher TripWatcher, refreshInterval time.Duration) *Controller {
	return &Controller{
		renderer:        renderer,
		watcher:         watcher,
		refreshInterval: refreshInterval,
		icons:           newIconCache(iconCacheLimit),
		vehicles:        map[string]nysse.VehicleSnapshot{},
	}
}

// Apply reconciles the rendered markers against a fresh snapshot batch.
// Existing markers are updated in place so renderer side identity survives
// across refreshes, new vehicles get markers and vanished ones are removed.
// Removing the selected vehicle tears its overlay down first.
func (c *Controller) Apply(snapshots []nysse.VehicleSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastBatch = snapshots
	c.reconcileLocked()
}

func (c *Controller) reconcileLocked() {
	seen := make(map[string]struct{}, len(c.lastBatch))

	for _, snapshot := range c.lastBatch {
		if !c.routeVisibleLocked(snapshot.Headsign) {
			continue
		}
		seen[snapshot.VehicleRef] = struct{}{}

		state := c.markerState(snapshot)
		if _, ok := c.vehicles[snapshot.VehicleRef]; ok {
			c.renderer.UpdateVehicleMarker(snapshot.VehicleRef, state)
		} else {
			c.renderer.CreateVehicleMarker(snapshot.VehicleRef, state)
		}
		c.vehicles[snapshot.VehicleRef] = snapshot
	}

	for vehicleRef := range c.vehicles {
		if _, ok := seen[vehicleRef]; ok {
			continue
		}

		if c.selected != nil && c.selected.vehicleRef == vehicleRef {
			c.teardownLocked()
		}
		c.renderer.RemoveVehicleMarker(vehicleRef)
		delete(c.vehicles, vehicleRef)
	}
}

func (c *Controller) routeVisibleLocked(headsign string) bool {
	if c.visibleRoutes == nil {
		return true
	}
	_, ok := c.visibleRoutes[headsign]
	return ok
}

// SetVisibleRoutes restricts the map to vehicles on the given routes. A nil
// slice clears the filter, an empty one hides every vehicle. Markers are
// reconciled against the last snapshot batch immediately rather than on the
// next poll, so a selected vehicle on a newly hidden route is torn down
// straight away.
func (c *Controller) SetVisibleRoutes(headsigns []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if headsigns == nil {
		c.visibleRoutes = nil
	} else {
		c.visibleRoutes = make(map[string]struct{}, len(headsigns))
		for _, headsign := range headsigns {
			c.visibleRoutes[headsign] = struct{}{}
		}
	}

	c.reconcileLocked()
}

// VisibleRoutes returns the active route filter sorted, or nil when the map
// is unfiltered.
func (c *Controller) VisibleRoutes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.visibleRoutes == nil {
		return nil
	}

	routes := make([]string, 0, len(c.visibleRoutes))
	for headsign := range c.visibleRoutes {
		routes = append(routes, headsign)
	}
	sort.Strings(routes)

	return routes
}

func (c *Controller) markerState(snapshot nysse.VehicleSnapshot) MarkerState {
	popup := fmt.Sprintf("%s %s - %s", snapshot.Headsign, snapshot.Origin, snapshot.Destination)
	if snapshot.DelaySeconds != 0 {
		popup += "\n" + nysse.FormatDelay(snapshot.DelaySeconds)
	}

	return MarkerState{
		Latitude:  snapshot.Latitude(),
		Longitude: snapshot.Longitude(),
		Icon:      c.icons.For(snapshot.Headsign, snapshot.Bearing),
		Popup:     popup,
	}
}

// Select marks a vehicle as the focused one, dims the stop layer and starts
// a watch that keeps the trip overlay fresh. Selecting the already selected
// vehicle is a no-op; selecting another vehicle replaces the selection.
func (c *Controller) Select(vehicleRef string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot, ok := c.vehicles[vehicleRef]
	if !ok {
		return ErrUnknownVehicle
	}

	if c.selected != nil {
		if c.selected.vehicleRef == vehicleRef {
			return nil
		}
		c.teardownLocked()
	}

	ctx, cancel := context.WithCancel(context.Background())
	current := &selection{vehicleRef: vehicleRef, cancel: cancel}
	c.selected = current

	c.renderer.DimStops()

	lookup := trips.Lookup{
		RouteHeadsign: snapshot.Headsign,
		Direction:     snapshot.Direction,
		ServiceDate:   snapshot.TripDate,
		ScheduledTime: snapshot.TripTime,
	}

	go c.watcher.Watch(ctx, lookup, c.refreshInterval, func(details *nysse.TripDetails) {
		c.applyTrip(current, details)
	})

	return nil
}

// applyTrip draws a refreshed trip overlay. Results arriving for a
// selection that has since been torn down are discarded.
func (c *Controller) applyTrip(owner *selection, details *nysse.TripDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if owner.torn || c.selected != owner {
		return
	}

	c.renderer.DrawRoutePath(details.Geometry)

	// Rebinding from scratch drops stops the vehicle passed since the last
	// refresh; only future departures get a countdown.
	c.renderer.RemoveStopTooltips()
	now := time.Now()
	for _, stopTime := range details.StopTimes {
		if label, ok := stopTime.CountdownLabel(now); ok {
			c.renderer.BindStopTooltip(stopTime.Stop, label)
		}
	}
}

// Deselect tears down the current selection. Safe to call whether or not
// anything is selected, and safe to call repeatedly.
func (c *Controller) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
}

func (c *Controller) teardownLocked() {
	current := c.selected
	if current == nil {
		return
	}
	c.selected = nil

	if current.torn {
		return
	}
	current.torn = true
	current.cancel()

	c.renderer.RemoveRoutePath()
	c.renderer.RemoveStopTooltips()
	c.renderer.RestoreStops()
}

// Selected returns the selected vehicle reference, or "" when nothing is
// selected.
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return ""
	}
	return c.selected.vehicleRef
}
