package tracker

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

type VehicleKind string

const (
	KindBus  VehicleKind = "bus"
	KindTram VehicleKind = "tram"
)

// Light rail lines carry plain numeric headsigns just like buses, so the
// distinction has to be a known list.
var tramHeadsigns = []string{"1", "3"}

// MarkerIcon describes the rendered vehicle symbol. Rotation is quantized so
// that near-identical bearings share an icon.
type MarkerIcon struct {
	Label    string      `json:"label"`
	Kind     VehicleKind `json:"kind"`
	Rotation float64     `json:"rotation"`
}

const rotationStep = 22.5

// iconCache memoizes icons per label and quantized rotation. Real feeds only
// produce a few hundred combinations but the bound keeps a misbehaving feed
// from growing it without limit. Eviction is oldest first.
type iconCache struct {
	limit int
	order []string
	icons map[string]MarkerIcon
}

func newIconCache(limit int) *iconCache {
	return &iconCache{
		limit: limit,
		icons: make(map[string]MarkerIcon, limit),
	}
}

func (ic *iconCache) For(label string, bearing float64) MarkerIcon {
	rotation := math.Round(bearing/rotationStep) * rotationStep
	rotation = math.Mod(rotation, 360)
	if rotation < 0 {
		rotation += 360
	}

	key := fmt.Sprintf("%s:%.1f", label, rotation)
	if icon, ok := ic.icons[key]; ok {
		return icon
	}

	kind := KindBus
	if slices.Contains(tramHeadsigns, label) {
		kind = KindTram
	}

	icon := MarkerIcon{Label: label, Kind: kind, Rotation: rotation}

	if len(ic.order) >= ic.limit {
		oldest := ic.order[0]
		ic.order = ic.order[1:]
		delete(ic.icons, oldest)
	}
	ic.icons[key] = icon
	ic.order = append(ic.order, key)

	return icon
}
