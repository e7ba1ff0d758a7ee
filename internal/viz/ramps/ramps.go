// Package ramps holds the hypsometric tint color ramps.
package ramps

import (
	"fmt"

	"github.com/samber/lo"
)

// ColorRamp is a read-only ramp. Colors is a flat list of stop, color pairs with
// stops normalized to 0..1.
type ColorRamp struct {
	Name       string `json:"name"`
	License    string `json:"license"`
	Distribute bool   `json:"distribute"`
	Colors     []any  `json:"colors"`
}

// Selector filters the catalog
type Selector string

const (
	SelectAll           Selector = "all"
	SelectOpen          Selector = "open"          // public-domain or CC licenses
	SelectDistributable Selector = "distributable" // may be redistributed with exports
)

var openLicenses = []string{"CC0", "CC-BY", "CC-BY-SA", "Public Domain"}

var catalog = []ColorRamp{
	{
		Name: "hypsometric", License: "CC0", Distribute: true,
		Colors: []any{
			0.0, "#0b6e4f", 0.15, "#5fa35f", 0.3, "#c2d68a", 0.45, "#e8d8a0",
			0.6, "#c9a26b", 0.75, "#9c6b45", 0.9, "#d9d2cc", 1.0, "#ffffff",
		},
	},
	{
		Name: "wiki-schwarzwald", License: "CC-BY-SA", Distribute: true,
		Colors: []any{
			0.0, "#aee6a0", 0.2, "#d9f2b4", 0.4, "#f6eab2", 0.6, "#e3c38b",
			0.8, "#c29b6d", 1.0, "#f2efe9",
		},
	},
	{
		Name: "viridis", License: "CC0", Distribute: true,
		Colors: []any{
			0.0, "#440154", 0.25, "#3b528b", 0.5, "#21918c", 0.75, "#5ec962", 1.0, "#fde725",
		},
	},
	{
		Name: "gmt-globe", License: "GPL", Distribute: true,
		Colors: []any{
			0.0, "#0e5d1f", 0.1, "#3c8f3e", 0.3, "#a5c96b", 0.5, "#e1d58f",
			0.7, "#b98f5f", 0.85, "#8a6a52", 1.0, "#f5f5f5",
		},
	},
	{
		Name: "arctic-relief", License: "Proprietary", Distribute: false,
		Colors: []any{
			0.0, "#264653", 0.33, "#2a9d8f", 0.66, "#e9c46a", 1.0, "#f4f1de",
		},
	},
	{
		Name: "grayscale", License: "Public Domain", Distribute: true,
		Colors: []any{0.0, "#000000", 1.0, "#ffffff"},
	},
}

// Catalog returns every ramp
func Catalog() []ColorRamp {
	return Filter(SelectAll)
}

// Filter returns the ramps matching sel. Unknown selectors match everything.
func Filter(sel Selector) []ColorRamp {
	return lo.Filter(catalog, func(r ColorRamp, _ int) bool {
		switch sel {
		case SelectOpen:
			return lo.Contains(openLicenses, r.License)
		case SelectDistributable:
			return r.Distribute
		default:
			return true
		}
	})
}

// Lookup finds a ramp by name
func Lookup(name string) (ColorRamp, bool) {
	return lo.Find(catalog, func(r ColorRamp) bool {
		return r.Name == name
	})
}

// Stops rescales the ramp stops into [minElev, maxElev] meters
func (r ColorRamp) Stops(minElev, maxElev float64) ([]any, error) {
	if len(r.Colors)%2 != 0 {
		return nil, fmt.Errorf("ramp %s has an odd number of entries", r.Name)
	}
	if maxElev <= minElev {
		return nil, fmt.Errorf("invalid elevation range %v..%v", minElev, maxElev)
	}

	out := make([]any, len(r.Colors))
	for i := 0; i < len(r.Colors); i += 2 {
		stop, ok := r.Colors[i].(float64)
		if !ok {
			return nil, fmt.Errorf("ramp %s: stop %d is not a number", r.Name, i/2)
		}
		out[i] = minElev + stop*(maxElev-minElev)
		out[i+1] = r.Colors[i+1]
	}
	return out, nil
}

// ColorReliefPaint builds the color-relief layer paint for r stretched over [minElev, maxElev]
func ColorReliefPaint(r ColorRamp, minElev, maxElev, opacity float64) (map[string]any, error) {
	stops, err := r.Stops(minElev, maxElev)
	if err != nil {
		return nil, err
	}

	expr := append([]any{"interpolate", []any{"linear"}, []any{"elevation"}}, stops...)
	return map[string]any{
		"color-relief-color":   expr,
		"color-relief-opacity": opacity,
	}, nil
}
