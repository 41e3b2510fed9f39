package config

import (
	"sort"

	"github.com/san-kum/starfield/internal/starfield"
)

// Theme is a named accent for the star field. Stars are drawn in Accent;
// connector lines reuse the accent at ConnectorAlpha.
type Theme struct {
	Name           string
	Accent         starfield.Color
	ConnectorAlpha float64
	// Hex is the accent as a terminal color.
	Hex string
}

var Presets = map[string]*Theme{
	"electric": {
		Name:           "electric",
		Accent:         starfield.Accent,
		ConnectorAlpha: starfield.ConnectorAlpha,
		Hex:            "#3b82f6",
	},
	"emerald": {
		Name:           "emerald",
		Accent:         starfield.Color{R: 16, G: 185, B: 129, A: 1},
		ConnectorAlpha: starfield.ConnectorAlpha,
		Hex:            "#10b981",
	},
	"amber": {
		Name:           "amber",
		Accent:         starfield.Color{R: 245, G: 158, B: 11, A: 1},
		ConnectorAlpha: starfield.ConnectorAlpha,
		Hex:            "#f59e0b",
	},
	"violet": {
		Name:           "violet",
		Accent:         starfield.Color{R: 139, G: 92, B: 246, A: 1},
		ConnectorAlpha: 0.15,
		Hex:            "#8b5cf6",
	},
	"mono": {
		Name:           "mono",
		Accent:         starfield.Color{R: 220, G: 220, B: 220, A: 1},
		ConnectorAlpha: 0.08,
		Hex:            "#dcdcdc",
	},
}

func GetPreset(name string) *Theme {
	t, ok := Presets[name]
	if !ok {
		return nil
	}
	return t
}

// ListPresets returns the theme names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the theme after name in ListPresets order, wrapping around.
func Next(name string) *Theme {
	names := ListPresets()
	for i, n := range names {
		if n == name {
			return Presets[names[(i+1)%len(names)]]
		}
	}
	return Presets[names[0]]
}
