package config

import "sort"

type Preset struct {
	Function    string
	Range       RangeConfig
	Description string
}

var Presets = map[string]*Preset{
	"quadratic": {
		Function: "x^2 - 4x", Range: RangeConfig{Lo: -10, Hi: 10},
		Description: "parabola with a single minimum at x = 2",
	},
	"cubic": {
		Function: "2x^3 - 5x + 1", Range: RangeConfig{Lo: -3, Hi: 3},
		Description: "local maximum and minimum around the origin",
	},
	"quartic": {
		Function: "x^4 - 4x^2", Range: RangeConfig{Lo: -3, Hi: 3},
		Description: "double well with two minima and a maximum at 0",
	},
	"wave": {
		Function: "sin(x) + cos(x)", Range: RangeConfig{Lo: -10, Hi: 10},
		Description: "periodic extrema every pi",
	},
	"gaussian": {
		Function: "exp(-x^2)", Range: RangeConfig{Lo: -3, Hi: 3},
		Description: "bell curve peaking at 0",
	},
	"damped": {
		Function: "x sin(x)", Range: RangeConfig{Lo: -10, Hi: 10},
		Description: "growing oscillation",
	},
	"rational": {
		Function: "1 / (1 + x^2)", Range: RangeConfig{Lo: -5, Hi: 5},
		Description: "Witch of Agnesi",
	},
	"linear": {
		Function: "3x + 1", Range: RangeConfig{Lo: -10, Hi: 10},
		Description: "constant derivative, no critical points",
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
