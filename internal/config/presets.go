package config

import "sort"

// Presets are named scenarios. Matrix presets 1-3 are defined for four
// colours only.
var Presets = map[string]*Config{
	"cells": {
		Name: "cells", Particles: 600, Colors: 4, Preset: 1,
		MatrixRange: RangeConfig{Low: -1, High: 1}, Width: 800, Height: 600, RepulsionRadius: 5, Drag: 0.1,
		Strategy: "sequential", Init: InitUniform, Dt: 0.1, Steps: 2000, SampleEvery: 20,
	},
	"rivals": {
		Name: "rivals", Particles: 600, Colors: 4, Preset: 2,
		MatrixRange: RangeConfig{Low: -1, High: 1}, Width: 800, Height: 600, RepulsionRadius: 5, Drag: 0.1,
		Strategy: "sequential", Init: InitUniform, Dt: 0.1, Steps: 2000, SampleEvery: 20,
	},
	"chase": {
		Name: "chase", Particles: 800, Colors: 4, Preset: 3,
		MatrixRange: RangeConfig{Low: -1, High: 1}, Width: 800, Height: 600, RepulsionRadius: 5, Drag: 0.1,
		Strategy: "sequential", Init: InitUniform, Dt: 0.1, Steps: 3000, SampleEvery: 20,
	},
	"chaos": {
		Name: "chaos", Particles: 900, Colors: 6,
		MatrixRange: RangeConfig{Low: -1, High: 1}, Width: 800, Height: 600, RepulsionRadius: 6, Drag: 0.05,
		Strategy: "sequential", Init: InitUniform, Dt: 0.1, Steps: 2000, SampleEvery: 20,
	},
	"nebula": {
		Name: "nebula", Particles: 700, Colors: 5,
		MatrixRange: RangeConfig{Low: -0.5, High: 1}, Width: 800, Height: 600, RepulsionRadius: 5, Drag: 0.15,
		Strategy: "buffered", Init: InitNoise, Dt: 0.1, Steps: 2000, SampleEvery: 20,
	},
}

// GetPreset returns a copy of the named scenario, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
