package forces

import (
	"fmt"
	"sort"

	"github.com/san-kum/plife/internal/dynamo"
)

type presetKey struct {
	id, k int
}

type preset struct {
	name string
	rows [][]float64
}

var presets = map[presetKey]preset{
	{1, 4}: {
		name: "self-affinity",
		rows: [][]float64{
			{0.5, 0.0, 0.0, 0.0},
			{0.0, 0.5, 0.0, 0.0},
			{0.0, 0.0, 0.5, 0.0},
			{0.0, 0.0, 0.0, 0.5},
		},
	},
	{2, 4}: {
		name: "block-rivalry",
		rows: [][]float64{
			{0.6, -0.6, -0.6, -0.6},
			{0.6, 0.6, -0.6, -0.6},
			{-0.6, -0.6, 0.6, -0.6},
			{-0.6, 0.6, -0.6, 0.6},
		},
	},
	{3, 4}: {
		name: "cyclic-asymmetric",
		rows: [][]float64{
			{0.2, 0.2, 0.0, -0.2},
			{-0.2, 0.2, 0.2, 0.0},
			{0.0, -0.2, 0.2, 0.2},
			{-0.2, -0.2, 0.2, 0.2},
		},
	},
}

// PresetInfo describes a built-in matrix.
type PresetInfo struct {
	ID     int
	Colors int
	Name   string
}

// BuildPreset returns the fixed table registered for (id, k).
func BuildPreset(id, k int) (*Matrix, error) {
	p, ok := presets[presetKey{id, k}]
	if !ok {
		if !hasID(id) {
			return nil, dynamo.NewConfigError("preset", id, "unknown preset id")
		}
		return nil, dynamo.NewConfigError("colors", k, fmt.Sprintf("preset %d is not defined for %d colours", id, k))
	}
	return FromRows(p.rows)
}

// Presets lists the built-in matrices ordered by id then colour count.
func Presets() []PresetInfo {
	out := make([]PresetInfo, 0, len(presets))
	for key, p := range presets {
		out = append(out, PresetInfo{ID: key.id, Colors: key.k, Name: p.name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Colors < out[j].Colors
	})
	return out
}

func hasID(id int) bool {
	for key := range presets {
		if key.id == id {
			return true
		}
	}
	return false
}
