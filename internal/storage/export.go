package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/sim"
)

type ParticleRecord struct {
	Color int     `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
}

type ExportData struct {
	Run       RunMetadata          `json:"run"`
	Times     []float64            `json:"times"`
	Series    map[string][]float64 `json:"series"`
	Particles []ParticleRecord     `json:"particles"`
}

func NewExportData(meta RunMetadata, result *sim.Result) ExportData {
	return ExportData{
		Run:       meta,
		Times:     result.Times,
		Series:    result.Series,
		Particles: Records(result.Final),
	}
}

func Records(ps []dynamo.Particle) []ParticleRecord {
	out := make([]ParticleRecord, len(ps))
	for i, p := range ps {
		out[i] = ParticleRecord{Color: p.Color, X: p.Pos.X, Y: p.Pos.Y, VX: p.Vel.X, VY: p.Vel.Y}
	}
	return out
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ExportJSONStdout(data ExportData) error {
	return encode(os.Stdout, data)
}

func encode(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
