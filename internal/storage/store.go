package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/plife/internal/config"
	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile  = "metadata.json"
	metricsFile   = "metrics.csv"
	particlesFile = "particles.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Name            string             `json:"name,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            int64              `json:"seed"`
	Particles       int                `json:"particles"`
	Colors          int                `json:"colors"`
	Preset          int                `json:"preset,omitempty"`
	Matrix          [][]float64        `json:"matrix"`
	Width           float64            `json:"width"`
	Height          float64            `json:"height"`
	RepulsionRadius float64            `json:"repulsion_radius"`
	Drag            float64            `json:"drag"`
	Strategy        string             `json:"strategy"`
	Init            string             `json:"init"`
	Dt              float64            `json:"dt"`
	Steps           int                `json:"steps"`
	StepsTaken      int                `json:"steps_taken"`
	Coincident      int                `json:"coincident_pairs"`
	Metrics         map[string]float64 `json:"metrics"`
}

// NewMetadata describes a finished run. matrix is the force matrix the run
// actually used, which for random draws is not recoverable from cfg.
func NewMetadata(cfg *config.Config, matrix [][]float64, result *sim.Result) RunMetadata {
	name := cfg.Name
	if name == "" {
		name = "run"
	}
	return RunMetadata{
		ID:              fmt.Sprintf("%s_%d", name, time.Now().UnixNano()),
		Name:            cfg.Name,
		Timestamp:       time.Now(),
		Seed:            cfg.Seed,
		Particles:       len(result.Final),
		Colors:          cfg.Colors,
		Preset:          cfg.Preset,
		Matrix:          matrix,
		Width:           cfg.Width,
		Height:          cfg.Height,
		RepulsionRadius: cfg.RepulsionRadius,
		Drag:            cfg.Drag,
		Strategy:        cfg.Strategy,
		Init:            cfg.Init,
		Dt:              cfg.Dt,
		Steps:           cfg.Steps,
		StepsTaken:      result.StepsTaken,
		Coincident:      result.Coincident,
		Metrics:         result.Metrics,
	}
}

// Save writes metadata.json, metrics.csv and particles.csv into a new run
// directory and returns its id.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metricsFile), func(w io.Writer) error {
		return WriteSeriesCSV(w, result)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, particlesFile), func(w io.Writer) error {
		return WriteParticlesCSV(w, result.Final)
	}); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteSeriesCSV writes one row per sample: time followed by each metric
// in registration order.
func WriteSeriesCSV(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, result.Names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{formatFloat(t)}
		for _, name := range result.Names {
			series := result.Series[name]
			if i < len(series) {
				row = append(row, formatFloat(series[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteParticlesCSV writes one row per particle in store order.
func WriteParticlesCSV(out io.Writer, ps []dynamo.Particle) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"index", "color", "x", "y", "vx", "vy"}); err != nil {
		return err
	}
	for i, p := range ps {
		row := []string{
			strconv.Itoa(i),
			strconv.Itoa(p.Color),
			formatFloat(p.Pos.X),
			formatFloat(p.Pos.Y),
			formatFloat(p.Vel.X),
			formatFloat(p.Vel.Y),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the readable runs, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// Series is a metric time series read back from metrics.csv.
type Series struct {
	Names  []string
	Times  []float64
	Values map[string][]float64
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, metricsFile))
	if err != nil {
		return nil, err
	}

	out := &Series{Values: make(map[string][]float64)}
	if len(records) == 0 {
		return out, nil
	}
	out.Names = append(out.Names, records[0][1:]...)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		out.Times = append(out.Times, t)

		for j, name := range out.Names {
			if j+1 >= len(record) {
				break
			}
			val, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				continue
			}
			out.Values[name] = append(out.Values[name], val)
		}
	}

	return out, nil
}

func (s *Store) LoadParticles(runID string) ([]dynamo.Particle, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []dynamo.Particle{}, nil
	}

	ps := make([]dynamo.Particle, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 6 {
			return nil, fmt.Errorf("%s line %d: want 6 fields, got %d", particlesFile, i+2, len(record))
		}
		color, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", particlesFile, i+2, err)
		}
		var vals [4]float64
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(record[j+2], 64); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", particlesFile, i+2, err)
			}
		}
		ps = append(ps, dynamo.Particle{
			Pos:   r2.Vec{X: vals[0], Y: vals[1]},
			Vel:   r2.Vec{X: vals[2], Y: vals[3]},
			Color: color,
		})
	}
	return ps, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
