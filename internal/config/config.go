package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultParticles   = 800
	DefaultColors      = 4
	DefaultWidth       = 800.0
	DefaultHeight      = 600.0
	DefaultDt          = 0.1
	DefaultSteps       = 1000
	DefaultSampleEvery = 10
	DefaultMatrixLow   = -1.0
	DefaultMatrixHigh  = 1.0
)

const (
	InitUniform = "uniform"
	InitNoise   = "noise"
)

// Config is a complete, serialisable run description. Preset 0 selects a
// random matrix drawn from MatrixRange unless Matrix is given explicitly.
type Config struct {
	Name            string      `yaml:"name,omitempty"`
	Particles       int         `yaml:"particles"`
	Capacity        int         `yaml:"capacity,omitempty"`
	Colors          int         `yaml:"colors"`
	Preset          int         `yaml:"preset,omitempty"`
	Matrix          [][]float64 `yaml:"matrix,omitempty"`
	MatrixRange     RangeConfig `yaml:"matrix_range"`
	Width           float64     `yaml:"width"`
	Height          float64     `yaml:"height"`
	RepulsionRadius float64     `yaml:"repulsion_radius"`
	Drag            float64     `yaml:"drag"`
	Strategy        string      `yaml:"strategy"`
	Init            string      `yaml:"init"`
	Dt              float64     `yaml:"dt"`
	Steps           int         `yaml:"steps"`
	SampleEvery     int         `yaml:"sample_every"`
	Seed            int64       `yaml:"seed"`
}

type RangeConfig struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

func DefaultConfig() *Config {
	return &Config{
		Particles:       DefaultParticles,
		Colors:          DefaultColors,
		MatrixRange:     RangeConfig{Low: DefaultMatrixLow, High: DefaultMatrixHigh},
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		RepulsionRadius: physics.DefaultRepulsionRadius,
		Drag:            physics.DefaultDrag,
		Strategy:        physics.Sequential.String(),
		Init:            InitUniform,
		Dt:              DefaultDt,
		Steps:           DefaultSteps,
		SampleEvery:     DefaultSampleEvery,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	if c.Matrix != nil {
		cp.Matrix = make([][]float64, len(c.Matrix))
		for i, row := range c.Matrix {
			cp.Matrix[i] = append([]float64(nil), row...)
		}
	}
	return &cp
}

// EffectiveCapacity is Capacity, or the library default when unset.
func (c *Config) EffectiveCapacity() int {
	if c.Capacity == 0 {
		return dynamo.DefaultCapacity
	}
	return c.Capacity
}

// Params converts the physical settings for the engine.
func (c *Config) Params() (physics.Params, error) {
	strategy, err := physics.ParseStrategy(c.Strategy)
	if err != nil {
		return physics.Params{}, err
	}
	return physics.Params{
		Width:           c.Width,
		Height:          c.Height,
		RepulsionRadius: c.RepulsionRadius,
		Drag:            c.Drag,
		Strategy:        strategy,
	}, nil
}

// Validate reports the first invalid field as a *dynamo.ConfigError.
// Preset availability for the colour count is checked when the matrix is
// built.
func (c *Config) Validate() error {
	switch {
	case c.Particles <= 0:
		return dynamo.NewConfigError("particles", c.Particles, "must be positive")
	case c.Capacity < 0:
		return dynamo.NewConfigError("capacity", c.Capacity, "must not be negative")
	case c.Particles > c.EffectiveCapacity():
		return dynamo.NewConfigError("particles", c.Particles, fmt.Sprintf("exceeds capacity %d", c.EffectiveCapacity()))
	case c.Colors <= 0:
		return dynamo.NewConfigError("colors", c.Colors, "must be positive")
	case c.Preset < 0:
		return dynamo.NewConfigError("preset", c.Preset, "must not be negative")
	case c.Preset > 0 && c.Matrix != nil:
		return dynamo.NewConfigError("matrix", "explicit", "cannot be combined with a preset")
	}

	if c.Matrix != nil {
		if len(c.Matrix) != c.Colors {
			return dynamo.NewConfigError("matrix", len(c.Matrix), fmt.Sprintf("want %d rows", c.Colors))
		}
		for i, row := range c.Matrix {
			if len(row) != c.Colors {
				return dynamo.NewConfigError("matrix", len(row), fmt.Sprintf("row %d: want %d columns", i, c.Colors))
			}
		}
	}
	if !finite(c.MatrixRange.Low) || !finite(c.MatrixRange.High) || c.MatrixRange.Low > c.MatrixRange.High {
		return dynamo.NewConfigError("matrix_range", c.MatrixRange, "low must not exceed high")
	}

	if _, err := c.Params(); err != nil {
		return err
	}
	switch {
	case !(c.Width > 0) || !finite(c.Width):
		return dynamo.NewConfigError("width", c.Width, "must be positive and finite")
	case !(c.Height > 0) || !finite(c.Height):
		return dynamo.NewConfigError("height", c.Height, "must be positive and finite")
	case !(c.RepulsionRadius > 0) || !finite(c.RepulsionRadius):
		return dynamo.NewConfigError("repulsion_radius", c.RepulsionRadius, "must be positive and finite")
	case !(c.Drag >= 0) || !finite(c.Drag):
		return dynamo.NewConfigError("drag", c.Drag, "must be non-negative and finite")
	case c.Init != InitUniform && c.Init != InitNoise:
		return dynamo.NewConfigError("init", c.Init, "want uniform or noise")
	case !(c.Dt > 0) || !finite(c.Dt):
		return dynamo.NewConfigError("dt", c.Dt, "must be positive and finite")
	case c.Steps <= 0:
		return dynamo.NewConfigError("steps", c.Steps, "must be positive")
	case c.SampleEvery < 0:
		return dynamo.NewConfigError("sample_every", c.SampleEvery, "must not be negative")
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
