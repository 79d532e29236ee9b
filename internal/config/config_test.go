package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.RepulsionRadius != physics.DefaultRepulsionRadius {
		t.Errorf("expected repulsion radius %f, got %f", physics.DefaultRepulsionRadius, cfg.RepulsionRadius)
	}
	if cfg.Preset != 0 {
		t.Error("default should draw a random matrix")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("chase")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Preset != 3 || cfg.Colors != 4 {
		t.Errorf("expected matrix preset 3 with 4 colours, got %d/%d", cfg.Preset, cfg.Colors)
	}

	cfg.Particles = 1
	if Presets["chase"].Particles == 1 {
		t.Error("GetPreset returned a shared config")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s invalid: %v", name, err)
			}
			if cfg.Name != name {
				t.Errorf("preset %s carries name %q", name, cfg.Name)
			}
		})
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Name = "roundtrip"
	cfg.Colors = 2
	cfg.Matrix = [][]float64{{0.5, -0.25}, {1, 0}}
	cfg.Strategy = "buffered"
	cfg.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Name != "roundtrip" || loaded.Seed != 42 || loaded.Strategy != "buffered" {
		t.Errorf("scalar fields lost: %+v", loaded)
	}
	if len(loaded.Matrix) != 2 || loaded.Matrix[0][1] != -0.25 || loaded.Matrix[1][0] != 1 {
		t.Errorf("matrix lost: %v", loaded.Matrix)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("particles: 50\nseed: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Particles != 50 || cfg.Seed != 7 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Dt != DefaultDt || cfg.Width != DefaultWidth || cfg.Init != InitUniform {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("particles: [oops\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no particles", func(c *Config) { c.Particles = 0 }, "particles"},
		{"over capacity", func(c *Config) { c.Capacity = 10; c.Particles = 11 }, "particles"},
		{"over default capacity", func(c *Config) { c.Particles = dynamo.DefaultCapacity + 1 }, "particles"},
		{"negative capacity", func(c *Config) { c.Capacity = -1 }, "capacity"},
		{"no colors", func(c *Config) { c.Colors = 0 }, "colors"},
		{"negative preset", func(c *Config) { c.Preset = -1 }, "preset"},
		{"preset and matrix", func(c *Config) { c.Preset = 1; c.Matrix = [][]float64{{0}} }, "matrix"},
		{"short matrix", func(c *Config) { c.Matrix = [][]float64{{0, 0, 0, 0}} }, "matrix"},
		{"ragged matrix", func(c *Config) { c.Colors = 2; c.Matrix = [][]float64{{0, 0}, {0}} }, "matrix"},
		{"inverted range", func(c *Config) { c.MatrixRange = RangeConfig{Low: 1, High: -1} }, "matrix_range"},
		{"nan range", func(c *Config) { c.MatrixRange.Low = math.NaN() }, "matrix_range"},
		{"bad strategy", func(c *Config) { c.Strategy = "parallel" }, "strategy"},
		{"zero width", func(c *Config) { c.Width = 0 }, "width"},
		{"infinite height", func(c *Config) { c.Height = math.Inf(1) }, "height"},
		{"zero radius", func(c *Config) { c.RepulsionRadius = 0 }, "repulsion_radius"},
		{"negative drag", func(c *Config) { c.Drag = -0.1 }, "drag"},
		{"bad init", func(c *Config) { c.Init = "grid" }, "init"},
		{"zero dt", func(c *Config) { c.Dt = 0 }, "dt"},
		{"zero steps", func(c *Config) { c.Steps = 0 }, "steps"},
		{"negative sampling", func(c *Config) { c.SampleEvery = -1 }, "sample_every"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			var ce *dynamo.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ce.Field)
			}
			if !errors.Is(err, dynamo.ErrConfig) {
				t.Error("expected error to unwrap to ErrConfig")
			}
		})
	}
}

func TestParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = "Buffered"

	p, err := cfg.Params()
	if err != nil {
		t.Fatal(err)
	}
	if p.Strategy != physics.Buffered {
		t.Errorf("expected buffered, got %v", p.Strategy)
	}
	if p.Width != cfg.Width || p.Drag != cfg.Drag {
		t.Errorf("params not copied: %+v", p)
	}
}
