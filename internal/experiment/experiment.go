package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/plife/internal/config"
	"github.com/san-kum/plife/internal/forces"
	"github.com/san-kum/plife/internal/particles"
	"github.com/san-kum/plife/internal/physics"
	"github.com/san-kum/plife/internal/sim"
)

// Experiment turns a config into a ready engine and simulator. The seed
// drives the matrix draw first and the particle layout second, so equal
// configs give identical runs.
type Experiment struct {
	cfg       *config.Config
	engine    *physics.Engine
	simulator *sim.Simulator
	log       *slog.Logger
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg.Clone()}
}

// SetLogger is passed on to the simulator built by Setup.
func (e *Experiment) SetLogger(l *slog.Logger) { e.log = l }

func (e *Experiment) Setup(reg *Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	engine, err := Build(reg, e.cfg)
	if err != nil {
		return err
	}

	e.engine = engine
	e.simulator = sim.New(engine)
	e.simulator.SetLogger(e.log)
	for _, m := range reg.DefaultMetrics(e.cfg) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

// SimConfig is the headless run configuration derived from the config.
func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Steps:         e.cfg.Steps,
		SampleEvery:   e.cfg.SampleEvery,
		Seed:          e.cfg.Seed,
		ValidateState: true,
	}
}

func (e *Experiment) Config() *config.Config       { return e.cfg }
func (e *Experiment) Engine() *physics.Engine      { return e.engine }
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

// Build creates the matrix, the particle set and the engine described by
// cfg. cfg is assumed valid.
func Build(reg *Registry, cfg *config.Config) (*physics.Engine, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	m, err := BuildMatrix(rng, cfg)
	if err != nil {
		return nil, err
	}

	initialize, err := reg.GetInitializer(cfg.Init)
	if err != nil {
		return nil, err
	}
	set, err := initialize(rng, cfg.Seed, particles.Layout{
		Count:    cfg.Particles,
		Colors:   cfg.Colors,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Capacity: cfg.Capacity,
	})
	if err != nil {
		return nil, err
	}

	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	return physics.New(set, m, params)
}

// BuildMatrix picks a preset, the explicit rows, or a random draw, in that
// order.
func BuildMatrix(rng *rand.Rand, cfg *config.Config) (*forces.Matrix, error) {
	switch {
	case cfg.Preset > 0:
		return forces.BuildPreset(cfg.Preset, cfg.Colors)
	case cfg.Matrix != nil:
		return forces.FromRows(cfg.Matrix)
	default:
		return forces.BuildRandom(rng, cfg.Colors, cfg.MatrixRange.Low, cfg.MatrixRange.High)
	}
}

// Factory builds one ensemble member per seed from a shared config.
func Factory(reg *Registry, cfg *config.Config, log *slog.Logger) sim.Factory {
	return func(seed int64) (*sim.Simulator, error) {
		c := cfg.Clone()
		c.Seed = seed
		exp := New(c)
		exp.SetLogger(log)
		if err := exp.Setup(reg); err != nil {
			return nil, err
		}
		return exp.GetSimulator(), nil
	}
}
