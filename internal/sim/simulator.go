package sim

import (
	"context"
	"io"
	"log/slog"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/physics"
)

// Simulator drives an engine for a fixed number of ticks, sampling metrics
// and notifying observers after every tick. Cancellation is checked between
// ticks; a tick that has started always completes.
type Simulator struct {
	engine    *physics.Engine
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	log       *slog.Logger
}

func New(engine *physics.Engine) *Simulator {
	return &Simulator{
		engine:    engine,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// SetLogger routes run diagnostics to l. A nil logger restores the silent default.
func (s *Simulator) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.log = l
}

func (s *Simulator) Engine() *physics.Engine { return s.engine }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}

	set := s.engine.Set()
	result := &Result{
		Names:   make([]string, 0, len(s.metrics)),
		Times:   make([]float64, 0, cfg.Steps/every+2),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.Names = append(result.Names, m.Name())
	}

	s.log.Info("run started",
		"particles", set.Len(),
		"colors", set.Colors(),
		"steps", cfg.Steps,
		"dt", cfg.Dt,
		"strategy", s.engine.Params().Strategy.String(),
	)

	t := 0.0
	s.sample(result, t)

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.log.Warn("run canceled", "step", i, "t", t)
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		if err := s.engine.Step(cfg.Dt); err != nil {
			s.finish(result)
			return result, &dynamo.StepError{Step: i, Time: t, Wrapped: err}
		}
		t += cfg.Dt
		result.StepsTaken++

		if c := s.engine.Coincident(); c > 0 {
			result.Coincident += c
			s.log.Debug("coincident pairs skipped", "step", i, "pairs", c)
		}

		ps := set.Particles()
		if cfg.ValidateState && !allValid(ps) {
			s.log.Error("state diverged", "step", i, "t", t)
			s.finish(result)
			return result, &dynamo.StepError{Step: i, Time: t, Wrapped: dynamo.ErrInvalidState}
		}

		for _, obs := range s.observers {
			obs.OnStep(ps, t)
		}
		if (i+1)%every == 0 || i == cfg.Steps-1 {
			s.sample(result, t)
		}
	}

	s.finish(result)
	s.log.Info("run finished", "steps", result.StepsTaken, "coincident", result.Coincident)
	return result, nil
}

func (s *Simulator) sample(r *Result, t float64) {
	ps := s.engine.Set().Particles()
	r.Times = append(r.Times, t)
	for _, m := range s.metrics {
		m.Observe(ps, t)
		r.Series[m.Name()] = append(r.Series[m.Name()], m.Value())
	}
}

func (s *Simulator) finish(r *Result) {
	r.Final = s.engine.Set().Snapshot()
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return dynamo.NewConfigError("dt", cfg.Dt, "must be positive")
	}
	if cfg.Steps <= 0 {
		return dynamo.NewConfigError("steps", cfg.Steps, "must be positive")
	}
	return nil
}

func allValid(ps []dynamo.Particle) bool {
	for _, p := range ps {
		if !p.IsValid() {
			return false
		}
	}
	return true
}
