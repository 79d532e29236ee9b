package sim

import "github.com/san-kum/plife/internal/dynamo"

// Config controls a headless run. The physics itself is configured on the
// engine.
type Config struct {
	Dt            float64
	Steps         int
	SampleEvery   int // record metrics every n ticks, 0 means every tick
	Seed          int64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.1,
		Steps:         1000,
		SampleEvery:   10,
		ValidateState: true,
	}
}

// Result holds the sampled metric series and the final particle state.
type Result struct {
	Names      []string // metric names in registration order
	Times      []float64
	Series     map[string][]float64
	Metrics    map[string]float64
	Final      []dynamo.Particle
	StepsTaken int
	Coincident int
}
