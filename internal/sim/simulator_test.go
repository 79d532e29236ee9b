package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/forces"
	"github.com/san-kum/plife/internal/particles"
	"github.com/san-kum/plife/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func driftingEngine(t *testing.T, ps ...dynamo.Particle) *physics.Engine {
	t.Helper()
	set, err := particles.New(len(ps), 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range ps {
		if err := set.Add(p); err != nil {
			t.Fatal(err)
		}
	}
	m, err := forces.FromRows([][]float64{{0}})
	if err != nil {
		t.Fatal(err)
	}
	e, err := physics.New(set, m, physics.Params{Width: 100, Height: 100, RepulsionRadius: 1})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestSimulatorRun(t *testing.T) {
	e := driftingEngine(t, dynamo.Particle{Pos: r2.Vec{X: 5, Y: 5}, Vel: r2.Vec{X: 1}})
	sim := New(e)

	result, err := sim.Run(context.Background(), Config{Dt: 1, Steps: 10, SampleEvery: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Times))
	}
	if len(result.Final) != 1 {
		t.Fatalf("expected 1 final particle, got %d", len(result.Final))
	}
	if got := result.Final[0].Pos; got != (r2.Vec{X: 15, Y: 5}) {
		t.Errorf("expected final position (15,5), got %v", got)
	}

	// Final is a copy
	result.Final[0].Pos.X = -1
	if e.Set().At(0).Pos.X != 15 {
		t.Error("result aliases the particle set")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(driftingEngine(t, dynamo.Particle{}))

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero dt", Config{Dt: 0, Steps: 10}, "dt"},
		{"negative dt", Config{Dt: -0.1, Steps: 10}, "dt"},
		{"nan dt", Config{Dt: math.NaN(), Steps: 10}, "dt"},
		{"zero steps", Config{Dt: 0.1, Steps: 0}, "steps"},
		{"negative steps", Config{Dt: 0.1, Steps: -1}, "steps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			var ce *dynamo.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ce.Field)
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(ps []dynamo.Particle, time float64) {
	t.count++
	t.sum += ps[0].Pos.X
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type countingObserver struct{ calls int }

func (c *countingObserver) OnStep(ps []dynamo.Particle, t float64) { c.calls++ }

func TestSimulatorMetrics(t *testing.T) {
	sim := New(driftingEngine(t, dynamo.Particle{Pos: r2.Vec{X: 5, Y: 5}, Vel: r2.Vec{X: 1}}))

	metric := &testMetric{}
	obs := &countingObserver{}
	sim.AddMetric(metric)
	sim.AddObserver(obs)

	result, err := sim.Run(context.Background(), Config{Dt: 1, Steps: 10, SampleEvery: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	// t=0, t=5, t=10
	if metric.count != 3 {
		t.Errorf("expected 3 observations, got %d", metric.count)
	}
	// running mean of x = 5, 10, 15
	if got := result.Series["test"]; len(got) != 3 || got[0] != 5 || got[1] != 7.5 || got[2] != 10 {
		t.Errorf("unexpected series %v", got)
	}
	if obs.calls != 10 {
		t.Errorf("expected 10 observer calls, got %d", obs.calls)
	}
	if len(result.Names) != 1 || result.Names[0] != "test" {
		t.Errorf("unexpected names %v", result.Names)
	}
}

func TestSimulatorLastTickAlwaysSampled(t *testing.T) {
	sim := New(driftingEngine(t, dynamo.Particle{Vel: r2.Vec{X: 1}}))
	sim.AddMetric(&testMetric{})

	result, err := sim.Run(context.Background(), Config{Dt: 1, Steps: 7, SampleEvery: 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 5, 7}
	if len(result.Times) != len(want) {
		t.Fatalf("expected times %v, got %v", want, result.Times)
	}
	for i := range want {
		if result.Times[i] != want[i] {
			t.Errorf("times[%d] = %v, want %v", i, result.Times[i], want[i])
		}
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(driftingEngine(t, dynamo.Particle{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{Dt: 1, Steps: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
	if len(result.Final) != 1 {
		t.Error("expected final state on cancellation")
	}
}

func TestSimulatorInvalidState(t *testing.T) {
	sim := New(driftingEngine(t, dynamo.Particle{Vel: r2.Vec{X: math.NaN()}}))

	_, err := sim.Run(context.Background(), Config{Dt: 1, Steps: 3, ValidateState: true})
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var se *dynamo.StepError
	if !errors.As(err, &se) || se.Step != 0 {
		t.Errorf("expected failure on step 0, got %v", err)
	}
}

func TestSimulatorCountsCoincidentPairs(t *testing.T) {
	p := dynamo.Particle{Pos: r2.Vec{X: 20, Y: 20}}
	sim := New(driftingEngine(t, p, p))

	result, err := sim.Run(context.Background(), Config{Dt: 0.5, Steps: 4})
	if err != nil {
		t.Fatal(err)
	}
	if result.Coincident != 8 {
		t.Errorf("expected 8 skipped pairs, got %d", result.Coincident)
	}
}

func TestEnsemble(t *testing.T) {
	factory := func(seed int64) (*Simulator, error) {
		rng := rand.New(rand.NewSource(seed))
		m, err := forces.BuildRandom(rng, 3, -1, 1)
		if err != nil {
			return nil, err
		}
		set, err := particles.InitializeRandom(rng, particles.Layout{Count: 40, Colors: 3, Width: 200, Height: 200})
		if err != nil {
			return nil, err
		}
		e, err := physics.New(set, m, physics.DefaultParams(200, 200))
		if err != nil {
			return nil, err
		}
		return New(e), nil
	}

	results, err := NewEnsemble(factory, 4, 100).Run(context.Background(), Config{Dt: 0.1, Steps: 20})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 20 || len(r.Final) != 40 {
			t.Errorf("run %d: steps=%d particles=%d", i, r.StepsTaken, len(r.Final))
		}
	}
}

func TestEnsembleFactoryError(t *testing.T) {
	boom := errors.New("boom")
	factory := func(seed int64) (*Simulator, error) { return nil, boom }

	_, err := NewEnsemble(factory, 2, 0).Run(context.Background(), Config{Dt: 0.1, Steps: 1})
	if !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}

func BenchmarkSimulatorRun(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	m, _ := forces.BuildPreset(3, 4)
	for i := 0; i < b.N; i++ {
		set, _ := particles.InitializeRandom(rng, particles.Layout{Count: 200, Colors: 4, Width: 400, Height: 400})
		e, _ := physics.New(set, m, physics.DefaultParams(400, 400))
		_, _ = New(e).Run(context.Background(), Config{Dt: 0.1, Steps: 10})
	}
}
