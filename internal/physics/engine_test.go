package physics

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/forces"
	"github.com/san-kum/plife/internal/particles"
	"gonum.org/v1/gonum/spatial/r2"
)

func newSet(t testing.TB, k int, ps ...dynamo.Particle) *particles.Set {
	t.Helper()
	s, err := particles.New(len(ps)+1, k)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	for _, p := range ps {
		if err := s.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	return s
}

func newEngine(t testing.TB, s *particles.Set, m *forces.Matrix, p Params) *Engine {
	t.Helper()
	e, err := New(s, m, p)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func unitMatrix(t testing.TB, v float64) *forces.Matrix {
	t.Helper()
	m, err := forces.FromRows([][]float64{{v}})
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	return m
}

func frictionless(w, h, radius float64) Params {
	return Params{Width: w, Height: h, RepulsionRadius: radius}
}

func at(x, y float64) dynamo.Particle {
	return dynamo.Particle{Pos: r2.Vec{X: x, Y: y}}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		v, span float64
		want    float64
	}{
		{"far negative", -1605, 800, 795},
		{"one span over", 900, 800, 100},
		{"inside", 400, 800, 400},
		{"zero", 0, 800, 0},
		{"at span", 800, 800, 800},
		{"just below zero", -5, 800, 795},
		{"many spans", 800*100 + 7, 800, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.v, tt.span); got != tt.want {
				t.Errorf("Wrap(%v, %v) = %v, want %v", tt.v, tt.span, got, tt.want)
			}
		})
	}
}

func TestWrap_NonFinite(t *testing.T) {
	if got := Wrap(math.Inf(1), 10); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf passthrough, got %v", got)
	}
	if got := Wrap(math.NaN(), 10); !math.IsNaN(got) {
		t.Errorf("expected NaN passthrough, got %v", got)
	}
}

func TestMinImage(t *testing.T) {
	tests := []struct {
		name    string
		d, span float64
		want    float64
	}{
		{"inside half", 30, 100, 30},
		{"across seam", 98, 100, 2},
		{"negative across seam", -98, 100, 2},
		{"exactly half", 50, 100, 50},
		{"no torus", -7, 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinImage(tt.d, tt.span); got != tt.want {
				t.Errorf("MinImage(%v, %v) = %v, want %v", tt.d, tt.span, got, tt.want)
			}
		})
	}
}

func TestApplyDrag(t *testing.T) {
	tests := []struct {
		name string
		v, k float64
		want float64
	}{
		{"positive decays", 10, 0.1, 9},
		{"positive exact stop", 10, 1, 0},
		{"positive overshoot clamped", 10, 2, 0},
		{"negative decays", -10, 0.1, -9},
		{"negative below delta not zeroed", -0.5, 0.5, -0.25},
		{"negative overshoot not clamped", -10, 3, 20},
		{"no drag positive", 5, 0, 5},
		{"no drag negative", -5, 0, -5},
		{"zero", 0, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyDrag(tt.v, tt.k); got != tt.want {
				t.Errorf("applyDrag(%v, %v) = %v, want %v", tt.v, tt.k, got, tt.want)
			}
		})
	}
}

func TestPairForce_ShortRangeRepulsion(t *testing.T) {
	m, _ := forces.BuildPreset(2, 4)

	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			pa := dynamo.Particle{Pos: r2.Vec{X: 0, Y: 0}, Color: a}
			pb := dynamo.Particle{Pos: r2.Vec{X: 2, Y: 0}, Color: b}

			acc, ok := PairForce(pa, pb, m, 4)
			if !ok {
				t.Fatal("pair at distance 2 reported coincident")
			}
			if acc.X != -0.5 || acc.Y != 0 {
				t.Errorf("colours %d,%d: expected (-0.5, 0), got %+v", a, b, acc)
			}
		}
	}
}

func TestPairForce_MatrixIndexing(t *testing.T) {
	m, _ := forces.FromRows([][]float64{{0, 0.5}, {-0.25, 0}})
	self := dynamo.Particle{Pos: r2.Vec{X: 0, Y: 0}, Color: 0}
	other := dynamo.Particle{Pos: r2.Vec{X: 0, Y: 10}, Color: 1}

	acc, _ := PairForce(self, other, m, 4)
	if acc.X != 0 || acc.Y != 0.5 {
		t.Errorf("expected row=self column=other (0, 0.5), got %+v", acc)
	}

	back, _ := PairForce(other, self, m, 4)
	if back.Y != 0.25 {
		t.Errorf("expected M[1][0] pulling toward -y to push +y by 0.25, got %+v", back)
	}
}

func TestPairForce_Asymmetry(t *testing.T) {
	m, _ := forces.BuildPreset(3, 4)
	i := dynamo.Particle{Pos: r2.Vec{X: 0, Y: 0}, Color: 0}
	j := dynamo.Particle{Pos: r2.Vec{X: 10, Y: 0}, Color: 1}

	fij, _ := PairForce(i, j, m, 4)
	fji, _ := PairForce(j, i, m, 4)

	if fij == r2.Scale(-1, fji) {
		t.Errorf("expected non-reciprocal forces, got f(i,j)=%+v f(j,i)=%+v", fij, fji)
	}
	if fij.X != 0.2 || fji.X != 0.2 {
		t.Errorf("expected both pushed +x by 0.2, got %+v and %+v", fij, fji)
	}
}

func TestPairForce_Coincident(t *testing.T) {
	m := unitMatrix(t, 1)
	acc, ok := PairForce(at(3, 3), at(3, 3), m, 4)
	if ok {
		t.Error("coincident pair must be reported")
	}
	if acc != (r2.Vec{}) {
		t.Errorf("expected zero acceleration, got %+v", acc)
	}
}

func TestStep_ZeroDtIsNoOp(t *testing.T) {
	m, _ := forces.BuildPreset(3, 4)
	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s, err := particles.InitializeRandom(rng, particles.Layout{Count: 60, Colors: 4, Width: 200, Height: 150})
		if err != nil {
			t.Fatalf("init: %v", err)
		}
		ps := s.Particles()
		for i := range ps {
			ps[i].Vel = r2.Vec{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2}
		}
		// include a coincident pair
		ps[1].Pos = ps[0].Pos

		before := s.Snapshot()
		e := newEngine(t, s, m, Params{Width: 200, Height: 150, RepulsionRadius: 8, Drag: 0.7})
		if err := e.Step(0); err != nil {
			t.Fatalf("step: %v", err)
		}
		for i, p := range s.Particles() {
			if p != before[i] {
				t.Fatalf("seed %d particle %d changed: %+v -> %+v", seed, i, before[i], p)
			}
		}
	}
}

func TestStep_RejectsBadTimestep(t *testing.T) {
	e := newEngine(t, newSet(t, 1, at(1, 1)), unitMatrix(t, 1), frictionless(10, 10, 1))
	for _, dt := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		if err := e.Step(dt); !errors.Is(err, dynamo.ErrTimestep) {
			t.Errorf("dt=%v: expected ErrTimestep, got %v", dt, err)
		}
	}
	if got := e.Set().At(0).Pos; got != (r2.Vec{X: 1, Y: 1}) {
		t.Errorf("rejected step moved particle to %+v", got)
	}
}

// Two particles in the attraction range, processed in index order. Particle 1
// is evaluated against particle 0 after particle 0 has already moved.
func TestStep_EndToEnd(t *testing.T) {
	s := newSet(t, 1, at(0, 0), at(10, 0))
	e := newEngine(t, s, unitMatrix(t, 1), frictionless(100, 100, 4))

	if err := e.Step(1); err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	expectParticle(t, "tick 1 p0", s.At(0), r2.Vec{X: 0, Y: 0}, r2.Vec{X: 1, Y: 0})
	expectParticle(t, "tick 1 p1", s.At(1), r2.Vec{X: 10, Y: 0}, r2.Vec{X: -1, Y: 0})

	if err := e.Step(1); err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	// p0 moved to x=1 and sees p1 still at x=10 (dist 9); p1 moves to x=9
	// and sees p0 at its updated x=1 (dist 8).
	expectParticle(t, "tick 2 p0", s.At(0), r2.Vec{X: 1, Y: 0}, r2.Vec{X: 2, Y: 0})
	expectParticle(t, "tick 2 p1", s.At(1), r2.Vec{X: 9, Y: 0}, r2.Vec{X: -2, Y: 0})
}

func TestStep_OrderEffect(t *testing.T) {
	build := func(strategy Strategy) *particles.Set {
		p0 := at(0, 0)
		p0.Vel = r2.Vec{X: 1}
		s := newSet(t, 1, p0, at(3, 0))
		p := frictionless(100, 100, 4)
		p.Strategy = strategy
		e := newEngine(t, s, unitMatrix(t, 0), p)
		if err := e.Step(1); err != nil {
			t.Fatalf("step: %v", err)
		}
		return s
	}

	seq := build(Sequential)
	// p1 sees p0 at its new x=1: dist 2, force 2/4-1 = -0.5
	expectParticle(t, "sequential p0", seq.At(0), r2.Vec{X: 1}, r2.Vec{X: 0.5})
	expectParticle(t, "sequential p1", seq.At(1), r2.Vec{X: 3}, r2.Vec{X: 0.5})

	buf := build(Buffered)
	// p1 sees p0 at its start-of-tick x=0: dist 3, force 3/4-1 = -0.25
	expectParticle(t, "buffered p0", buf.At(0), r2.Vec{X: 1}, r2.Vec{X: 0.5})
	expectParticle(t, "buffered p1", buf.At(1), r2.Vec{X: 3}, r2.Vec{X: 0.25})
}

func TestStep_DragAndWrap(t *testing.T) {
	p := at(99, 50)
	p.Vel = r2.Vec{X: 3, Y: -2}
	s := newSet(t, 1, p)
	e := newEngine(t, s, unitMatrix(t, 1), Params{Width: 100, Height: 100, RepulsionRadius: 4, Drag: 0.25})

	if err := e.Step(1); err != nil {
		t.Fatalf("step: %v", err)
	}
	expectParticle(t, "lone particle", s.At(0), r2.Vec{X: 2, Y: 48}, r2.Vec{X: 2.25, Y: -1.5})
}

func TestStep_CoincidentPairIsSkipped(t *testing.T) {
	s := newSet(t, 1, at(5, 5), at(5, 5))
	e := newEngine(t, s, unitMatrix(t, 1), frictionless(10, 10, 4))

	if err := e.Step(1); err != nil {
		t.Fatalf("step: %v", err)
	}
	for i, p := range s.Particles() {
		if !p.IsValid() {
			t.Fatalf("particle %d became invalid: %+v", i, p)
		}
		if p.Vel != (r2.Vec{}) {
			t.Errorf("particle %d gained velocity %+v from a coincident pair", i, p.Vel)
		}
	}
	if e.Coincident() != 2 {
		t.Errorf("expected 2 skipped ordered pairs, got %d", e.Coincident())
	}
}

func TestNew_Rejects(t *testing.T) {
	s := newSet(t, 2, at(1, 1))
	m2, _ := forces.FromRows([][]float64{{0, 0}, {0, 0}})

	tests := []struct {
		name  string
		m     *forces.Matrix
		p     Params
		field string
	}{
		{"matrix too small", unitMatrix(t, 1), frictionless(10, 10, 1), "colors"},
		{"zero width", m2, frictionless(0, 10, 1), "width"},
		{"infinite height", m2, frictionless(10, math.Inf(1), 1), "height"},
		{"zero radius", m2, frictionless(10, 10, 0), "repulsion_radius"},
		{"negative drag", m2, Params{Width: 10, Height: 10, RepulsionRadius: 1, Drag: -1}, "drag"},
		{"bad strategy", m2, Params{Width: 10, Height: 10, RepulsionRadius: 1, Strategy: 9}, "strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(s, tt.m, tt.p)
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

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]Strategy{"": Sequential, "sequential": Sequential, "Buffered": Buffered} {
		got, err := ParseStrategy(name)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseStrategy("leapfrog"); !errors.Is(err, dynamo.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func expectParticle(t *testing.T, label string, p dynamo.Particle, pos, vel r2.Vec) {
	t.Helper()
	if p.Pos != pos {
		t.Errorf("%s: position %+v, want %+v", label, p.Pos, pos)
	}
	if p.Vel != vel {
		t.Errorf("%s: velocity %+v, want %+v", label, p.Vel, vel)
	}
}

func BenchmarkStep_Sequential500(b *testing.B) {
	benchmarkStep(b, Sequential, 500)
}

func BenchmarkStep_Buffered500(b *testing.B) {
	benchmarkStep(b, Buffered, 500)
}

func benchmarkStep(b *testing.B, strategy Strategy, n int) {
	rng := rand.New(rand.NewSource(1))
	s, _ := particles.InitializeRandom(rng, particles.Layout{Count: n, Colors: 4, Width: 800, Height: 600})
	m, _ := forces.BuildPreset(2, 4)
	p := DefaultParams(800, 600)
	p.Strategy = strategy
	e, _ := New(s, m, p)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Step(0.01)
	}
}
