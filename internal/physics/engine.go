package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/forces"
	"github.com/san-kum/plife/internal/particles"
	"gonum.org/v1/gonum/spatial/r2"
)

// Strategy selects how a tick reads the other particles while it writes.
type Strategy int

const (
	// Sequential updates the set in place in index order. Particle i sees
	// j < i already advanced this tick and j > i still at last tick's state.
	Sequential Strategy = iota

	// Buffered reads every other particle from a copy taken at the start of
	// the tick, so the result does not depend on index order.
	Buffered
)

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Buffered:
		return "buffered"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy accepts "sequential" or "buffered".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "sequential":
		return Sequential, nil
	case "buffered":
		return Buffered, nil
	}
	return 0, dynamo.NewConfigError("strategy", name, "want sequential or buffered")
}

const (
	DefaultRepulsionRadius = 5.0
	DefaultDrag            = 0.1
)

// Params is the immutable physical configuration of an engine.
type Params struct {
	Width, Height   float64
	RepulsionRadius float64
	Drag            float64
	Strategy        Strategy
}

func DefaultParams(width, height float64) Params {
	return Params{
		Width:           width,
		Height:          height,
		RepulsionRadius: DefaultRepulsionRadius,
		Drag:            DefaultDrag,
		Strategy:        Sequential,
	}
}

func (p Params) validate() error {
	if !(p.Width > 0) || math.IsInf(p.Width, 0) {
		return dynamo.NewConfigError("width", p.Width, "must be positive and finite")
	}
	if !(p.Height > 0) || math.IsInf(p.Height, 0) {
		return dynamo.NewConfigError("height", p.Height, "must be positive and finite")
	}
	if !(p.RepulsionRadius > 0) || math.IsInf(p.RepulsionRadius, 0) {
		return dynamo.NewConfigError("repulsion_radius", p.RepulsionRadius, "must be positive and finite")
	}
	if !(p.Drag >= 0) || math.IsInf(p.Drag, 0) {
		return dynamo.NewConfigError("drag", p.Drag, "must be non-negative and finite")
	}
	if p.Strategy != Sequential && p.Strategy != Buffered {
		return dynamo.NewConfigError("strategy", p.Strategy, "unknown strategy")
	}
	return nil
}

// Engine advances one particle set under one force matrix. It is the sole
// writer of the set.
type Engine struct {
	set        *particles.Set
	matrix     *forces.Matrix
	params     Params
	snapshot   []dynamo.Particle
	coincident int
}

// New checks that the matrix covers every colour the set can hold, which
// rules out out-of-range colour lookups for the engine's lifetime.
func New(set *particles.Set, m *forces.Matrix, p Params) (*Engine, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if m.Size() != set.Colors() {
		return nil, dynamo.NewConfigError("colors", set.Colors(), fmt.Sprintf("matrix is %dx%d", m.Size(), m.Size()))
	}
	return &Engine{set: set, matrix: m, params: p}, nil
}

func (e *Engine) Set() *particles.Set    { return e.set }
func (e *Engine) Matrix() *forces.Matrix { return e.matrix }
func (e *Engine) Params() Params         { return e.params }

// Coincident returns how many ordered pairs were skipped during the last
// Step because the two particles shared a position.
func (e *Engine) Coincident() int { return e.coincident }

// Step advances every active particle by dt. For each i in order it moves
// the particle with last tick's velocity, applies drag, wraps it onto the
// torus and then accumulates the pairwise forces into its velocity.
func (e *Engine) Step(dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt=%v", dynamo.ErrTimestep, dt)
	}
	e.coincident = 0
	if dt == 0 {
		return nil
	}

	ps := e.set.Particles()
	others := ps
	if e.params.Strategy == Buffered {
		e.snapshot = append(e.snapshot[:0], ps...)
		others = e.snapshot
	}

	k := e.params.Drag * dt
	for i := range ps {
		p := &ps[i]

		p.Pos = r2.Add(p.Pos, r2.Scale(dt, p.Vel))

		p.Vel.X = applyDrag(p.Vel.X, k)
		p.Vel.Y = applyDrag(p.Vel.Y, k)

		p.Pos.X = Wrap(p.Pos.X, e.params.Width)
		p.Pos.Y = Wrap(p.Pos.Y, e.params.Height)

		for j := range others {
			if j == i {
				continue
			}
			a, ok := PairForce(*p, others[j], e.matrix, e.params.RepulsionRadius)
			if !ok {
				e.coincident++
				continue
			}
			p.Vel.X += a.X * dt
			p.Vel.Y += a.Y * dt
		}
	}
	return nil
}

// PairForce returns the acceleration a receives from b. Inside radius the
// universal repulsion dist/radius - 1 replaces the matrix entry
// M[a.Color][b.Color]. ok is false for coincident particles, whose direction
// is undefined; the caller skips such pairs.
func PairForce(a, b dynamo.Particle, m *forces.Matrix, radius float64) (acc r2.Vec, ok bool) {
	dx := b.Pos.X - a.Pos.X
	dy := b.Pos.Y - a.Pos.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist == 0 {
		return r2.Vec{}, false
	}

	var f float64
	if dist < radius {
		f = dist/radius - 1
	} else {
		f = m.At(a.Color, b.Color)
	}
	return r2.Vec{X: f * dx / dist, Y: f * dy / dist}, true
}

// applyDrag reduces v by v*k. A positive component that would overshoot
// zero is clamped to zero; negative components are not clamped. The plain
// "v < delta means stop" test would also zero every negative v when
// 0 < k < 1 (-10 with k=0.1 gives 0, not -9); that reading is not used.
func applyDrag(v, k float64) float64 {
	delta := v * k
	if v > 0 && v < delta {
		return 0
	}
	return v - delta
}
