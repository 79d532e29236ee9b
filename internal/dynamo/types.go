package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultCapacity is the particle capacity used when none is configured.
const DefaultCapacity = 1000

// Particle is a coloured point mass. Color indexes the force matrix.
type Particle struct {
	Pos   r2.Vec
	Vel   r2.Vec
	Color int
}

// IsValid reports whether position and velocity are finite.
func (p Particle) IsValid() bool {
	for _, v := range [4]float64{p.Pos.X, p.Pos.Y, p.Vel.X, p.Vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Speed is the magnitude of the particle's velocity.
func (p Particle) Speed() float64 {
	return r2.Norm(p.Vel)
}

// Clone copies a particle slice so callers can keep a snapshot.
func Clone(ps []Particle) []Particle {
	c := make([]Particle, len(ps))
	copy(c, ps)
	return c
}

type Metric interface {
	Name() string
	Observe(ps []Particle, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(ps []Particle, t float64)
}
