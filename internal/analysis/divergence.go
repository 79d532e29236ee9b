package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/plife/internal/physics"
	"gonum.org/v1/gonum/stat"
)

// Divergence steps a and b in lockstep and records, after every tick, the
// RMS separation of corresponding particles measured on a's torus. The two
// engines must hold the same number of particles.
func Divergence(a, b *physics.Engine, dt float64, steps int) ([]float64, error) {
	if a.Set().Len() != b.Set().Len() {
		return nil, fmt.Errorf("engines hold %d and %d particles", a.Set().Len(), b.Set().Len())
	}

	p := a.Params()
	seps := make([]float64, 0, steps)
	for i := 0; i < steps; i++ {
		if err := a.Step(dt); err != nil {
			return seps, err
		}
		if err := b.Step(dt); err != nil {
			return seps, err
		}
		seps = append(seps, rmsSeparation(a, b, p.Width, p.Height))
	}
	return seps, nil
}

func rmsSeparation(a, b *physics.Engine, w, h float64) float64 {
	pa, pb := a.Set().Particles(), b.Set().Particles()
	if len(pa) == 0 {
		return 0
	}
	var sum float64
	for i := range pa {
		dx := physics.MinImage(pb[i].Pos.X-pa[i].Pos.X, w)
		dy := physics.MinImage(pb[i].Pos.Y-pa[i].Pos.Y, h)
		sum += dx*dx + dy*dy
	}
	return math.Sqrt(sum / float64(len(pa)))
}

// GrowthRate fits ln(sep) = c + lambda*t over the positive separations and
// returns lambda. A positive rate means nearby initial layouts drift apart
// exponentially before saturating at the world size.
func GrowthRate(seps []float64, dt float64) float64 {
	xs := make([]float64, 0, len(seps))
	ys := make([]float64, 0, len(seps))
	for i, s := range seps {
		if s > 0 {
			xs = append(xs, float64(i+1)*dt)
			ys = append(ys, math.Log(s))
		}
	}
	if len(xs) < 2 {
		return 0
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}
