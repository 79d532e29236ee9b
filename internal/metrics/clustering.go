package metrics

import (
	"math"

	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/physics"
)

// Clustering measures how strongly colours gather. For every particle it
// takes the distance to its nearest neighbour of any colour over the
// distance to its nearest neighbour of the same colour, and averages the
// ratio. 1 means every particle's nearest neighbour shares its colour.
// Distances use the minimum image on a width x height torus.
type Clustering struct {
	width, height float64
	value         float64
}

func NewClustering(width, height float64) *Clustering {
	return &Clustering{width: width, height: height}
}

func (c *Clustering) Name() string { return "clustering" }

func (c *Clustering) Observe(ps []dynamo.Particle, t float64) {
	var sum float64
	var n int
	for i := range ps {
		nearAny, nearSame := math.Inf(1), math.Inf(1)
		for j := range ps {
			if i == j {
				continue
			}
			d := c.dist(ps[i], ps[j])
			if d < nearAny {
				nearAny = d
			}
			if ps[j].Color == ps[i].Color && d < nearSame {
				nearSame = d
			}
		}
		// no neighbours at all: the population is a single particle
		if math.IsInf(nearAny, 1) {
			continue
		}
		n++
		switch {
		case math.IsInf(nearSame, 1):
			// a particle alone in its colour contributes 0
		case nearSame == 0:
			sum++
		default:
			sum += nearAny / nearSame
		}
	}
	if n == 0 {
		c.value = 0
		return
	}
	c.value = sum / float64(n)
}

func (c *Clustering) Value() float64 { return c.value }
func (c *Clustering) Reset()         { c.value = 0 }

func (c *Clustering) dist(a, b dynamo.Particle) float64 {
	dx := physics.MinImage(b.Pos.X-a.Pos.X, c.width)
	dy := physics.MinImage(b.Pos.Y-a.Pos.Y, c.height)
	return math.Hypot(dx, dy)
}

// Default returns the metric set recorded by headless runs.
func Default(width, height float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergy(),
		NewMeanSpeed(),
		NewNetMomentum(),
		NewClustering(width, height),
	}
}
