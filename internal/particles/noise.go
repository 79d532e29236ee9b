package particles

import (
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/san-kum/plife/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	noiseAlpha    = 2.0
	noiseBeta     = 2.0
	noiseOctaves  = 3
	noiseScale    = 120.0 // world units per noise period
	noiseAttempts = 32
)

// InitializeNoise is InitializeRandom with positions rejection-sampled
// against a Perlin field, so particles start in loose clumps instead of a
// uniform haze. Velocities are zero and colours uniform.
func InitializeNoise(rng *rand.Rand, seed int64, l Layout) (*Set, error) {
	s, err := l.newSet()
	if err != nil {
		return nil, err
	}
	field := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)

	for i := 0; i < l.Count; i++ {
		var pos r2.Vec
		for try := 0; try < noiseAttempts; try++ {
			pos = r2.Vec{X: rng.Float64() * l.Width, Y: rng.Float64() * l.Height}
			density := (field.Noise2D(pos.X/noiseScale, pos.Y/noiseScale) + 1) / 2
			if rng.Float64() < density*density {
				break
			}
		}
		s.items = append(s.items, dynamo.Particle{Pos: pos, Color: rng.Intn(l.Colors)})
	}
	return s, nil
}
