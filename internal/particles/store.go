package particles

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/plife/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Set is a fixed-capacity, ordered particle store. Only the first Len()
// slots are active; every active particle has a colour in [0, Colors()).
type Set struct {
	colors int
	items  []dynamo.Particle
}

// Layout describes an initial configuration.
type Layout struct {
	Count    int
	Colors   int
	Width    float64
	Height   float64
	Capacity int // zero means dynamo.DefaultCapacity
}

// New returns an empty set able to hold capacity particles of k colours.
func New(capacity, k int) (*Set, error) {
	if capacity <= 0 {
		return nil, dynamo.NewConfigError("capacity", capacity, "must be positive")
	}
	if k <= 0 {
		return nil, dynamo.NewConfigError("colors", k, "must be positive")
	}
	return &Set{colors: k, items: make([]dynamo.Particle, 0, capacity)}, nil
}

// Add appends p to the active range.
func (s *Set) Add(p dynamo.Particle) error {
	if p.Color < 0 || p.Color >= s.colors {
		return fmt.Errorf("%w: colour %d, want [0,%d)", dynamo.ErrColorIndex, p.Color, s.colors)
	}
	if len(s.items) == cap(s.items) {
		return dynamo.NewConfigError("count", len(s.items)+1, fmt.Sprintf("exceeds capacity %d", cap(s.items)))
	}
	s.items = append(s.items, p)
	return nil
}

// Particles returns the active particles. The slice aliases the store; the
// engine mutates it in place and renderers read it between ticks.
func (s *Set) Particles() []dynamo.Particle { return s.items }

func (s *Set) Len() int                 { return len(s.items) }
func (s *Set) Cap() int                 { return cap(s.items) }
func (s *Set) Colors() int              { return s.colors }
func (s *Set) At(i int) dynamo.Particle { return s.items[i] }

// Snapshot copies the active particles.
func (s *Set) Snapshot() []dynamo.Particle { return dynamo.Clone(s.items) }

// CountByColor returns the number of active particles per colour.
func (s *Set) CountByColor() []int {
	counts := make([]int, s.colors)
	for _, p := range s.items {
		counts[p.Color]++
	}
	return counts
}

// InitializeRandom places l.Count particles uniformly in [0,W)x[0,H) at rest
// with uniformly drawn colours.
func InitializeRandom(rng *rand.Rand, l Layout) (*Set, error) {
	s, err := l.newSet()
	if err != nil {
		return nil, err
	}
	for i := 0; i < l.Count; i++ {
		s.items = append(s.items, dynamo.Particle{
			Pos:   r2.Vec{X: rng.Float64() * l.Width, Y: rng.Float64() * l.Height},
			Color: rng.Intn(l.Colors),
		})
	}
	return s, nil
}

func (l Layout) newSet() (*Set, error) {
	if l.Capacity == 0 {
		l.Capacity = dynamo.DefaultCapacity
	}
	if l.Count <= 0 {
		return nil, dynamo.NewConfigError("count", l.Count, "must be positive")
	}
	if l.Count > l.Capacity {
		return nil, dynamo.NewConfigError("count", l.Count, fmt.Sprintf("exceeds capacity %d", l.Capacity))
	}
	if !positive(l.Width) {
		return nil, dynamo.NewConfigError("width", l.Width, "must be positive and finite")
	}
	if !positive(l.Height) {
		return nil, dynamo.NewConfigError("height", l.Height, "must be positive and finite")
	}
	return New(l.Capacity, l.Colors)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
