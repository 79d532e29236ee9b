package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/plife/internal/config"
	"github.com/san-kum/plife/internal/dynamo"
	"github.com/san-kum/plife/internal/metrics"
	"github.com/san-kum/plife/internal/particles"
)

// Initializer places the first particles of a new set.
type Initializer func(rng *rand.Rand, seed int64, l particles.Layout) (*particles.Set, error)

type Registry struct {
	initializers map[string]Initializer
}

func NewRegistry() *Registry {
	r := &Registry{
		initializers: make(map[string]Initializer),
	}

	r.initializers[config.InitUniform] = func(rng *rand.Rand, _ int64, l particles.Layout) (*particles.Set, error) {
		return particles.InitializeRandom(rng, l)
	}
	r.initializers[config.InitNoise] = particles.InitializeNoise

	return r
}

func (r *Registry) GetInitializer(name string) (Initializer, error) {
	fn, ok := r.initializers[name]
	if !ok {
		return nil, fmt.Errorf("unknown initializer: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListInitializers() []string {
	names := make([]string, 0, len(r.initializers))
	for name := range r.initializers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(cfg *config.Config) []dynamo.Metric {
	return metrics.Default(cfg.Width, cfg.Height)
}
