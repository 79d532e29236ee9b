package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/plife/internal/config"
	"github.com/san-kum/plife/internal/experiment"
)

// Axis is one swept parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// Point is one evaluated grid cell.
type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	axes     []Axis
	maximize bool
}

func NewGridSearch(axes []Axis) *GridSearch {
	return &GridSearch{axes: axes}
}

// Maximize makes Search prefer larger metric values.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Search runs one experiment per grid cell and returns the best cell along
// with every evaluated cell in visiting order. A cell that fails to build
// or run aborts the search.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (Point, []Point, error) {
	best := Point{Value: math.Inf(1)}
	if g.maximize {
		best.Value = math.Inf(-1)
	}
	var all []Point

	err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &all)
	return best, all, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *Point,
	all *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		exp, err := buildExperiment(current)
		if err != nil {
			return fmt.Errorf("%v: %w", current, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%v: %w", current, err)
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("metric %q not recorded", metricName)
		}
		p := Point{Params: copyParams(current), Value: val}
		*all = append(*all, p)
		if (g.maximize && val > best.Value) || (!g.maximize && val < best.Value) {
			*best = p
		}
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		newParams := copyParams(current)
		newParams[axis.Name] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, all); err != nil {
			return err
		}
	}
	return nil
}

func copyParams(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Sweepable lists the config fields SetParam understands.
var Sweepable = []string{"drag", "repulsion_radius", "dt", "particles", "width", "height", "matrix_low", "matrix_high"}

// SetParam writes v into the config field called name.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "drag":
		cfg.Drag = v
	case "repulsion_radius":
		cfg.RepulsionRadius = v
	case "dt":
		cfg.Dt = v
	case "particles":
		cfg.Particles = int(v)
	case "width":
		cfg.Width = v
	case "height":
		cfg.Height = v
	case "matrix_low":
		cfg.MatrixRange.Low = v
	case "matrix_high":
		cfg.MatrixRange.High = v
	default:
		return fmt.Errorf("unknown sweep parameter %q (want one of %v)", name, Sweepable)
	}
	return nil
}

// Builder returns a build function for Search that applies each cell's
// parameters on top of a copy of base.
func Builder(reg *experiment.Registry, base *config.Config) func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := SetParam(cfg, name, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return nil, err
		}
		return exp, nil
	}
}
