package optim

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/encsim/internal/config"
	"github.com/san-kum/encsim/internal/experiment"
	"github.com/san-kum/encsim/internal/sim"
)

// Point is one evaluated parameter combination.
type Point struct {
	Params map[string]float64
	Value  float64
	Stats  sim.Stats
}

// GridSearch evaluates every combination of parameter values. Parameter
// names are config paths as accepted by config.Config.Set.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Points returns the cartesian product of the parameter ranges, with the
// last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.pointsRecursive(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) pointsRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.pointsRecursive(depth+1, current, out)
	}
	delete(current, paramName)
}

// Search runs one encounter per grid point derived from base and returns
// the best point by metric along with every evaluated point in grid
// order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string, batch *experiment.Batch) (*Point, []Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, fmt.Errorf("%w: %d parameters but %d ranges", sim.ErrConfig, len(g.paramNames), len(g.ranges))
	}

	points := g.Points()
	encs := make([]experiment.Encounter, len(points))
	for i, p := range points {
		cfg := base.Clone()
		for _, name := range g.paramNames {
			if err := cfg.Set(name, p[name]); err != nil {
				return nil, nil, err
			}
		}
		cfg.Name = fmt.Sprintf("%s_%d", base.Name, i)
		enc, err := cfg.ToEncounter()
		if err != nil {
			return nil, nil, fmt.Errorf("point %d: %w", i, err)
		}
		encs[i] = enc
	}

	results, err := batch.Run(ctx, encs)
	if err != nil {
		return nil, nil, err
	}

	evaluated := make([]Point, len(points))
	var best *Point
	for i, res := range results {
		val, err := MetricValue(res, metric)
		if err != nil {
			return nil, nil, err
		}
		evaluated[i] = Point{Params: points[i], Value: val, Stats: res.Stats}
		if best == nil || g.better(val, best.Value) {
			best = &evaluated[i]
		}
	}

	return best, evaluated, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if g.Maximize {
		return a > b
	}
	return a < b
}

// MetricValue looks up a named metric, or one of the run statistics
// stop_time, nmac and outside_cylinder.
func MetricValue(res *sim.Result, name string) (float64, error) {
	if v, ok := res.Metrics[name]; ok {
		return v, nil
	}
	stats := res.Stats.Vector()
	switch name {
	case "stop_time":
		return stats[0], nil
	case "nmac":
		return stats[1], nil
	case "outside_cylinder":
		return stats[2], nil
	}
	return math.NaN(), fmt.Errorf("unknown metric: %s", name)
}

// ParseRange reads "start:stop:step" (inclusive) or a comma separated
// list of values.
func ParseRange(s string) ([]float64, error) {
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("range %q: want start:stop:step", s)
		}
		var v [3]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("range %q: %w", s, err)
			}
			v[i] = f
		}
		start, stop, step := v[0], v[1], v[2]
		if step <= 0 || stop < start {
			return nil, fmt.Errorf("range %q: step must be positive and stop >= start", s)
		}
		n := int(math.Floor((stop-start)/step+1e-9)) + 1
		out := make([]float64, n)
		for i := range out {
			out[i] = start + float64(i)*step
		}
		return out, nil
	}

	var out []float64
	for _, p := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		out = append(out, f)
	}
	return out, nil
}
