package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/encsim/internal/metrics"
	"github.com/san-kum/encsim/internal/sim"
)

// Registry maps metric names to constructors so callers can select the
// metrics attached to a run.
type Registry struct {
	metrics map[string]func(sim.Constants) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(sim.Constants) sim.Metric),
	}

	r.metrics["hmd"] = func(sim.Constants) sim.Metric { return metrics.NewHMD() }
	r.metrics["vmd"] = func(sim.Constants) sim.Metric { return metrics.NewVMD() }
	r.metrics["cpa_time"] = func(sim.Constants) sim.Metric { return metrics.NewClosestApproach() }
	r.metrics["time_in_nmac"] = func(c sim.Constants) sim.Metric { return metrics.NewTimeInNMAC(c.Dt) }
	for k := 0; k < 2; k++ {
		r.metrics[fmt.Sprintf("energy_drift_ac%d", k+1)] = func(c sim.Constants) sim.Metric { return metrics.NewEnergyDrift(k, c.Gravity) }
		r.metrics[fmt.Sprintf("bank_effort_ac%d", k+1)] = func(sim.Constants) sim.Metric { return metrics.NewBankEffort(k) }
	}

	return r
}

func (r *Registry) GetMetric(name string, c sim.Constants) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(c), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh instance of every registered metric.
func DefaultMetrics(c sim.Constants) []sim.Metric {
	r := NewRegistry()
	names := r.ListMetrics()
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, _ := r.GetMetric(name, c)
		out = append(out, m)
	}
	return out
}
