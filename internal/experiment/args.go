package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/encsim/internal/sim"
)

// Positional argument groups accepted by FromArgs.
const (
	argInit1 = iota
	argCommands1
	argLimits1
	argInit2
	argCommands2
	argLimits2
	argRuntime
	argOptions

	minArgs = argRuntime + 1
)

// FromArgs builds an Encounter from plain numeric groups laid out as
// init1, commands1, limits1, init2, commands2, limits2, runtime and an
// optional options vector. Vectors are passed as single-row matrices.
//
// Initial states hold 8 values, or 9 when the first is a time stamp that
// is ignored. Options, when present, hold exactly 6 values:
// mode (0 none, 1 cylinder, 2 nmac), radius, half-height, latch,
// continuation and minimum simulation time.
func FromArgs(groups ...[][]float64) (Encounter, error) {
	if len(groups) < minArgs {
		return Encounter{}, fmt.Errorf("%w: more input arguments required (got %d, want at least %d)", sim.ErrConfig, len(groups), minArgs)
	}
	if len(groups) > argOptions+1 {
		return Encounter{}, fmt.Errorf("%w: too many input arguments (%d)", sim.ErrConfig, len(groups))
	}

	var enc Encounter
	for k, base := range [2]int{argInit1, argInit2} {
		init, err := initFromVector(flatten(groups[base]))
		if err != nil {
			return Encounter{}, fmt.Errorf("aircraft %d: %w", k+1, err)
		}
		sched, err := sim.ScheduleFromMatrix(groups[base+1])
		if err != nil {
			return Encounter{}, fmt.Errorf("aircraft %d: %w", k+1, err)
		}
		limits, err := sim.LimitsFromVector(flatten(groups[base+2]))
		if err != nil {
			return Encounter{}, fmt.Errorf("aircraft %d: %w", k+1, err)
		}
		enc.Aircraft[k] = Aircraft{Init: init, Commands: sched.Rows, Limits: limits}
	}

	runtime := flatten(groups[argRuntime])
	if len(runtime) != 1 {
		return Encounter{}, fmt.Errorf("%w: runtime must be a scalar, got %d values", sim.ErrConfig, len(runtime))
	}
	if !(runtime[0] > 0) || math.IsInf(runtime[0], 1) {
		return Encounter{}, fmt.Errorf("%w: runtime must be positive and finite, got %g", sim.ErrConfig, runtime[0])
	}
	enc.Duration = runtime[0]

	if len(groups) > argOptions {
		opts, err := sim.EncounterConfigFromVector(flatten(groups[argOptions]))
		if err != nil {
			return Encounter{}, err
		}
		enc.Options = &opts
	}

	return enc, nil
}

func initFromVector(v []float64) (sim.State, error) {
	switch len(v) {
	case sim.StateDim:
		return sim.State(v).Clone(), nil
	case sim.StateDim + 1:
		return sim.State(v[1:]).Clone(), nil
	}
	return nil, fmt.Errorf("%w: initial state needs %d values, got %d", sim.ErrConfig, sim.StateDim, len(v))
}

func flatten(m [][]float64) []float64 {
	var out []float64
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

// Vectors returns a result in the historical output layout: one column
// per channel for each aircraft, and the 3-element stats vector.
func Vectors(r *sim.Result) (tracks [2][][]float64, stats []float64) {
	for k, samples := range r.Aircraft {
		cols := make([][]float64, len(sim.Channels))
		for c := range cols {
			cols[c] = make([]float64, len(samples))
		}
		for i, s := range samples {
			for c, v := range s.Values() {
				cols[c][i] = v
			}
		}
		tracks[k] = cols
	}
	return tracks, r.Stats.Vector()
}
