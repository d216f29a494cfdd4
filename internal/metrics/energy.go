package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/encsim/internal/models"
	"github.com/san-kum/encsim/internal/sim"
)

// EnergyDrift is the largest change in energy height (h + v²/2g) of one
// aircraft relative to its initial value, in feet.
type EnergyDrift struct {
	name     string
	aircraft int
	gravity  float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(aircraft int, gravity float64) *EnergyDrift {
	return &EnergyDrift{
		name:     fmt.Sprintf("energy_drift_ac%d", aircraft+1),
		aircraft: aircraft,
		gravity:  gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t float64, own, intruder sim.State) {
	x := pick(e.aircraft, own, intruder)
	energy := models.EnergyHeight(x, e.gravity)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++
	e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e.initial))
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

func pick(aircraft int, own, intruder sim.State) sim.State {
	if aircraft == 0 {
		return own
	}
	return intruder
}
