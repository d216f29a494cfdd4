package integrators

import "github.com/san-kum/encsim/internal/sim"

// Euler advances x by dt·ẋ·Gain using the rates at the start of the step.
type Euler struct {
	Gain float64
}

func NewEuler(gain float64) *Euler {
	return &Euler{Gain: gain}
}

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t float64, dt float64) sim.State {
	dx := dyn.Derivative(x, u, t)
	result := make(sim.State, len(x))
	for i := range x {
		result[i] = x[i] + dx[i]*dt*e.Gain
	}
	return result
}
