package models

import (
	"math"

	"github.com/san-kum/encsim/internal/sim"
)

// speedEpsilon keeps the speed strictly below v_max.
const speedEpsilon = 0.000001

// Aircraft is a point-mass kinematic model driven by body rates.
type Aircraft struct {
	Limits sim.Limits
}

func NewAircraft(limits sim.Limits) *Aircraft {
	return &Aircraft{Limits: limits}
}

func (a *Aircraft) StateDim() int   { return sim.StateDim }
func (a *Aircraft) ControlDim() int { return sim.ControlDim }

func (a *Aircraft) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	v := x[sim.V]
	sTheta, cTheta, tTheta := math.Sin(x[sim.Theta]), math.Cos(x[sim.Theta]), math.Tan(x[sim.Theta])
	sPhi, cPhi := math.Sin(x[sim.Phi]), math.Cos(x[sim.Phi])
	sPsi, cPsi := math.Sin(x[sim.Psi]), math.Cos(x[sim.Psi])
	cThetaDiv := sim.GuardCos(cTheta)

	p, q, r := u[sim.CtrlP], u[sim.CtrlQ], u[sim.CtrlR]

	dx := make(sim.State, sim.StateDim)
	dx[sim.V] = u[sim.CtrlAccel]
	dx[sim.N] = v * cTheta * cPsi
	dx[sim.E] = v * cTheta * sPsi
	dx[sim.H] = v * sTheta
	dx[sim.Psi] = q*sPhi/cThetaDiv + r*cPhi/cThetaDiv
	dx[sim.Theta] = q*cPhi - r*sPhi
	dx[sim.Phi] = p + q*sPhi*tTheta + r*cPhi*tTheta
	return dx
}

// Constrain holds speed in [v_min, v_max) and bank within the limit the
// autopilot computed for this step.
func (a *Aircraft) Constrain(x sim.State, u sim.Control) sim.State {
	if x[sim.V] < a.Limits.VMin {
		x[sim.V] = a.Limits.VMin
	}
	if x[sim.V] >= a.Limits.VMax {
		x[sim.V] = a.Limits.VMax - speedEpsilon
	}

	if len(u) > sim.CtrlBankLimit {
		lim := u[sim.CtrlBankLimit]
		if x[sim.Phi] > lim {
			x[sim.Phi] = lim
		}
		if x[sim.Phi] < -lim {
			x[sim.Phi] = -lim
		}
	}
	return x
}

func (a *Aircraft) Admit(x sim.State, maxBank float64) error {
	return a.Limits.Admit(x, maxBank)
}

// EnergyHeight is altitude plus kinetic energy per unit weight, in feet.
func EnergyHeight(x sim.State, gravity float64) float64 {
	return x[sim.H] + x[sim.V]*x[sim.V]/(2*gravity)
}

// TurnRate is the heading rate of a coordinated level turn at bank phi.
func TurnRate(v, phi, gravity float64) float64 {
	return gravity * math.Tan(phi) / sim.SpeedFloor(v)
}
