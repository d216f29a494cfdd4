package controllers

import (
	"math"

	"github.com/san-kum/encsim/internal/sim"
)

const (
	// unboundedBank stands in for "no bank limit" when the pitch-rate
	// bound is unreachable at any bank angle. MaxBank still applies.
	unboundedBank = 10000.0

	// bankMargin shrinks the pitch-rate-derived bank bound by 2% to keep
	// the bank command off the boundary.
	bankMargin = 0.98
)

// Autopilot tracks commanded climb rate, heading rate and acceleration.
//
// The roll-rate law has three terms: bank-angle error toward the
// coordinated-turn bank, heading-rate error, and an integral of
// heading-rate error. Only the heading-rate term carries a non-zero gain
// by default. The integral accumulator starts from zero on every call.
type Autopilot struct {
	Limits      sim.Limits
	Dt          float64
	Gravity     float64
	MaxBank     float64
	MaxRollRate float64

	BankGain     float64
	RateGain     float64
	IntegralGain float64
}

func NewAutopilot(limits sim.Limits, c sim.Constants) *Autopilot {
	return &Autopilot{
		Limits:       limits,
		Dt:           c.Dt,
		Gravity:      c.Gravity,
		MaxBank:      c.MaxBank,
		MaxRollRate:  c.MaxRollRate,
		BankGain:     0,
		RateGain:     20,
		IntegralGain: 0.0,
	}
}

func (a *Autopilot) Compute(x sim.State, cmd sim.Command) sim.Control {
	g, dt := a.Gravity, a.Dt
	qmax, rmax := a.Limits.QMax, a.Limits.RMax

	v := x[sim.V]
	vf := sim.SpeedFloor(v)
	phi := x[sim.Phi]

	sTheta, cTheta, tTheta := math.Sin(x[sim.Theta]), math.Cos(x[sim.Theta]), math.Tan(x[sim.Theta])
	sPhi, cPhi := math.Sin(phi), math.Cos(phi)
	cThetaDiv, cPhiDiv := sim.GuardCos(cTheta), sim.GuardCos(cPhi)

	acmd := cmd.Accel
	dpsicmd := cmd.TurnRate
	dhcmd := math.Max(math.Min(a.Limits.ClimbMax, cmd.ClimbRate), a.Limits.ClimbMin)

	hd := v * sTheta
	hddcmd := 1 / dt * (dhcmd - hd)

	q := 1 / (vf * cPhiDiv) * (hddcmd/cThetaDiv + g*cTheta*sPhi*sPhi - acmd*tTheta)
	q = math.Min(math.Max(q, -qmax), qmax)

	r := g * sPhi * cTheta / vf
	r = math.Min(math.Max(r, -rmax), rmax)

	phimax := math.Min(a.MaxBank, a.bankBound(vf, qmax, acmd, hddcmd, sTheta, cTheta, cPhi))

	phiCmd0 := math.Atan(dpsicmd * v / g)
	psidotIfNoChange := (q*sPhi + r*cPhi) / cThetaDiv
	dpsidot := dpsicmd - psidotIfNoChange
	errIntegral := 0 + dpsidot
	p := a.BankGain*(phiCmd0-phi) + a.RateGain*dpsidot + a.IntegralGain*errIntegral

	if p > a.MaxRollRate {
		p = a.MaxRollRate
	}
	if p < -a.MaxRollRate {
		p = -a.MaxRollRate
	}

	// Do not roll past the bank limit within one step.
	if phi+p*dt > phimax {
		p = (phimax - phi) / dt
	}
	if phi+p*dt < -phimax {
		p = (-phimax - phi) / dt
	}

	u := make(sim.Control, sim.ControlDim)
	u[sim.CtrlP] = p
	u[sim.CtrlQ] = q
	u[sim.CtrlR] = r
	u[sim.CtrlAccel] = acmd
	u[sim.CtrlBankLimit] = phimax
	return u
}

// bankBound is the largest bank at which the pitch-rate limit still
// delivers the commanded climb acceleration.
func (a *Autopilot) bankBound(vf, qmax, acmd, hddcmd, sTheta, cTheta, cPhi float64) float64 {
	g := a.Gravity
	hddCmdPhi := math.Min(hddcmd, vf*qmax*cPhi*cTheta)

	disc := math.Pow(vf, 2)*math.Pow(qmax, 2) - 4*g*acmd*sTheta + 4*g*hddCmdPhi + 4*math.Pow(g, 2)*math.Pow(cTheta, 2)
	if disc < 0 {
		return unboundedBank
	}

	cphi := (-vf*qmax + math.Sqrt(disc)) / (2 * g * sim.GuardCos(cTheta))
	if math.Abs(cphi) < 1 {
		return math.Acos(cphi) * bankMargin
	}
	// The demand cannot be met at any bank: hold wings level.
	return 0
}
