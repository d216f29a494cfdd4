package sim

// Stepper advances one aircraft by one fixed step. It composes the
// autopilot, the point-mass kinematics and the integrator; each aircraft
// in a run gets its own Stepper.
type Stepper struct {
	dyn        Dynamics
	integrator Integrator
	controller Controller
	dt         float64
}

func NewStepper(dyn Dynamics, integrator Integrator, controller Controller, dt float64) *Stepper {
	return &Stepper{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		dt:         dt,
	}
}

// Step returns the state one dt after x under command cmd. x is not
// modified.
func (s *Stepper) Step(x State, cmd Command, t float64) State {
	u := s.controller.Compute(x, cmd)
	next := s.integrator.Step(s.dyn, x, u, t, s.dt)
	if c, ok := s.dyn.(Constrainer); ok {
		next = c.Constrain(next, u)
	}
	return next
}

func (s *Stepper) Dt() float64 {
	return s.dt
}

func (s *Stepper) Dynamics() Dynamics {
	return s.dyn
}
