package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/encsim/internal/controllers"
	"github.com/san-kum/encsim/internal/integrators"
	"github.com/san-kum/encsim/internal/log"
	"github.com/san-kum/encsim/internal/models"
	"github.com/san-kum/encsim/internal/sim"
)

// Aircraft is one vehicle's initial condition, command schedule and
// performance limits.
type Aircraft struct {
	Init     sim.State     `json:"init" msgpack:"init"`
	Commands []sim.Command `json:"commands" msgpack:"commands"`
	Limits   sim.Limits    `json:"limits" msgpack:"limits"`
}

// Encounter is a complete two-aircraft run description. A nil Options
// disables early termination; a nil Constants uses sim.DefaultConstants.
type Encounter struct {
	Name      string               `json:"name" msgpack:"name"`
	Aircraft  [2]Aircraft          `json:"aircraft" msgpack:"aircraft"`
	Duration  float64              `json:"duration" msgpack:"duration"`
	Options   *sim.EncounterConfig `json:"options,omitempty" msgpack:"options,omitempty"`
	Constants *sim.Constants       `json:"constants,omitempty" msgpack:"constants,omitempty"`
}

func (e Encounter) Config() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Duration = e.Duration
	if e.Options != nil {
		cfg.Encounter = *e.Options
	}
	if e.Constants != nil {
		cfg.Constants = *e.Constants
	}
	return cfg
}

type Experiment struct {
	enc       Encounter
	cfg       sim.Config
	input     sim.Input
	simulator *sim.Simulator
}

func New(enc Encounter) *Experiment {
	return &Experiment{enc: enc, cfg: enc.Config()}
}

// Setup builds one stepper per aircraft and the run input. Metrics are
// attached in the order given.
func (e *Experiment) Setup(lg *log.Logger, metrics []sim.Metric) error {
	c := e.cfg.Constants
	if err := c.Validate(); err != nil {
		return err
	}

	var steppers [2]*sim.Stepper
	for k, ac := range e.enc.Aircraft {
		if err := ac.Limits.Validate(); err != nil {
			return fmt.Errorf("aircraft %d: %w", k+1, err)
		}
		sched, err := sim.NewSchedule(ac.Commands)
		if err != nil {
			return fmt.Errorf("aircraft %d: %w", k+1, err)
		}
		e.input.Init[k] = ac.Init
		e.input.Schedule[k] = sched
		steppers[k] = sim.NewStepper(
			models.NewAircraft(ac.Limits),
			integrators.NewEuler(c.Gain),
			controllers.NewAutopilot(ac.Limits, c),
			c.Dt,
		)
	}

	e.simulator = sim.New(steppers[0], steppers[1])
	e.simulator.SetLogger(lg.With("encounter", e.enc.Name))
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.input, e.cfg)
}

// Simulate runs one encounter with the default metrics.
func Simulate(ctx context.Context, enc Encounter) (*sim.Result, error) {
	return SimulateWith(ctx, enc, nil)
}

func SimulateWith(ctx context.Context, enc Encounter, lg *log.Logger) (*sim.Result, error) {
	exp := New(enc)
	if err := exp.Setup(lg, DefaultMetrics(enc.Config().Constants)); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}
