package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/encsim/internal/log"
)

// Input holds the per-aircraft initial states and command schedules.
type Input struct {
	Init     [2]State
	Schedule [2]*Schedule
}

// Simulator steps two aircraft in lockstep and decides when to stop.
type Simulator struct {
	steppers [2]*Stepper
	metrics  []Metric
	lg       *log.Logger
}

func New(own, intruder *Stepper) *Simulator {
	return &Simulator{
		steppers: [2]*Stepper{own, intruder},
		metrics:  make([]Metric, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)       { s.metrics = append(s.metrics, m) }
func (s *Simulator) SetLogger(lg *log.Logger) { s.lg = lg }
func (s *Simulator) Stepper(k int) *Stepper   { return s.steppers[k] }
func (s *Simulator) Metrics() []Metric        { return s.metrics }

// Run executes one encounter. The inputs are not modified, so repeated
// runs with the same inputs produce identical results.
func (s *Simulator) Run(ctx context.Context, in Input, cfg Config) (*Result, error) {
	if err := s.validate(in, cfg); err != nil {
		return nil, err
	}

	dt := cfg.Constants.Dt
	ticks := cfg.Ticks()
	tol := cfg.Encounter.CommandTolerance

	var (
		x     [2]State
		sched [2]Schedule
	)
	for k := range x {
		x[k] = in.Init[k].Clone()
		sched[k] = Schedule{Rows: in.Schedule[k].Rows}
	}

	result := &Result{Metrics: make(map[string]float64)}
	for k := range result.Aircraft {
		result.Aircraft[k] = make([]Sample, 0, ticks)
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	lg := s.lg.With("duration", cfg.Duration, "mode", cfg.Encounter.Mode.String())
	lg.Debug("run started", "ticks", ticks)

	mon := NewMonitor(cfg.Encounter, dt)
	stopTick := ticks - 1
	early := false

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		t := float64(i) * dt

		if i > 0 {
			for k := range x {
				if sched[k].Advance(t, tol) {
					lg.Debug("command advanced", "aircraft", k+1, "index", sched[k].Index(), "t", t)
				}
				next := s.steppers[k].Step(x[k], sched[k].Active(), t)
				if !next.IsValid() {
					return nil, &SimulationError{Step: i, Time: t, Aircraft: k, State: next, Wrapped: ErrInvalidState}
				}
				x[k] = next
			}
		}

		for k := range x {
			result.Aircraft[k] = append(result.Aircraft[k], SampleOf(t, x[k]))
		}
		for _, m := range s.metrics {
			m.Observe(t, x[0], x[1])
		}

		horz, vert := Separation(x[0], x[1])
		phase := mon.Phase()
		stop := mon.Observe(t, horz, vert)
		if mon.Phase() != phase {
			lg.Debug("encounter phase", "from", phase.String(), "to", mon.Phase().String(), "t", t)
		}
		if stop {
			stopTick = i
			early = true
			break
		}
	}

	result.Stats = Stats{
		StopTime:        float64(stopTick) * dt,
		StopTick:        stopTick,
		NMAC:            mon.NMAC(),
		OutsideCylinder: mon.Outside(),
		EarlyStop:       early,
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	lg.Debug("run finished", "stop_time", result.Stats.StopTime, "nmac", result.Stats.NMAC, "early", early)
	return result, nil
}

func (s *Simulator) validate(in Input, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for k := range s.steppers {
		if s.steppers[k] == nil {
			return fmt.Errorf("%w: aircraft %d has no stepper", ErrConfig, k+1)
		}
		if s.steppers[k].Dt() != cfg.Constants.Dt {
			return fmt.Errorf("%w: aircraft %d stepper dt %g differs from run dt %g", ErrConfig, k+1, s.steppers[k].Dt(), cfg.Constants.Dt)
		}
		if len(in.Init[k]) != StateDim {
			return fmt.Errorf("%w: aircraft %d initial state has %d values, want %d", ErrDimensionMismatch, k+1, len(in.Init[k]), StateDim)
		}
		if !in.Init[k].IsValid() {
			return fmt.Errorf("aircraft %d initial state: %w", k+1, ErrInvalidState)
		}
		if a, ok := s.steppers[k].Dynamics().(Admitter); ok {
			if err := a.Admit(in.Init[k], cfg.Constants.MaxBank); err != nil {
				return fmt.Errorf("aircraft %d: %w", k+1, err)
			}
		}
		if in.Schedule[k] == nil || len(in.Schedule[k].Rows) == 0 {
			return fmt.Errorf("%w: aircraft %d has no commands", ErrConfig, k+1)
		}
	}
	return nil
}

// Separation returns the horizontal and vertical range between two states.
func Separation(a, b State) (horz, vert float64) {
	horz = math.Sqrt(math.Pow(math.Abs(a[N]-b[N]), 2) + math.Pow(math.Abs(a[E]-b[E]), 2))
	vert = math.Abs(a[H] - b[H])
	return horz, vert
}
