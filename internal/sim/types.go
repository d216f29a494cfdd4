package sim

import (
	"fmt"
	"math"
)

// State slots. The layout matches the historical 8-column input vector.
const (
	V = iota
	N
	E
	H
	Psi
	Theta
	Phi
	Reserved

	StateDim
)

// Control slots produced by the autopilot.
const (
	CtrlP = iota
	CtrlQ
	CtrlR
	CtrlAccel
	CtrlBankLimit

	ControlDim
)

type State []float64

func NewState() State {
	return make(State, StateDim)
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// positive reports whether x is a finite value above zero.
func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

type Control []float64

type Dynamics interface {
	Derivative(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Constrainer is implemented by dynamics that enforce physical limits on
// the integrated state.
type Constrainer interface {
	Constrain(x State, u Control) State
}

// Admitter is implemented by dynamics that bound the initial states they
// accept.
type Admitter interface {
	Admit(x State, maxBank float64) error
}

type Integrator interface {
	Step(dyn Dynamics, x State, u Control, t float64, dt float64) State
}

// Controller turns the active command row into body rates and a
// longitudinal acceleration.
type Controller interface {
	Compute(x State, cmd Command) Control
}

// Metric observes both aircraft once per recorded tick.
type Metric interface {
	Name() string
	Observe(t float64, own, intruder State)
	Value() float64
	Reset()
}

// Limits are the per-aircraft performance limits.
type Limits struct {
	VMin     float64 `json:"v_min" msgpack:"v_min"`
	VMax     float64 `json:"v_max" msgpack:"v_max"`
	ClimbMin float64 `json:"climb_min" msgpack:"climb_min"`
	ClimbMax float64 `json:"climb_max" msgpack:"climb_max"`
	QMax     float64 `json:"q_max" msgpack:"q_max"`
	RMax     float64 `json:"r_max" msgpack:"r_max"`
}

// LimitsFromVector reads v_min, v_max, climb_min, climb_max, qmax, rmax.
// Trailing values are ignored.
func LimitsFromVector(d []float64) (Limits, error) {
	if len(d) < 6 {
		return Limits{}, fmt.Errorf("%w: limits need 6 values, got %d", ErrConfig, len(d))
	}
	l := Limits{VMin: d[0], VMax: d[1], ClimbMin: d[2], ClimbMax: d[3], QMax: d[4], RMax: d[5]}
	return l, l.Validate()
}

func (l Limits) Vector() []float64 {
	return []float64{l.VMin, l.VMax, l.ClimbMin, l.ClimbMax, l.QMax, l.RMax}
}

func (l Limits) Validate() error {
	if !(l.VMax > l.VMin) {
		return fmt.Errorf("%w: v_max (%g) must exceed v_min (%g)", ErrConfig, l.VMax, l.VMin)
	}
	if !(l.ClimbMax >= l.ClimbMin) {
		return fmt.Errorf("%w: climb_max (%g) below climb_min (%g)", ErrConfig, l.ClimbMax, l.ClimbMin)
	}
	if !(l.QMax >= 0) || !(l.RMax >= 0) {
		return fmt.Errorf("%w: rate limits must be non-negative", ErrConfig)
	}
	return nil
}

// Admit checks an initial state against the speed band and the bank
// limit, the same bounds every integrated state is held to.
func (l Limits) Admit(x State, maxBank float64) error {
	if !(x[V] >= l.VMin && x[V] < l.VMax) {
		return fmt.Errorf("%w: initial speed %g outside [%g, %g)", ErrConfig, x[V], l.VMin, l.VMax)
	}
	if math.Abs(x[Phi]) > maxBank {
		return fmt.Errorf("%w: initial bank %g exceeds %g rad", ErrConfig, x[Phi], maxBank)
	}
	return nil
}

// Constants are shared by both aircraft for a whole run.
type Constants struct {
	Dt          float64 `json:"dt" msgpack:"dt"`
	Gravity     float64 `json:"gravity" msgpack:"gravity"`
	MaxBank     float64 `json:"max_bank" msgpack:"max_bank"`
	MaxRollRate float64 `json:"max_roll_rate" msgpack:"max_roll_rate"`
	Gain        float64 `json:"gain" msgpack:"gain"`
}

func DefaultConstants() Constants {
	return Constants{
		Dt:          0.1,
		Gravity:     32.2,
		MaxBank:     75 * math.Pi / 180,
		MaxRollRate: 0.524,
		Gain:        1,
	}
}

func (c Constants) Validate() error {
	if !positive(c.Dt) {
		return fmt.Errorf("%w: dt must be positive and finite, got %g", ErrConfig, c.Dt)
	}
	if !positive(c.Gravity) {
		return fmt.Errorf("%w: gravity must be positive and finite, got %g", ErrConfig, c.Gravity)
	}
	if !positive(c.MaxBank) || !positive(c.MaxRollRate) {
		return fmt.Errorf("%w: bank and roll-rate limits must be positive", ErrConfig)
	}
	if !positive(c.Gain) {
		return fmt.Errorf("%w: integration gain must be positive and finite, got %g", ErrConfig, c.Gain)
	}
	return nil
}

// Mode selects the early termination rule.
type Mode int

const (
	ModeNone Mode = iota
	ModeCylinder
	ModeNMAC
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeCylinder:
		return "cylinder"
	case ModeNMAC:
		return "nmac"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "none":
		return ModeNone, nil
	case "cylinder":
		return ModeCylinder, nil
	case "nmac":
		return ModeNMAC, nil
	}
	return ModeNone, fmt.Errorf("%w: unknown termination mode %q", ErrConfig, s)
}

const unboundedCylinder = 1000000

// EncounterConfig controls early termination.
type EncounterConfig struct {
	Mode         Mode    `json:"mode" msgpack:"mode"`
	Radius       float64 `json:"radius" msgpack:"radius"`
	HalfHeight   float64 `json:"half_height" msgpack:"half_height"`
	RequireLatch bool    `json:"require_latch" msgpack:"require_latch"`
	Continuation float64 `json:"continuation" msgpack:"continuation"`
	MinTime      float64 `json:"min_time" msgpack:"min_time"`
	// CommandTolerance > 0 replaces exact timestamp matching when
	// advancing command rows.
	CommandTolerance float64 `json:"command_tolerance" msgpack:"command_tolerance"`
}

func DefaultEncounterConfig() EncounterConfig {
	return EncounterConfig{
		Mode:       ModeNone,
		Radius:     unboundedCylinder,
		HalfHeight: unboundedCylinder,
	}
}

// EncounterConfigFromVector reads [mode, radius, half-height, latch,
// continuation, min time].
func EncounterConfigFromVector(opt []float64) (EncounterConfig, error) {
	if len(opt) != 6 {
		return EncounterConfig{}, fmt.Errorf("%w: six elements required in encounter options, got %d", ErrConfig, len(opt))
	}
	mode := Mode(int(opt[0]))
	if mode < ModeNone || mode > ModeNMAC {
		return EncounterConfig{}, fmt.Errorf("%w: unknown termination mode %v", ErrConfig, opt[0])
	}
	if opt[3] != 0 && opt[3] != 1 {
		return EncounterConfig{}, fmt.Errorf("%w: latch flag must be 0 or 1, got %v", ErrConfig, opt[3])
	}
	cfg := EncounterConfig{
		Mode:         mode,
		Radius:       opt[1],
		HalfHeight:   opt[2],
		RequireLatch: opt[3] == 1,
		Continuation: opt[4],
		MinTime:      opt[5],
	}
	return cfg, cfg.Validate()
}

func (c EncounterConfig) Validate() error {
	if !(c.Radius >= 0) || !(c.HalfHeight >= 0) {
		return fmt.Errorf("%w: encounter cylinder dimensions must be non-negative", ErrConfig)
	}
	if !(c.Continuation >= 0) || !(c.MinTime >= 0) || !(c.CommandTolerance >= 0) {
		return fmt.Errorf("%w: encounter times must be non-negative", ErrConfig)
	}
	return nil
}

type Config struct {
	Duration  float64
	Constants Constants
	Encounter EncounterConfig
}

func DefaultConfig() Config {
	return Config{
		Duration:  60,
		Constants: DefaultConstants(),
		Encounter: DefaultEncounterConfig(),
	}
}

// MaxTicks bounds the samples a single run may record.
const MaxTicks = 1 << 24

// Ticks is the number of recorded samples for a full-length run. Only
// meaningful once Validate has passed.
func (c Config) Ticks() int {
	return int(c.Duration/c.Constants.Dt + 1)
}

func (c Config) Validate() error {
	if err := c.Constants.Validate(); err != nil {
		return err
	}
	if !positive(c.Duration) {
		return fmt.Errorf("%w: duration must be positive and finite, got %g", ErrConfig, c.Duration)
	}
	if n := c.Duration/c.Constants.Dt + 1; !(n <= MaxTicks) {
		return fmt.Errorf("%w: duration %g at dt %g needs %g ticks, limit %d", ErrConfig, c.Duration, c.Constants.Dt, n, MaxTicks)
	}
	return c.Encounter.Validate()
}

// Sample is one recorded tick of one aircraft.
type Sample struct {
	T     float64 `json:"time" msgpack:"t"`
	N     float64 `json:"north_ft" msgpack:"n"`
	E     float64 `json:"east_ft" msgpack:"e"`
	H     float64 `json:"up_ft" msgpack:"h"`
	V     float64 `json:"speed_ftps" msgpack:"v"`
	Phi   float64 `json:"phi_rad" msgpack:"phi"`
	Theta float64 `json:"theta_rad" msgpack:"theta"`
	Psi   float64 `json:"psi_rad" msgpack:"psi"`
}

// Channels names the output columns in Sample order.
var Channels = []string{"time", "north_ft", "east_ft", "up_ft", "speed_ftps", "phi_rad", "theta_rad", "psi_rad"}

func SampleOf(t float64, x State) Sample {
	return Sample{T: t, N: x[N], E: x[E], H: x[H], V: x[V], Phi: x[Phi], Theta: x[Theta], Psi: x[Psi]}
}

func (s Sample) Values() []float64 {
	return []float64{s.T, s.N, s.E, s.H, s.V, s.Phi, s.Theta, s.Psi}
}

type Stats struct {
	StopTime        float64 `json:"stop_time" msgpack:"stop_time"`
	StopTick        int     `json:"stop_tick" msgpack:"stop_tick"`
	NMAC            bool    `json:"nmac" msgpack:"nmac"`
	OutsideCylinder bool    `json:"outside_cylinder" msgpack:"outside_cylinder"`
	EarlyStop       bool    `json:"early_stop" msgpack:"early_stop"`
}

// Vector returns [stop time, nmac, not-in-cylinder] with flags as 0/1.
func (s Stats) Vector() []float64 {
	return []float64{s.StopTime, boolToFloat(s.NMAC), boolToFloat(s.OutsideCylinder)}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

type Result struct {
	Aircraft [2][]Sample       `json:"aircraft" msgpack:"aircraft"`
	Stats    Stats              `json:"stats" msgpack:"stats"`
	Metrics  map[string]float64 `json:"metrics" msgpack:"metrics"`
}

// Separation returns horizontal and vertical range at recorded tick i.
func (r *Result) Separation(i int) (horz, vert float64) {
	a, b := r.Aircraft[0][i], r.Aircraft[1][i]
	return math.Sqrt(math.Pow(math.Abs(a.N-b.N), 2) + math.Pow(math.Abs(a.E-b.E), 2)), math.Abs(a.H - b.H)
}

func (r *Result) Len() int {
	return len(r.Aircraft[0])
}
