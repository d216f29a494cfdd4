package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/encsim/internal/experiment"
	"github.com/san-kum/encsim/internal/sim"
)

const (
	DefaultDuration   = 60.0
	DefaultRadius     = 1000000.0
	DefaultHalfHeight = 1000000.0
	DefaultVMin       = 1.7
	DefaultVMax       = 1116.0
	DefaultClimbMin   = -10000.0
	DefaultClimbMax   = 10000.0
	DefaultQMaxDeg    = 3.0
	DefaultRMaxDeg    = 1000.0
)

// Config is the on-disk encounter description. Angles are in degrees,
// distances in feet, rates per second.
type Config struct {
	Name      string           `yaml:"name"`
	Duration  float64          `yaml:"duration"`
	Constants *ConstantsConfig `yaml:"constants,omitempty"`
	Encounter EncounterConfig  `yaml:"encounter"`
	Aircraft  []AircraftConfig `yaml:"aircraft"`
}

type ConstantsConfig struct {
	Dt             float64 `yaml:"dt"`
	Gravity        float64 `yaml:"gravity"`
	MaxBankDeg     float64 `yaml:"max_bank_deg"`
	MaxRollRateRad float64 `yaml:"max_roll_rate"`
	Gain           float64 `yaml:"gain"`
}

type EncounterConfig struct {
	Mode             string  `yaml:"mode"`
	Radius           float64 `yaml:"radius_ft"`
	HalfHeight       float64 `yaml:"half_height_ft"`
	Latch            bool    `yaml:"latch"`
	Continuation     float64 `yaml:"continuation_s"`
	MinTime          float64 `yaml:"min_time_s"`
	CommandTolerance float64 `yaml:"command_tolerance_s"`
}

type AircraftConfig struct {
	Init   InitConfig   `yaml:"init"`
	Limits LimitsConfig `yaml:"limits"`
	// Commands rows are [time_s, climb_ftps, turn_degps, accel_ftps2].
	Commands [][]float64 `yaml:"commands"`
}

type InitConfig struct {
	Speed      float64 `yaml:"speed_ftps"`
	North      float64 `yaml:"north_ft"`
	East       float64 `yaml:"east_ft"`
	Up         float64 `yaml:"up_ft"`
	HeadingDeg float64 `yaml:"heading_deg"`
	PitchDeg   float64 `yaml:"pitch_deg"`
	BankDeg    float64 `yaml:"bank_deg"`
}

type LimitsConfig struct {
	VMin     float64 `yaml:"v_min_ftps"`
	VMax     float64 `yaml:"v_max_ftps"`
	ClimbMin float64 `yaml:"climb_min_ftps"`
	ClimbMax float64 `yaml:"climb_max_ftps"`
	QMaxDeg  float64 `yaml:"q_max_degps"`
	RMaxDeg  float64 `yaml:"r_max_degps"`
}

func DefaultLimits() LimitsConfig {
	return LimitsConfig{
		VMin:     DefaultVMin,
		VMax:     DefaultVMax,
		ClimbMin: DefaultClimbMin,
		ClimbMax: DefaultClimbMax,
		QMaxDeg:  DefaultQMaxDeg,
		RMaxDeg:  DefaultRMaxDeg,
	}
}

func DefaultAircraft() AircraftConfig {
	return AircraftConfig{
		Limits:   DefaultLimits(),
		Commands: [][]float64{{0, 0, 0, 0}},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "encounter",
		Duration: DefaultDuration,
		Encounter: EncounterConfig{
			Mode:       "none",
			Radius:     DefaultRadius,
			HalfHeight: DefaultHalfHeight,
		},
		Aircraft: []AircraftConfig{DefaultAircraft(), DefaultAircraft()},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Aircraft = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	// Limits left out of the file fall back to the defaults.
	for i := range cfg.Aircraft {
		if cfg.Aircraft[i].Limits == (LimitsConfig{}) {
			cfg.Aircraft[i].Limits = DefaultLimits()
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	if c.Constants != nil {
		k := *c.Constants
		cp.Constants = &k
	}
	cp.Aircraft = make([]AircraftConfig, len(c.Aircraft))
	for i, ac := range c.Aircraft {
		cp.Aircraft[i] = ac
		cp.Aircraft[i].Commands = make([][]float64, len(ac.Commands))
		for j, row := range ac.Commands {
			cp.Aircraft[i].Commands[j] = append([]float64(nil), row...)
		}
	}
	return &cp
}

func deg(d float64) float64 { return d * math.Pi / 180 }

// ToEncounter converts the file representation into simulator units.
func (c *Config) ToEncounter() (experiment.Encounter, error) {
	if len(c.Aircraft) != 2 {
		return experiment.Encounter{}, fmt.Errorf("%w: exactly 2 aircraft required, got %d", sim.ErrConfig, len(c.Aircraft))
	}

	mode, err := sim.ParseMode(c.Encounter.Mode)
	if err != nil {
		return experiment.Encounter{}, err
	}
	opts := sim.EncounterConfig{
		Mode:             mode,
		Radius:           c.Encounter.Radius,
		HalfHeight:       c.Encounter.HalfHeight,
		RequireLatch:     c.Encounter.Latch,
		Continuation:     c.Encounter.Continuation,
		MinTime:          c.Encounter.MinTime,
		CommandTolerance: c.Encounter.CommandTolerance,
	}
	if err := opts.Validate(); err != nil {
		return experiment.Encounter{}, err
	}

	enc := experiment.Encounter{
		Name:     c.Name,
		Duration: c.Duration,
		Options:  &opts,
	}

	if c.Constants != nil {
		k := sim.DefaultConstants()
		if c.Constants.Dt != 0 {
			k.Dt = c.Constants.Dt
		}
		if c.Constants.Gravity != 0 {
			k.Gravity = c.Constants.Gravity
		}
		if c.Constants.MaxBankDeg != 0 {
			k.MaxBank = deg(c.Constants.MaxBankDeg)
		}
		if c.Constants.MaxRollRateRad != 0 {
			k.MaxRollRate = c.Constants.MaxRollRateRad
		}
		if c.Constants.Gain != 0 {
			k.Gain = c.Constants.Gain
		}
		if err := k.Validate(); err != nil {
			return experiment.Encounter{}, err
		}
		enc.Constants = &k
	}

	for k, ac := range c.Aircraft {
		x := sim.NewState()
		x[sim.V] = ac.Init.Speed
		x[sim.N] = ac.Init.North
		x[sim.E] = ac.Init.East
		x[sim.H] = ac.Init.Up
		x[sim.Psi] = deg(ac.Init.HeadingDeg)
		x[sim.Theta] = deg(ac.Init.PitchDeg)
		x[sim.Phi] = deg(ac.Init.BankDeg)

		rows := make([][]float64, len(ac.Commands))
		for i, row := range ac.Commands {
			if len(row) != 4 {
				return experiment.Encounter{}, fmt.Errorf("%w: aircraft %d command %d has %d columns, want 4", sim.ErrConfig, k+1, i, len(row))
			}
			rows[i] = []float64{row[0], row[1], deg(row[2]), row[3]}
		}
		sched, err := sim.ScheduleFromMatrix(rows)
		if err != nil {
			return experiment.Encounter{}, fmt.Errorf("aircraft %d: %w", k+1, err)
		}

		limits := sim.Limits{
			VMin:     ac.Limits.VMin,
			VMax:     ac.Limits.VMax,
			ClimbMin: ac.Limits.ClimbMin,
			ClimbMax: ac.Limits.ClimbMax,
			QMax:     deg(ac.Limits.QMaxDeg),
			RMax:     deg(ac.Limits.RMaxDeg),
		}
		if err := limits.Validate(); err != nil {
			return experiment.Encounter{}, fmt.Errorf("aircraft %d: %w", k+1, err)
		}

		enc.Aircraft[k] = experiment.Aircraft{Init: x, Commands: sched.Rows, Limits: limits}
	}

	// Duration and dt together bound the tick count.
	if err := enc.Config().Validate(); err != nil {
		return experiment.Encounter{}, err
	}

	return enc, nil
}

// Set assigns a numeric field by dotted path, e.g. "duration",
// "encounter.radius_ft" or "aircraft.2.init.heading_deg". Aircraft are
// numbered from 1.
func (c *Config) Set(path string, value float64) error {
	f, err := c.field(path)
	if err != nil {
		return err
	}
	*f = value
	return nil
}

// Get reads a numeric field by the same paths Set accepts.
func (c *Config) Get(path string) (float64, error) {
	f, err := c.field(path)
	if err != nil {
		return 0, err
	}
	return *f, nil
}

func (c *Config) field(path string) (*float64, error) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "duration":
		if len(parts) == 1 {
			return &c.Duration, nil
		}
	case "encounter":
		if len(parts) == 2 {
			return c.Encounter.field(parts[1])
		}
	case "aircraft":
		if len(parts) == 4 {
			idx, err := strconv.Atoi(parts[1])
			if err != nil || idx < 1 || idx > len(c.Aircraft) {
				return nil, fmt.Errorf("unknown aircraft %q in %s", parts[1], path)
			}
			return c.Aircraft[idx-1].field(parts[2], parts[3])
		}
	}
	return nil, fmt.Errorf("unknown parameter: %s", path)
}

func (e *EncounterConfig) field(name string) (*float64, error) {
	switch name {
	case "radius_ft":
		return &e.Radius, nil
	case "half_height_ft":
		return &e.HalfHeight, nil
	case "continuation_s":
		return &e.Continuation, nil
	case "min_time_s":
		return &e.MinTime, nil
	case "command_tolerance_s":
		return &e.CommandTolerance, nil
	}
	return nil, fmt.Errorf("unknown parameter: encounter.%s", name)
}

func (a *AircraftConfig) field(group, name string) (*float64, error) {
	switch group + "." + name {
	case "init.speed_ftps":
		return &a.Init.Speed, nil
	case "init.north_ft":
		return &a.Init.North, nil
	case "init.east_ft":
		return &a.Init.East, nil
	case "init.up_ft":
		return &a.Init.Up, nil
	case "init.heading_deg":
		return &a.Init.HeadingDeg, nil
	case "init.pitch_deg":
		return &a.Init.PitchDeg, nil
	case "init.bank_deg":
		return &a.Init.BankDeg, nil
	case "limits.v_min_ftps":
		return &a.Limits.VMin, nil
	case "limits.v_max_ftps":
		return &a.Limits.VMax, nil
	case "limits.climb_min_ftps":
		return &a.Limits.ClimbMin, nil
	case "limits.climb_max_ftps":
		return &a.Limits.ClimbMax, nil
	case "limits.q_max_degps":
		return &a.Limits.QMaxDeg, nil
	case "limits.r_max_degps":
		return &a.Limits.RMaxDeg, nil
	}
	return nil, fmt.Errorf("unknown parameter: %s.%s", group, name)
}
