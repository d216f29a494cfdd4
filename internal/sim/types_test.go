package sim

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", NewState(), true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Clone(t *testing.T) {
	a := State{1, 2, 3}
	b := a.Clone()
	b[0] = 99
	if a[0] != 1 {
		t.Error("Clone shares backing array")
	}
}

func TestLimitsFromVector(t *testing.T) {
	l, err := LimitsFromVector([]float64{1.7, 1116, -10000, 10000, 0.05, 17, 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.VMin != 1.7 || l.VMax != 1116 || l.RMax != 17 {
		t.Errorf("unexpected limits %+v", l)
	}

	if _, err := LimitsFromVector([]float64{1, 2, 3}); !errors.Is(err, ErrConfig) {
		t.Errorf("short vector: expected ErrConfig, got %v", err)
	}
	if _, err := LimitsFromVector([]float64{100, 50, 0, 0, 0, 0}); !errors.Is(err, ErrConfig) {
		t.Errorf("inverted speeds: expected ErrConfig, got %v", err)
	}
}

func TestEncounterConfigFromVector(t *testing.T) {
	cfg, err := EncounterConfigFromVector([]float64{1, 6076, 1000, 1, 5, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := EncounterConfig{Mode: ModeCylinder, Radius: 6076, HalfHeight: 1000, RequireLatch: true, Continuation: 5, MinTime: 10}
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}

	bad := [][]float64{
		{1, 2, 3, 4, 5},
		{1, 2, 3, 4, 5, 6, 7},
		{3, 0, 0, 0, 0, 0},
		{1, -1, 0, 0, 0, 0},
		{1, math.NaN(), 0, 0, 0, 0},
		{1, 6076, 1000, 2, 0, 0},
		{1, 6076, 1000, 0.5, 0, 0},
	}
	for _, v := range bad {
		if _, err := EncounterConfigFromVector(v); !errors.Is(err, ErrConfig) {
			t.Errorf("%v: expected ErrConfig, got %v", v, err)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeNone, ModeCylinder, ModeNMAC} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("always"); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestConfigTicks(t *testing.T) {
	tests := []struct {
		duration float64
		ticks    int
	}{
		{60, 601},
		{1, 11},
		{0.05, 1},
		{2.5, 26},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Duration = tt.duration
		if got := cfg.Ticks(); got != tt.ticks {
			t.Errorf("Ticks(%g) = %d, want %d", tt.duration, got, tt.ticks)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"NaN duration", func(c *Config) { c.Duration = math.NaN() }, true},
		{"+Inf duration", func(c *Config) { c.Duration = math.Inf(1) }, true},
		{"-Inf duration", func(c *Config) { c.Duration = math.Inf(-1) }, true},
		{"NaN dt", func(c *Config) { c.Constants.Dt = math.NaN() }, true},
		{"+Inf dt", func(c *Config) { c.Constants.Dt = math.Inf(1) }, true},
		{"tick overflow", func(c *Config) { c.Constants.Dt = 1e-12 }, true},
		{"long run", func(c *Config) { c.Duration = float64(MaxTicks/2) * c.Constants.Dt }, false},
		{"zero gain", func(c *Config) { c.Constants.Gain = 0 }, true},
		{"NaN gain", func(c *Config) { c.Constants.Gain = math.NaN() }, true},
		{"NaN radius", func(c *Config) { c.Encounter.Radius = math.NaN() }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr && !errors.Is(err, ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLimitsAdmit(t *testing.T) {
	l := Limits{VMin: 90, VMax: 300, ClimbMin: -30, ClimbMax: 20, QMax: 0.05, RMax: 17}
	maxBank := DefaultConstants().MaxBank

	state := func(v, phi float64) State {
		x := NewState()
		x[V], x[Phi] = v, phi
		return x
	}
	tests := []struct {
		name string
		x    State
		ok   bool
	}{
		{"in band", state(200, 0.3), true},
		{"at v_min", state(90, 0), true},
		{"below v_min", state(0, 0), false},
		{"at v_max", state(300, 0), false},
		{"bank at limit", state(200, -maxBank), true},
		{"bank past limit", state(200, 2), false},
	}
	for _, tt := range tests {
		err := l.Admit(tt.x, maxBank)
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrConfig) {
			t.Errorf("%s: expected ErrConfig, got %v", tt.name, err)
		}
	}
}

func TestStatsVector(t *testing.T) {
	s := Stats{StopTime: 12.5, NMAC: true}
	v := s.Vector()
	if len(v) != 3 || v[0] != 12.5 || v[1] != 1 || v[2] != 0 {
		t.Errorf("unexpected stats vector %v", v)
	}
}

func TestGuardCos(t *testing.T) {
	if GuardCos(0.5) != 0.5 {
		t.Error("GuardCos should pass through large values")
	}
	if GuardCos(0) != cosFloor {
		t.Errorf("GuardCos(0) = %g", GuardCos(0))
	}
	if GuardCos(-1e-12) != -cosFloor {
		t.Errorf("GuardCos(-1e-12) = %g", GuardCos(-1e-12))
	}
	if GuardCos(math.Cos(math.Pi/2)) == 0 {
		t.Error("GuardCos returned zero")
	}
	if SpeedFloor(0.2) != 1 || SpeedFloor(300) != 300 {
		t.Error("SpeedFloor")
	}
	if Clamp(5, 0, 3) != 3 || Clamp(-5, 0, 3) != 0 || Clamp(1, 0, 3) != 1 {
		t.Error("Clamp")
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 4, Time: 0.4, Aircraft: 1, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("SimulationError should unwrap to ErrInvalidState")
	}
	var se *SimulationError
	if !errors.As(error(err), &se) || se.Step != 4 {
		t.Error("errors.As failed")
	}
}
