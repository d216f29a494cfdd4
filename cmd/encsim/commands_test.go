package main

import (
	"math"
	"testing"

	"github.com/san-kum/encsim/internal/sim"
)

func resetFlags() {
	configFile, overrides, duration, mode = "", nil, 0, ""
}

func TestLoadConfigPresetOverrides(t *testing.T) {
	defer resetFlags()
	overrides = []string{"aircraft.2.init.east_ft = 250", "encounter.radius_ft=4000"}
	duration = 12
	mode = "cylinder"

	cfg, err := loadConfig([]string{"head_on"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Aircraft[1].Init.East != 250 {
		t.Errorf("east = %v, want 250", cfg.Aircraft[1].Init.East)
	}
	if cfg.Encounter.Radius != 4000 || cfg.Duration != 12 || cfg.Encounter.Mode != "cylinder" {
		t.Errorf("overrides not applied: %+v", cfg.Encounter)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	defer resetFlags()
	if _, err := loadConfig([]string{"no_such"}); err == nil {
		t.Error("expected unknown preset error")
	}
	for _, bad := range []string{"duration", "duration=abc", "bogus=1"} {
		overrides = []string{bad}
		if _, err := loadConfig(nil); err == nil {
			t.Errorf("--set %q: expected error", bad)
		}
	}
}

func TestChannelSeries(t *testing.T) {
	tracks := [2][]sim.Sample{
		{{T: 0, N: 0, E: 0, H: 1000, V: 200}, {T: 0.1, N: 30, E: 40, H: 1000, V: 210}},
		{{T: 0, N: 300, E: 400, H: 1100, V: 250}, {T: 0.1, N: 30, E: 40, H: 1050, V: 240}},
	}

	sep, _, err := channelSeries(tracks, "separation")
	if err != nil {
		t.Fatal(err)
	}
	if len(sep) != 1 || sep[0][0] != 500 || sep[0][1] != 0 {
		t.Errorf("separation = %v", sep)
	}

	vert, _, _ := channelSeries(tracks, "vertical")
	if vert[0][1] != 50 {
		t.Errorf("vertical = %v", vert)
	}

	speed, _, err := channelSeries(tracks, "speed")
	if err != nil {
		t.Fatal(err)
	}
	if len(speed) != 2 || speed[0][1] != 210 || speed[1][0] != 250 {
		t.Errorf("speed = %v", speed)
	}

	tracks[0][1].Phi = math.Pi / 6
	bank, _, _ := channelSeries(tracks, "bank")
	if math.Abs(bank[0][1]-30) > 1e-9 {
		t.Errorf("bank = %v, want 30", bank[0][1])
	}

	if _, _, err := channelSeries(tracks, "pressure"); err == nil {
		t.Error("expected unknown channel error")
	}
	if _, _, err := channelSeries([2][]sim.Sample{}, "speed"); err == nil {
		t.Error("expected empty track error")
	}
}
