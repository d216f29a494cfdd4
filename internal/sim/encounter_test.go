package sim

import "testing"

type observation struct {
	t, horz, vert float64
	stop          bool
	phase         Phase
}

func runMonitor(t *testing.T, cfg EncounterConfig, obs []observation) *Monitor {
	t.Helper()
	m := NewMonitor(cfg, 0.1)
	for i, o := range obs {
		if got := m.Observe(o.t, o.horz, o.vert); got != o.stop {
			t.Errorf("tick %d: stop = %v, want %v", i, got, o.stop)
		}
		if m.Phase() != o.phase {
			t.Errorf("tick %d: phase = %s, want %s", i, m.Phase(), o.phase)
		}
	}
	return m
}

func TestMonitorExitTimerLag(t *testing.T) {
	cfg := EncounterConfig{Mode: ModeCylinder, Radius: 1000, HalfHeight: 100, RequireLatch: true, Continuation: 0.2}

	m := runMonitor(t, cfg, []observation{
		{0.0, 5000, 0, false, NotPenetrated},
		{0.1, 500, 0, false, Penetrated},
		{0.2, 2000, 0, false, ExitedAfterPenetration},
		{0.3, 2000, 0, false, ExitedAfterPenetration},
		{0.4, 2000, 0, true, ExitedAfterPenetration},
	})
	if m.TimeCount() != 0.2 {
		t.Errorf("expected time count 0.2, got %g", m.TimeCount())
	}
}

func TestMonitorZeroContinuationStopsOnExit(t *testing.T) {
	cfg := EncounterConfig{Mode: ModeCylinder, Radius: 1000, HalfHeight: 100, RequireLatch: true}

	runMonitor(t, cfg, []observation{
		{0.0, 500, 50, false, Penetrated},
		{0.1, 500, 150, true, ExitedAfterPenetration},
	})
}

func TestMonitorLatchRequired(t *testing.T) {
	cfg := EncounterConfig{Mode: ModeCylinder, Radius: 1000, HalfHeight: 100, RequireLatch: true}

	m := runMonitor(t, cfg, []observation{
		{0.0, 5000, 0, false, NotPenetrated},
		{0.1, 5000, 0, false, NotPenetrated},
	})
	if !m.Outside() || m.Penetrated() {
		t.Error("expected outside and never penetrated")
	}
}

func TestMonitorLatchOff(t *testing.T) {
	cfg := EncounterConfig{Mode: ModeCylinder, Radius: 1000, HalfHeight: 100, MinTime: 0.2}

	runMonitor(t, cfg, []observation{
		{0.0, 5000, 0, false, NotPenetrated},
		{0.1, 5000, 0, false, NotPenetrated},
		{0.2, 5000, 0, true, NotPenetrated},
	})
}

func TestMonitorReentryKeepsTimer(t *testing.T) {
	cfg := EncounterConfig{Mode: ModeCylinder, Radius: 1000, HalfHeight: 100, RequireLatch: true, Continuation: 0.15}

	runMonitor(t, cfg, []observation{
		{0.0, 500, 0, false, Penetrated},
		{0.1, 2000, 0, false, ExitedAfterPenetration},
		{0.2, 500, 0, false, ExitedAfterPenetration},
		{0.3, 500, 0, false, ExitedAfterPenetration},
		{0.4, 2000, 0, true, ExitedAfterPenetration},
	})
}

func TestMonitorNMAC(t *testing.T) {
	cfg := EncounterConfig{Mode: ModeNMAC, Radius: unboundedCylinder, HalfHeight: unboundedCylinder, MinTime: 0.2}

	m := runMonitor(t, cfg, []observation{
		{0.0, 600, 50, false, Penetrated},
		{0.1, 400, 50, false, Penetrated},
		{0.2, 2000, 50, true, Penetrated},
	})
	if !m.NMAC() {
		t.Error("NMAC should latch")
	}
}

func TestMonitorNMACBoundaries(t *testing.T) {
	tests := []struct {
		horz, vert float64
		nmac       bool
	}{
		{499.9, 99.9, true},
		{500, 50, false},
		{100, 100, false},
		{0, 0, true},
	}
	for _, tt := range tests {
		m := NewMonitor(EncounterConfig{Mode: ModeNMAC}, 0.1)
		if got := m.Observe(0, tt.horz, tt.vert); got != tt.nmac {
			t.Errorf("Observe(%g, %g) = %v, want %v", tt.horz, tt.vert, got, tt.nmac)
		}
	}
}

func TestMonitorModeNoneNeverStops(t *testing.T) {
	m := NewMonitor(EncounterConfig{Mode: ModeNone, Radius: 10, HalfHeight: 10}, 0.1)
	for i := 0; i < 50; i++ {
		if m.Observe(float64(i)*0.1, 0, 0) {
			t.Fatalf("mode none stopped at tick %d", i)
		}
	}
	if !m.NMAC() {
		t.Error("NMAC flag should still be tracked in mode none")
	}
}
