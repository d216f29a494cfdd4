package optim

import (
	"context"
	"testing"

	"github.com/san-kum/encsim/internal/config"
	"github.com/san-kum/encsim/internal/experiment"
	"github.com/san-kum/encsim/internal/sim"
)

func TestGridPoints(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	points := g.Points()

	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	if points[0]["a"] != 1 || points[0]["b"] != 10 {
		t.Errorf("unexpected first point %v", points[0])
	}
	if points[5]["a"] != 2 || points[5]["b"] != 30 {
		t.Errorf("unexpected last point %v", points[5])
	}
}

func TestGridSearchMissDistance(t *testing.T) {
	base := config.GetPreset("head_on")
	base.Encounter.Mode = "none"
	base.Duration = 30

	g := NewGridSearch([]string{"aircraft.2.init.east_ft"}, [][]float64{{-800, -200, 0, 400}})
	best, points, err := g.Search(context.Background(), base, "hmd", experiment.NewBatch(2, nil))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	if best.Params["aircraft.2.init.east_ft"] != 0 {
		t.Errorf("expected smallest miss at zero offset, got %v", best.Params)
	}
	if points[0].Value <= points[1].Value {
		t.Errorf("miss distance should shrink with offset: %f vs %f", points[0].Value, points[1].Value)
	}

	g.Maximize = true
	best, _, err = g.Search(context.Background(), base, "hmd", experiment.NewBatch(2, nil))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best.Params["aircraft.2.init.east_ft"] != -800 {
		t.Errorf("expected largest miss at -800, got %v", best.Params)
	}
}

func TestGridSearchErrors(t *testing.T) {
	base := config.GetPreset("head_on")
	batch := experiment.NewBatch(1, nil)

	if _, _, err := NewGridSearch([]string{"duration"}, nil).Search(context.Background(), base, "hmd", batch); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, _, err := NewGridSearch([]string{"bogus"}, [][]float64{{1}}).Search(context.Background(), base, "hmd", batch); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, _, err := NewGridSearch([]string{"duration"}, [][]float64{{5}}).Search(context.Background(), base, "entropy", batch); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestMetricValue(t *testing.T) {
	res := &sim.Result{
		Stats:   sim.Stats{StopTime: 12, NMAC: true},
		Metrics: map[string]float64{"hmd": 250},
	}
	tests := []struct {
		name string
		want float64
	}{
		{"hmd", 250},
		{"stop_time", 12},
		{"nmac", 1},
		{"outside_cylinder", 0},
	}
	for _, tt := range tests {
		got, err := MetricValue(res, tt.name)
		if err != nil || got != tt.want {
			t.Errorf("MetricValue(%s) = %f, %v; want %f", tt.name, got, err, tt.want)
		}
	}
}

func TestParseRange(t *testing.T) {
	got, err := ParseRange("0:1:0.25")
	if err != nil || len(got) != 5 || got[4] != 1 {
		t.Errorf("ParseRange(0:1:0.25) = %v, %v", got, err)
	}

	got, err = ParseRange("90, 180,270")
	if err != nil || len(got) != 3 || got[1] != 180 {
		t.Errorf("ParseRange(list) = %v, %v", got, err)
	}

	for _, bad := range []string{"1:2", "0:1:0", "2:1:1", "a,b"} {
		if _, err := ParseRange(bad); err == nil {
			t.Errorf("ParseRange(%q): expected error", bad)
		}
	}
}
