package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/encsim/internal/sim"
)

func testResult(n int) *sim.Result {
	r := &sim.Result{}
	for i := 0; i < n; i++ {
		t := float64(i) * 0.1
		r.Aircraft[0] = append(r.Aircraft[0], sim.Sample{T: t, N: float64(i) * 30, V: 300, H: 8000})
		r.Aircraft[1] = append(r.Aircraft[1], sim.Sample{T: t, N: 3000 - float64(i)*30, V: 300, H: 8000, Psi: 3.14159})
	}
	r.Stats.StopTick = n - 1
	r.Stats.StopTime = float64(n-1) * 0.1
	return r
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReplayAdvance(t *testing.T) {
	var m tea.Model = *NewReplay("test", testResult(20))

	m, _ = m.Update(tickMsg{})
	if got := m.(model).tick; got != 1 {
		t.Errorf("expected tick 1, got %d", got)
	}

	m, _ = m.Update(key("+"))
	m, _ = m.Update(tickMsg{})
	if got := m.(model).tick; got != 3 {
		t.Errorf("expected tick 3 at double speed, got %d", got)
	}

	for i := 0; i < 50; i++ {
		m, _ = m.Update(tickMsg{})
	}
	if got := m.(model).tick; got != 19 {
		t.Errorf("expected replay to stop at last tick, got %d", got)
	}
}

func TestReplayKeys(t *testing.T) {
	var m tea.Model = *NewReplay("test", testResult(10))

	m, _ = m.Update(key("right"))
	m, _ = m.Update(key("right"))
	rm := m.(model)
	if rm.tick != 2 || !rm.paused {
		t.Errorf("expected paused at tick 2, got %d paused=%v", rm.tick, rm.paused)
	}

	m, _ = m.Update(tickMsg{})
	if m.(model).tick != 2 {
		t.Error("paused replay advanced")
	}

	m, _ = m.Update(key("left"))
	m, _ = m.Update(key("left"))
	m, _ = m.Update(key("left"))
	if m.(model).tick != 0 {
		t.Errorf("expected tick clamped at 0, got %d", m.(model).tick)
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestReplayView(t *testing.T) {
	m := *NewReplay("head_on", testResult(10))
	m.tick = 5

	out := m.View()
	for _, want := range []string{"head_on", "aircraft 1", "aircraft 2", "separation"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHeading(t *testing.T) {
	if h := heading(-0.5 * 3.141592653589793); h < 269.9 || h > 270.1 {
		t.Errorf("heading(-pi/2) = %f", h)
	}
}
