package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/encsim/internal/sim"
	"github.com/san-kum/encsim/internal/viz"
)

var speeds = []int{1, 2, 5, 10, 25}

type model struct {
	title  string
	result *sim.Result
	bounds viz.Bounds

	tick     int
	paused   bool
	speedIdx int

	width  int
	height int
}

func NewReplay(title string, result *sim.Result) *model {
	return &model{
		title:  title,
		result: result,
		bounds: viz.TrackBounds(result.Aircraft),
		width:  100,
		height: 30,
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) last() int { return m.result.Len() - 1 }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused && m.tick < m.last() {
			m.tick = min(m.tick+speeds[m.speedIdx], m.last())
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
	case "right", "l":
		m.paused = true
		m.tick = min(m.tick+1, m.last())
	case "left", "h":
		m.paused = true
		m.tick = max(m.tick-1, 0)
	case "+", "=":
		m.speedIdx = min(m.speedIdx+1, len(speeds)-1)
	case "-":
		m.speedIdx = max(m.speedIdx-1, 0)
	case "home", "r":
		m.tick = 0
	case "end":
		m.tick = m.last()
	}
	return m, nil
}

func (m model) View() string {
	if m.result.Len() == 0 {
		return "empty run\n"
	}

	side := m.sidePanel()
	cw := max(m.width-lipgloss.Width(side)-6, 20)
	ch := max(m.height-6, 8)

	plan := viz.NewPlanView(cw, ch, m.bounds)
	plan.Draw(m.result.Aircraft, m.tick)

	var b strings.Builder
	b.WriteString(viz.Title.Render(m.title) + "  " + viz.Subtle.Render(fmt.Sprintf("%.1fs / %.1fs", m.result.Aircraft[0][m.tick].T, m.result.Stats.StopTime)) + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		viz.Panel.Render(strings.TrimRight(plan.Canvas.Render(viz.PaintTrack), "\n")),
		" ",
		side,
	))
	b.WriteString("\n" + viz.ProgressBar(float64(m.tick)/float64(max(m.last(), 1)), cw))

	status := fmt.Sprintf("x%d", speeds[m.speedIdx])
	if m.paused {
		status = "paused"
	}
	b.WriteString("\n" + viz.KeyHint.Render("space pause  ←→ step  ± speed  r restart  q quit  ["+status+"]") + "\n")
	return b.String()
}

func (m model) sidePanel() string {
	var b strings.Builder
	for k, track := range m.result.Aircraft {
		s := track[m.tick]
		b.WriteString(viz.Track[k].Render(fmt.Sprintf("aircraft %d", k+1)) + "\n")
		b.WriteString(viz.KV(
			[2]string{"speed", fmt.Sprintf("%7.1f ft/s", s.V)},
			[2]string{"alt", fmt.Sprintf("%7.0f ft", s.H)},
			[2]string{"hdg", fmt.Sprintf("%7.1f°", heading(s.Psi))},
			[2]string{"bank", fmt.Sprintf("%7.1f°", s.Phi*180/math.Pi)},
			[2]string{"pitch", fmt.Sprintf("%7.1f°", s.Theta*180/math.Pi)},
		))
		b.WriteString("\n\n")
	}

	horz, vert := m.result.Separation(m.tick)
	nmac := horz < sim.NMACHorizontal && vert < sim.NMACVertical
	b.WriteString(viz.Title.Render("separation") + "\n")
	b.WriteString(viz.KV(
		[2]string{"horz", viz.MetricValue.Render(fmt.Sprintf("%8.0f ft", horz))},
		[2]string{"vert", viz.MetricValue.Render(fmt.Sprintf("%8.0f ft", vert))},
		[2]string{"nmac", viz.Flag(nmac)},
	))
	return viz.Panel.Render(b.String())
}

// heading wraps psi into [0, 360) degrees.
func heading(psi float64) float64 {
	d := math.Mod(psi*180/math.Pi, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func RunReplay(title string, result *sim.Result) error {
	p := tea.NewProgram(NewReplay(title, result), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
