package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	Alert = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ff4444"))

	Clear = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ff88"))

	// Track colors, indexed by aircraft.
	Track = [2]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")),
	}
)

// PaintTrack colors canvas layers 1 and 2 with the aircraft track colors.
func PaintTrack(layer int, s string) string {
	if layer >= 1 && layer <= len(Track) {
		return Track[layer-1].Render(s)
	}
	return s
}

func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return MetricValue.Render(strings.Repeat("█", filled)) + Subtle.Render(strings.Repeat("░", width-filled))
}

// Flag renders a yes/no stat, highlighted when set.
func Flag(set bool) string {
	if set {
		return Alert.Render("yes")
	}
	return Clear.Render("no")
}

// KV renders "label value" pairs one per line with aligned labels.
func KV(pairs ...[2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-*s", width, p[0])))
		b.WriteString("  ")
		b.WriteString(p[1])
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
