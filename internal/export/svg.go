package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/encsim/internal/sim"
	"github.com/san-kum/encsim/internal/viz"
)

// Track colors, indexed by aircraft.
var strokes = [2]string{"#00ccff", "#ffaa00"}

// CanvasToSVG converts a Braille canvas to SVG, one circle per dot.
// Dots are colored by the canvas layer that drew them.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := layerColor(canvas.Layer[row][col])

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, dotRadius, fill)
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func layerColor(layer int) string {
	if layer >= 1 && layer <= len(strokes) {
		return strokes[layer-1]
	}
	return "#00ff00"
}

// TracksToSVG draws the plan view of both aircraft as polylines on equal
// north/east scales. The start of each track is marked with a circle and
// the first NMAC tick, if any, with a red cross.
func TracksToSVG(result *sim.Result, width, height int) string {
	if result == nil || result.Len() < 2 {
		return ""
	}

	b := viz.TrackBounds(result.Aircraft)
	// Keep one scale for both axes.
	scale := min(float64(width)/(b.MaxE-b.MinE), float64(height)/(b.MaxN-b.MinN))
	project := func(s sim.Sample) (float64, float64) {
		return (s.E - b.MinE) * scale, float64(height) - (s.N-b.MinN)*scale
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for k, track := range result.Aircraft {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokes[k])
		for i, s := range track {
			x, y := project(s)
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		x, y := project(track[0])
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"%s\"/>\n", x, y, strokes[k])
	}

	for i := 0; i < result.Len(); i++ {
		horz, vert := result.Separation(i)
		if horz < sim.NMACHorizontal && vert < sim.NMACVertical {
			x, y := project(result.Aircraft[0][i])
			fmt.Fprintf(&sb, "<path stroke=\"#ff4444\" stroke-width=\"2\" d=\"M%.1f,%.1f l8,8 m0,-8 l-8,8\"/>\n", x-4, y-4)
			break
		}
	}

	fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"#888899\" font-family=\"monospace\" font-size=\"12\">t=%.1fs nmac=%v</text>\n",
		height-8, result.Stats.StopTime, result.Stats.NMAC)
	sb.WriteString("</svg>")
	return sb.String()
}
