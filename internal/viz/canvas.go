package viz

import (
	"math"
	"strings"

	"github.com/san-kum/encsim/internal/sim"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells. Each cell also remembers which layer
// last drew into it so tracks can be colored independently.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Layer         [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Layer:  make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Layer[i] = make([]int, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates on the given layer.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y, layer int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Layer[row][col] = layer
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Layer[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1, layer int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, layer)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	return c.Render(nil)
}

// Render joins the rows, passing each non-blank cell through paint for
// its layer when paint is non-nil.
func (c *Canvas) Render(paint func(layer int, s string) string) string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if paint != nil && r != blank {
				b.WriteString(paint(c.Layer[i][j], string(r)))
			} else {
				b.WriteRune(r)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Bounds is a north/east box in feet.
type Bounds struct {
	MinN, MaxN, MinE, MaxE float64
}

// TrackBounds covers both tracks with a 5% margin and equal scale on
// both axes.
func TrackBounds(tracks [2][]sim.Sample) Bounds {
	b := Bounds{MinN: math.Inf(1), MaxN: math.Inf(-1), MinE: math.Inf(1), MaxE: math.Inf(-1)}
	for _, track := range tracks {
		for _, s := range track {
			b.MinN = math.Min(b.MinN, s.N)
			b.MaxN = math.Max(b.MaxN, s.N)
			b.MinE = math.Min(b.MinE, s.E)
			b.MaxE = math.Max(b.MaxE, s.E)
		}
	}
	if math.IsInf(b.MinN, 1) {
		return Bounds{MinN: -1, MaxN: 1, MinE: -1, MaxE: 1}
	}

	span := math.Max(math.Max(b.MaxN-b.MinN, b.MaxE-b.MinE), 1) * 1.05
	cn, ce := (b.MinN+b.MaxN)/2, (b.MinE+b.MaxE)/2
	return Bounds{MinN: cn - span/2, MaxN: cn + span/2, MinE: ce - span/2, MaxE: ce + span/2}
}

// PlanView draws tracks seen from above: east to the right, north up.
type PlanView struct {
	Canvas *Canvas
	Bounds Bounds
}

func NewPlanView(w, h int, bounds Bounds) *PlanView {
	return &PlanView{Canvas: NewCanvas(w, h), Bounds: bounds}
}

// Project maps a north/east position to sub-pixel coordinates.
func (p *PlanView) Project(n, e float64) (x, y int) {
	pw := float64(p.Canvas.Width*2 - 1)
	ph := float64(p.Canvas.Height*4 - 1)
	b := p.Bounds
	x = int(math.Round((e - b.MinE) / (b.MaxE - b.MinE) * pw))
	y = int(math.Round((b.MaxN - n) / (b.MaxN - b.MinN) * ph))
	return x, y
}

// DrawTrack draws samples [0, upto] of a track as a polyline on layer.
func (p *PlanView) DrawTrack(track []sim.Sample, upto, layer int) {
	if upto >= len(track) {
		upto = len(track) - 1
	}
	for i := 0; i <= upto; i++ {
		x, y := p.Project(track[i].N, track[i].E)
		if i == 0 {
			p.Canvas.Set(x, y, layer)
			continue
		}
		px, py := p.Project(track[i-1].N, track[i-1].E)
		p.Canvas.DrawLine(px, py, x, y, layer)
	}
}

// Draw renders both tracks up to tick upto.
func (p *PlanView) Draw(tracks [2][]sim.Sample, upto int) {
	p.Canvas.Clear()
	for k, track := range tracks {
		p.DrawTrack(track, upto, k+1)
	}
}
