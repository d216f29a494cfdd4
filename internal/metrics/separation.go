package metrics

import (
	"math"

	"github.com/san-kum/encsim/internal/sim"
)

// MissDistance tracks the minimum horizontal or vertical separation.
type MissDistance struct {
	name     string
	vertical bool
	min      float64
}

// NewHMD reports the horizontal miss distance in feet.
func NewHMD() *MissDistance {
	return &MissDistance{name: "hmd", min: math.Inf(1)}
}

// NewVMD reports the vertical miss distance in feet.
func NewVMD() *MissDistance {
	return &MissDistance{name: "vmd", vertical: true, min: math.Inf(1)}
}

func (m *MissDistance) Name() string { return m.name }

func (m *MissDistance) Observe(t float64, own, intruder sim.State) {
	horz, vert := sim.Separation(own, intruder)
	d := horz
	if m.vertical {
		d = vert
	}
	m.min = math.Min(m.min, d)
}

func (m *MissDistance) Value() float64 {
	return m.min
}

func (m *MissDistance) Reset() {
	m.min = math.Inf(1)
}

// ClosestApproach reports the time of minimum slant range.
type ClosestApproach struct {
	best float64
	t    float64
}

func NewClosestApproach() *ClosestApproach {
	return &ClosestApproach{best: math.Inf(1)}
}

func (c *ClosestApproach) Name() string { return "cpa_time" }

func (c *ClosestApproach) Observe(t float64, own, intruder sim.State) {
	horz, vert := sim.Separation(own, intruder)
	r := math.Hypot(horz, vert)
	if r < c.best {
		c.best = r
		c.t = t
	}
}

func (c *ClosestApproach) Value() float64 {
	return c.t
}

func (c *ClosestApproach) Range() float64 {
	return c.best
}

func (c *ClosestApproach) Reset() {
	c.best = math.Inf(1)
	c.t = 0
}

// TimeInVolume accumulates the time both separations are below the given
// thresholds.
type TimeInVolume struct {
	name       string
	horz, vert float64
	dt         float64
	total      float64
}

// NewTimeInNMAC accumulates time spent inside the NMAC volume.
func NewTimeInNMAC(dt float64) *TimeInVolume {
	return &TimeInVolume{name: "time_in_nmac", horz: sim.NMACHorizontal, vert: sim.NMACVertical, dt: dt}
}

func (v *TimeInVolume) Name() string { return v.name }

func (v *TimeInVolume) Observe(t float64, own, intruder sim.State) {
	horz, vert := sim.Separation(own, intruder)
	if horz < v.horz && vert < v.vert {
		v.total += v.dt
	}
}

func (v *TimeInVolume) Value() float64 { return v.total }

func (v *TimeInVolume) Reset() { v.total = 0 }
