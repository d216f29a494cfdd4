package sim

// NMAC thresholds in feet.
const (
	NMACHorizontal = 500.0
	NMACVertical   = 100.0
)

// Phase tracks the encounter cylinder history. It only moves forward.
type Phase int

const (
	NotPenetrated Phase = iota
	Penetrated
	ExitedAfterPenetration
)

func (p Phase) String() string {
	switch p {
	case NotPenetrated:
		return "not_penetrated"
	case Penetrated:
		return "penetrated"
	case ExitedAfterPenetration:
		return "exited"
	}
	return "unknown"
}

// Monitor evaluates the encounter/NMAC termination logic once per
// recorded tick.
//
// Evaluation order within Observe is fixed: NMAC latch, outside flag,
// penetration latch, exit timer increment, exit latch, stop decision.
// Because the timer increments before the exit latch is set, the timer
// starts counting one tick after the first exit.
type Monitor struct {
	cfg EncounterConfig
	dt  float64

	nmac      bool
	outside   bool
	phase     Phase
	timeCount float64
}

func NewMonitor(cfg EncounterConfig, dt float64) *Monitor {
	return &Monitor{cfg: cfg, dt: dt}
}

// Observe folds in the separation at time t and reports whether the run
// should stop at this tick.
func (m *Monitor) Observe(t, horz, vert float64) bool {
	if horz < NMACHorizontal && vert < NMACVertical {
		m.nmac = true
	}

	m.outside = horz > m.cfg.Radius || vert > m.cfg.HalfHeight

	if horz <= m.cfg.Radius && vert <= m.cfg.HalfHeight && m.phase == NotPenetrated {
		m.phase = Penetrated
	}

	if m.phase == ExitedAfterPenetration {
		m.timeCount += m.dt
	}

	if m.outside && m.phase == Penetrated {
		m.phase = ExitedAfterPenetration
	}

	latched := (m.Penetrated() && m.cfg.RequireLatch) || !m.cfg.RequireLatch
	elapsed := m.timeCount >= m.cfg.Continuation

	switch m.cfg.Mode {
	case ModeCylinder:
		return m.outside && latched && elapsed && t >= m.cfg.MinTime
	case ModeNMAC:
		return m.nmac && t >= m.cfg.MinTime
	}
	return false
}

func (m *Monitor) NMAC() bool         { return m.nmac }
func (m *Monitor) Outside() bool      { return m.outside }
func (m *Monitor) Phase() Phase       { return m.phase }
func (m *Monitor) TimeCount() float64 { return m.timeCount }

// Penetrated reports whether the cylinder has ever been entered.
func (m *Monitor) Penetrated() bool {
	return m.phase != NotPenetrated
}
