package sim

import (
	"fmt"
	"math"
)

// Command is one time-stamped row of an aircraft's command schedule.
type Command struct {
	Time      float64 `json:"t" msgpack:"t"`
	ClimbRate float64 `json:"climb_rate" msgpack:"climb_rate"`
	TurnRate  float64 `json:"turn_rate" msgpack:"turn_rate"`
	Accel     float64 `json:"accel" msgpack:"accel"`
}

// Schedule is an ordered command list plus a cursor that only moves
// forward. A Schedule is owned by one run.
type Schedule struct {
	Rows   []Command
	active int
}

func NewSchedule(rows []Command) (*Schedule, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: command schedule is empty", ErrConfig)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Time < rows[i-1].Time {
			return nil, fmt.Errorf("%w: command row %d (t=%g) precedes row %d (t=%g)",
				ErrConfig, i, rows[i].Time, i-1, rows[i-1].Time)
		}
	}
	r := make([]Command, len(rows))
	copy(r, rows)
	return &Schedule{Rows: r}, nil
}

// ScheduleFromMatrix reads rows of (timestamp, climb rate, heading rate,
// acceleration).
func ScheduleFromMatrix(m [][]float64) (*Schedule, error) {
	rows := make([]Command, len(m))
	for i, row := range m {
		if len(row) != 4 {
			return nil, fmt.Errorf("%w: command row %d has %d columns, want 4", ErrConfig, i, len(row))
		}
		rows[i] = Command{Time: row[0], ClimbRate: row[1], TurnRate: row[2], Accel: row[3]}
	}
	return NewSchedule(rows)
}

func (s *Schedule) Active() Command {
	return s.Rows[s.active]
}

func (s *Schedule) Index() int {
	return s.active
}

// Advance moves the cursor by at most one row when the next row's
// timestamp matches t. A zero tolerance means exact equality.
func (s *Schedule) Advance(t, tolerance float64) bool {
	next := s.active + 1
	if next >= len(s.Rows) {
		return false
	}
	ts := s.Rows[next].Time
	if ts == t || (tolerance > 0 && math.Abs(ts-t) <= tolerance) {
		s.active = next
		return true
	}
	return false
}
