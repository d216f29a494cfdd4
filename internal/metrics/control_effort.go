package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/encsim/internal/sim"
)

// BankEffort is the mean absolute bank angle of one aircraft, in radians.
type BankEffort struct {
	name     string
	aircraft int
	sum      float64
	samples  int
}

func NewBankEffort(aircraft int) *BankEffort {
	return &BankEffort{
		name:     fmt.Sprintf("bank_effort_ac%d", aircraft+1),
		aircraft: aircraft,
	}
}

func (c *BankEffort) Name() string {
	return c.name
}

func (c *BankEffort) Observe(t float64, own, intruder sim.State) {
	c.sum += math.Abs(pick(c.aircraft, own, intruder)[sim.Phi])
	c.samples++
}

func (c *BankEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *BankEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
