package metrics

import (
	"github.com/san-kum/bhsim/internal/sim"
)

// Containment is the fraction of ticks on which every body stayed within
// radius of the origin.
type Containment struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewContainment(radius float64) *Containment {
	return &Containment{
		name:   "containment",
		radius: radius,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(f sim.Frame) {
	c.samples++
	for _, b := range f.Bodies {
		if b.Position.Length() > c.radius {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
