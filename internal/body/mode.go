package body

import (
	"fmt"
	"math"
)

// Mode pairs the force softening with the integration time scale. The two
// always travel together: a large softening keeps close passes stable when
// the time scale is large.
type Mode struct {
	// Softening is ε in the force law, in meters.
	Softening float64 `yaml:"softening" json:"softening"`
	// TimeScale multiplies every integration step.
	TimeScale float64 `yaml:"time_scale" json:"time_scale"`
}

var (
	// Realistic is unsoftened gravity with slow motion.
	Realistic = Mode{Softening: 0, TimeScale: 10}

	// Accelerated trades accuracy for fast, stable on-screen motion.
	Accelerated = Mode{Softening: 7e9, TimeScale: 3e3}
)

// Modes lists the named presets.
var Modes = map[string]Mode{
	"realistic":   Realistic,
	"accelerated": Accelerated,
}

func (m Mode) Validate() error {
	if !(m.Softening >= 0) || math.IsInf(m.Softening, 0) {
		return fmt.Errorf("%w: softening %g", ErrInvalidMode, m.Softening)
	}
	if !(m.TimeScale > 0) || math.IsInf(m.TimeScale, 0) {
		return fmt.Errorf("%w: time scale %g", ErrInvalidMode, m.TimeScale)
	}
	return nil
}
