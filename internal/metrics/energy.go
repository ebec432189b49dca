package metrics

import (
	"math"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/sim"
)

// Energy is the mean total energy over the observed ticks. It costs O(n²)
// per tick.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f sim.Frame) {
	e.totalEnergy += body.TotalEnergy(f.Bodies, f.Mode.Softening)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the first observed
// total energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f sim.Frame) {
	energy := body.TotalEnergy(f.Bodies, f.Mode.Softening)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift is the largest change in total momentum magnitude since the
// first tick, relative to the sum of |p| over bodies. Exact pairwise forces
// keep it at rounding level; the tree's approximation does not.
type MomentumDrift struct {
	name     string
	initial  float64
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(f sim.Frame) {
	p := body.TotalMomentum(f.Bodies).Length()
	if m.samples == 0 {
		m.initial = p
		for _, b := range f.Bodies {
			m.scale += b.Momentum().Length()
		}
	}
	m.samples++
	if m.scale > 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(p-m.initial)/m.scale)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = 0
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}
