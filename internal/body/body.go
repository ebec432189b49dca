package body

import (
	"fmt"
	"math"

	"github.com/san-kum/bhsim/internal/vec"
)

// G is the gravitational constant in m³/(kg·s²).
const G = 6.6743e-11

// heavyMass separates stars from everything else when scaling display radii.
const heavyMass = 1.0e28

// PointMass is a mass concentrated at a single position. The octree uses it
// to stand in for a whole subtree.
type PointMass struct {
	Mass     float64
	Position vec.Vec3
}

// Body is a celestial body. Bodies are created once per scenario and then
// mutated in place every tick.
type Body struct {
	Name     string
	Mass     float64
	Radius   float64
	Position vec.Vec3
	Velocity vec.Vec3
	// Force is the net force applied during the next Step.
	Force vec.Vec3
	// Color is a display tag ("#rrggbb"); physics never reads it.
	Color string
}

// New validates mass and radius and returns a body at rest force-wise.
func New(name string, mass, radius float64, pos, vel vec.Vec3, color string) (*Body, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("%s: %w (got %g)", name, ErrInvalidMass, mass)
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%s: %w (got %g)", name, ErrInvalidRadius, radius)
	}
	return &Body{
		Name:     name,
		Mass:     mass,
		Radius:   radius,
		Position: pos,
		Velocity: vel,
		Color:    color,
	}, nil
}

// PointMass returns the body reduced to its mass and position.
func (b *Body) PointMass() PointMass {
	return PointMass{Mass: b.Mass, Position: b.Position}
}

// DistanceTo returns the distance between the centers of b and o.
func (b *Body) DistanceTo(o *Body) float64 {
	return b.Position.DistanceTo(o.Position)
}

// GravitationalForce returns the force exerted on b by p:
//
//	G·m₁·m₂ / (r² + ε²) · unit(p − b)
//
// Coincident positions yield the zero vector.
func (b *Body) GravitationalForce(p PointMass, softening float64) vec.Vec3 {
	return Attraction(b.PointMass(), p, softening)
}

// ForceFrom is GravitationalForce against another body.
func (b *Body) ForceFrom(o *Body, softening float64) vec.Vec3 {
	return b.GravitationalForce(o.PointMass(), softening)
}

// Attraction is the force law shared by bodies and aggregates: the force on
// a exerted by other.
func Attraction(a, other PointMass, softening float64) vec.Vec3 {
	dir := other.Position.Sub(a.Position)
	r := dir.Length()
	if r == 0 {
		return vec.Zero
	}
	dir.Normalize()
	mag := G * a.Mass * other.Mass / (r*r + softening*softening)
	return dir.Scale(mag)
}

// SetForce stores the force to be applied by the next Step.
func (b *Body) SetForce(f vec.Vec3) { b.Force = f }

// ApplyForceAndMove integrates one tick with semi-implicit Euler: the
// velocity is updated from the force first, the position from the new
// velocity second. timeScale is a simulation-speed multiplier, not seconds.
func (b *Body) ApplyForceAndMove(force vec.Vec3, timeScale float64) {
	b.Velocity = b.Velocity.Add(force.Scale(timeScale / b.Mass))
	b.Position = b.Position.Add(b.Velocity.Scale(timeScale))
}

// Step integrates the stored Force.
func (b *Body) Step(timeScale float64) {
	b.ApplyForceAndMove(b.Force, timeScale)
}

// DisplayRadius maps the physical radius onto a two-tier logarithmic scale
// so that stars stay visibly larger than planets.
func (b *Body) DisplayRadius() float64 {
	if b.Mass > heavyMass {
		return 2.5e9 * math.Log10(b.Radius)
	}
	return 9e8 * math.Log10(b.Radius)
}

func (b *Body) KineticEnergy() float64 {
	v := b.Velocity.Length()
	return 0.5 * b.Mass * v * v
}

func (b *Body) Momentum() vec.Vec3 {
	return b.Velocity.Scale(b.Mass)
}

func (b *Body) String() string {
	return fmt.Sprintf("%s - POS: %s - MOV: %s", b.Name, b.Position, b.Velocity)
}
