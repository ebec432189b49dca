package body

import (
	"math"

	"github.com/san-kum/bhsim/internal/vec"
)

// KineticEnergy sums ½mv² over bodies.
func KineticEnergy(bodies []*Body) float64 {
	ke := 0.0
	for _, b := range bodies {
		ke += b.KineticEnergy()
	}
	return ke
}

// PotentialEnergy is the softened pairwise potential -G·m₁·m₂/√(r²+ε²),
// summed over every pair. It is O(n²).
func PotentialEnergy(bodies []*Body, softening float64) float64 {
	eps2 := softening * softening
	pe := 0.0
	for i, a := range bodies {
		for _, b := range bodies[i+1:] {
			r := a.Position.DistanceTo(b.Position)
			d := math.Sqrt(r*r + eps2)
			if d == 0 {
				continue
			}
			pe -= G * a.Mass * b.Mass / d
		}
	}
	return pe
}

// TotalEnergy is kinetic plus potential energy.
func TotalEnergy(bodies []*Body, softening float64) float64 {
	return KineticEnergy(bodies) + PotentialEnergy(bodies, softening)
}

// TotalMomentum sums m·v over bodies.
func TotalMomentum(bodies []*Body) vec.Vec3 {
	var p vec.Vec3
	for _, b := range bodies {
		p = p.Add(b.Momentum())
	}
	return p
}

// CenterOfMass returns the mass-weighted centroid, or the origin when the
// total mass is zero.
func CenterOfMass(bodies []*Body) PointMass {
	var sum vec.Vec3
	m := 0.0
	for _, b := range bodies {
		sum = sum.Add(b.Position.Scale(b.Mass))
		m += b.Mass
	}
	if m == 0 {
		return PointMass{}
	}
	return PointMass{Mass: m, Position: sum.Scale(1 / m)}
}

// DirectForce sums the exact pairwise force on target from every other body.
// It is the O(n²) reference the octree approximates.
func DirectForce(target *Body, bodies []*Body, softening float64) vec.Vec3 {
	var f vec.Vec3
	for _, b := range bodies {
		if b == target {
			continue
		}
		f = f.Add(target.ForceFrom(b, softening))
	}
	return f
}
