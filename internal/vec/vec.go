// Package vec provides the 3D vector value type shared by the physics and
// octree packages.
//
// [Vec3] is a thin layer over [mgl64.Vec3]: arithmetic delegates to mathgl,
// while the degenerate cases the simulation relies on (zero-length
// normalization, closed-interval containment) are handled here.
package vec

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a value type; every method except Normalize returns a new value.
type Vec3 mgl64.Vec3

// Zero is the origin.
var Zero = Vec3{}

func New(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// Splat returns a vector with all three components set to d.
func Splat(d float64) Vec3 { return Vec3{d, d, d} }

func (v Vec3) X() float64 { return v[0] }
func (v Vec3) Y() float64 { return v[1] }
func (v Vec3) Z() float64 { return v[2] }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3(mgl64.Vec3(v).Add(mgl64.Vec3(o))) }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3(mgl64.Vec3(v).Sub(mgl64.Vec3(o))) }

func (v Vec3) Scale(d float64) Vec3 { return Vec3(mgl64.Vec3(v).Mul(d)) }

func (v Vec3) Dot(o Vec3) float64 { return mgl64.Vec3(v).Dot(mgl64.Vec3(o)) }

// DistanceTo returns the Euclidean distance between v and o.
func (v Vec3) DistanceTo(o Vec3) float64 { return mgl64.Vec3(v).Sub(mgl64.Vec3(o)).Len() }

// Length is the distance to the origin.
func (v Vec3) Length() float64 { return v.DistanceTo(Zero) }

// Normalize scales v in place to unit length. A zero vector is left
// untouched.
func (v *Vec3) Normalize() {
	l := v.Length()
	if l == 0 {
		l = 1
	}
	v[0] /= l
	v[1] /= l
	v[2] /= l
}

// Normalized returns a unit-length copy of v, or the zero vector.
func (v Vec3) Normalized() Vec3 {
	v.Normalize()
	return v
}

// Within reports whether lower <= v <= upper on every axis.
func (v Vec3) Within(upper, lower Vec3) bool {
	return lower[0] <= v[0] && v[0] <= upper[0] &&
		lower[1] <= v[1] && v[1] <= upper[1] &&
		lower[2] <= v[2] && v[2] <= upper[2]
}

func (v Vec3) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares componentwise with a relative tolerance.
func (v Vec3) ApproxEqual(o Vec3, tol float64) bool {
	return mgl64.Vec3(v).ApproxEqualThreshold(mgl64.Vec3(o), tol)
}

func (v Vec3) String() string {
	return fmt.Sprintf("[%.3e, %.3e, %.3e]", v[0], v[1], v[2])
}
