package body

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bhsim/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBody(t *testing.T, name string, mass float64, pos vec.Vec3) *Body {
	t.Helper()
	b, err := New(name, mass, 1e6, pos, vec.Zero, "#ffffff")
	require.NoError(t, err)
	return b
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		mass   float64
		radius float64
		want   error
	}{
		{"zero mass", 0, 1, ErrInvalidMass},
		{"negative mass", -5, 1, ErrInvalidMass},
		{"nan mass", math.NaN(), 1, ErrInvalidMass},
		{"inf mass", math.Inf(1), 1, ErrInvalidMass},
		{"zero radius", 1, 0, ErrInvalidRadius},
		{"negative radius", 1, -1, ErrInvalidRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("x", tt.mass, tt.radius, vec.Zero, vec.Zero, "")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	b, err := New("Earth", 5.972e24, 6371e3, vec.New(1, 2, 3), vec.New(4, 5, 6), "#0000ff")
	require.NoError(t, err)
	assert.Equal(t, vec.Zero, b.Force)
	assert.Equal(t, "Earth", b.Name)
}

func TestTwoBodyForce(t *testing.T) {
	a := mustBody(t, "a", 1e24, vec.Zero)
	b := mustBody(t, "b", 1e24, vec.New(1e9, 0, 0))

	want := G * 1e24 * 1e24 / (1e9 * 1e9)

	fa := a.ForceFrom(b, 0)
	fb := b.ForceFrom(a, 0)

	assert.InEpsilon(t, want, fa.Length(), 1e-12)
	assert.InEpsilon(t, want, fa.X(), 1e-12)
	assert.Equal(t, 0.0, fa.Y())
	assert.InEpsilon(t, -want, fb.X(), 1e-12)

	// Newton's third law
	assert.True(t, fa.Add(fb).Length() <= want*1e-12)
}

func TestSofteningBoundsForce(t *testing.T) {
	a := mustBody(t, "a", 1e24, vec.Zero)
	b := mustBody(t, "b", 1e24, vec.New(1, 0, 0))

	hard := a.ForceFrom(b, 0)
	soft := a.ForceFrom(b, Accelerated.Softening)

	assert.Greater(t, hard.Length(), soft.Length())
	eps := Accelerated.Softening
	assert.InEpsilon(t, G*1e48/(1+eps*eps), soft.Length(), 1e-9)
}

func TestCoincidentForceIsZero(t *testing.T) {
	a := mustBody(t, "a", 1e24, vec.New(5, 5, 5))
	b := mustBody(t, "b", 1e24, vec.New(5, 5, 5))

	f := a.ForceFrom(b, 0)
	assert.Equal(t, vec.Zero, f)
	assert.True(t, f.IsFinite())
}

func TestAttractionMatchesBodyForm(t *testing.T) {
	a := mustBody(t, "a", 3e20, vec.New(1e8, -2e8, 5e7))
	p := PointMass{Mass: 7e22, Position: vec.New(-4e8, 1e8, 0)}

	assert.Equal(t, Attraction(a.PointMass(), p, 1e3), a.GravitationalForce(p, 1e3))
}

func TestApplyForceAndMoveSemiImplicit(t *testing.T) {
	b := mustBody(t, "b", 2, vec.New(1, 0, 0))
	b.Velocity = vec.New(0, 1, 0)

	b.ApplyForceAndMove(vec.New(4, 0, 0), 0.5)

	// v' = v + F/m·ts = (1, 1, 0); x' = x + v'·ts
	assert.Equal(t, vec.New(1, 1, 0), b.Velocity)
	assert.Equal(t, vec.New(1.5, 0.5, 0), b.Position)
}

func TestStepUsesStoredForce(t *testing.T) {
	b := mustBody(t, "b", 1, vec.Zero)
	b.SetForce(vec.New(0, 0, 2))
	b.Step(1)

	assert.Equal(t, vec.New(0, 0, 2), b.Velocity)
	assert.Equal(t, vec.New(0, 0, 2), b.Position)

	// the accumulator is not cleared by integration
	b.Step(1)
	assert.Equal(t, vec.New(0, 0, 4), b.Velocity)
}

func TestDisplayRadius(t *testing.T) {
	sun, err := New("Sol", 1.989e32, 696340e3, vec.Zero, vec.Zero, "")
	require.NoError(t, err)
	earth, err := New("Earth", 5.972e24, 6371e3, vec.Zero, vec.Zero, "")
	require.NoError(t, err)

	assert.InEpsilon(t, 2.5e9*math.Log10(696340e3), sun.DisplayRadius(), 1e-12)
	assert.InEpsilon(t, 9e8*math.Log10(6371e3), earth.DisplayRadius(), 1e-12)
}

func TestEnergyAndMomentum(t *testing.T) {
	b := mustBody(t, "b", 4, vec.Zero)
	b.Velocity = vec.New(3, 4, 0)

	assert.InDelta(t, 50.0, b.KineticEnergy(), 1e-12)
	assert.Equal(t, vec.New(12, 16, 0), b.Momentum())
}

func TestModeValidate(t *testing.T) {
	assert.NoError(t, Realistic.Validate())
	assert.NoError(t, Accelerated.Validate())
	assert.ErrorIs(t, Mode{Softening: -1, TimeScale: 1}.Validate(), ErrInvalidMode)
	assert.ErrorIs(t, Mode{Softening: 0, TimeScale: 0}.Validate(), ErrInvalidMode)
	assert.ErrorIs(t, Mode{Softening: math.NaN(), TimeScale: 1}.Validate(), ErrInvalidMode)
}
