package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/vec"
)

// orbit returns a fixed star and a planet on a circular orbit of radius r.
func orbit(t *testing.T, r float64) (star, planet *body.Body) {
	t.Helper()
	const m = 2e30
	star, err := body.New("star", m, 7e8, vec.Zero, vec.Zero, "")
	if err != nil {
		t.Fatal(err)
	}
	planet, err = body.New("planet", 1, 6e6, vec.New(r, 0, 0), vec.New(0, math.Sqrt(body.G*m/r), 0), "")
	if err != nil {
		t.Fatal(err)
	}
	return star, planet
}

// advance integrates the planet around the star, which is held in place.
func advance(integ Integrator, star, planet *body.Body, dt float64, steps int) {
	bodies := []*body.Body{planet}
	for i := 0; i < steps; i++ {
		integ.Predict(bodies, dt)
		planet.Force = planet.ForceFrom(star, 0)
		integ.Correct(bodies, dt)
	}
}

func radiusError(star, planet *body.Body, r float64) float64 {
	return math.Abs(planet.DistanceTo(star)-r) / r
}

func TestIntegratorsKeepCircularOrbit(t *testing.T) {
	const (
		r     = 1.5e11
		dt    = 3600.0
		steps = 24 * 365
	)
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			integ, err := New(name)
			if err != nil {
				t.Fatal(err)
			}
			star, planet := orbit(t, r)
			advance(integ, star, planet, dt, steps)
			if e := radiusError(star, planet, r); e > 5e-3 {
				t.Errorf("radius drifted by %.2e after one year", e)
			}
		})
	}
}

func TestLeapfrogMoreAccurateThanEuler(t *testing.T) {
	const (
		r     = 1.5e11
		dt    = 86400.0
		steps = 365
	)
	s1, p1 := orbit(t, r)
	advance(NewEuler(), s1, p1, dt, steps)
	s2, p2 := orbit(t, r)
	advance(NewLeapfrog(), s2, p2, dt, steps)

	euler, leap := radiusError(s1, p1, r), radiusError(s2, p2, r)
	if leap >= euler {
		t.Errorf("expected leapfrog radius error %.2e below euler %.2e", leap, euler)
	}
}

func TestLeapfrogIsTimeReversible(t *testing.T) {
	const r = 1.5e11
	star, planet := orbit(t, r)
	start := planet.Position

	integ := NewLeapfrog()
	advance(integ, star, planet, 86400, 100)
	planet.Velocity = planet.Velocity.Scale(-1)
	advance(integ, star, planet, 86400, 100)

	if d := planet.Position.DistanceTo(start); d > 1e-9*r {
		t.Errorf("expected to return to %v, missed by %g m", start, d)
	}
}

func TestEulerMatchesBodyStep(t *testing.T) {
	star, a := orbit(t, 1e11)
	_, b := orbit(t, 1e11)
	a.Force = a.ForceFrom(star, 0)
	b.Force = a.Force

	NewEuler().Correct([]*body.Body{a}, 60)
	b.Step(60)
	if a.Position != b.Position || a.Velocity != b.Velocity {
		t.Errorf("euler %v/%v, step %v/%v", a.Position, a.Velocity, b.Position, b.Velocity)
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("rk4"); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
	integ, err := New("")
	if err != nil || integ.Name() != NameEuler {
		t.Errorf("empty name should select euler, got %v %v", integ, err)
	}
}

func BenchmarkEuler(b *testing.B) {
	benchmark(b, NewEuler())
}

func BenchmarkLeapfrog(b *testing.B) {
	benchmark(b, NewLeapfrog())
}

func benchmark(b *testing.B, integ Integrator) {
	bodies := make([]*body.Body, 1000)
	for i := range bodies {
		bodies[i] = &body.Body{Mass: 1, Position: vec.New(float64(i), 0, 0), Velocity: vec.New(0, 1, 0), Force: vec.New(-1, 0, 0)}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Predict(bodies, 0.01)
		integ.Correct(bodies, 0.01)
	}
}
