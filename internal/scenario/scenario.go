// Package scenario builds the initial bodies of a simulation.
package scenario

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/vec"
)

// AU is the mean Earth-Sun distance in meters.
const AU = 150.0e9

// DefaultWindow is the half-width of the displayed region, two AU.
const DefaultWindow = 2 * AU

// Sol is the central star of both built-in scenarios.
func Sol() *body.Body {
	return &body.Body{
		Name:   "Sol",
		Mass:   1.989e32,
		Radius: 696340e3,
		Color:  "#FFCC33",
	}
}

// SolarSystem returns Sol with the four inner planets.
func SolarSystem() []*body.Body {
	return []*body.Body{
		Sol(),
		{
			Name: "Earth", Mass: 5.972e24, Radius: 6371e3, Color: "#3366CC",
			Position: vec.New(-1.707667e10, 1.066132e11, 2.450232e9),
			Velocity: vec.New(-344460.02, -55670.47, 21810.10),
		},
		{
			Name: "Mercury", Mass: 6.41712e23, Radius: 3390e3, Color: "#808080",
			Position: vec.New(-1.010178e11, -2.043939e11, 0),
			Velocity: vec.New(206510.98, -101860.67, -23020.79),
		},
		{
			Name: "Venus", Mass: 4.86747e24, Radius: 6052e3, Color: "#FFAFAF",
			Position: vec.New(-1.394555e11, 5.103346e10, 0),
			Velocity: vec.New(-103080.53, -281690.38, 0),
		},
		{
			Name: "Mars", Mass: 3.301e23, Radius: 2440e3, Color: "#FF0000",
			Position: vec.New(-5.439054e10, 9.394878e9, -1.591727e9),
			Velocity: vec.New(-171170.83, -462970.48, -19250.57),
		},
	}
}

const (
	nameChars   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	heavyPeriod = 229
	// minRadius keeps DisplayRadius finite.
	minRadius = 1e3
)

// Random returns n bodies: Sol at the origin followed by n-1 bodies with
// Gaussian positions of spread 0.2·window. Roughly one body in 229 is a
// star-class mass; those start at rest twice as far out. The same seed
// always yields the same bodies.
func Random(n int, window float64, seed uint64) ([]*body.Body, error) {
	if n <= 0 {
		return nil, fmt.Errorf("scenario: body count must be positive, got %d", n)
	}
	if !(window > 0) || math.IsInf(window, 0) {
		return nil, fmt.Errorf("scenario: window must be positive, got %g", window)
	}

	rnd := rand.New(rand.NewSource(seed))
	bodies := make([]*body.Body, n)
	bodies[0] = Sol()
	for i := 1; i < n; i++ {
		pos := vec.New(gaussian(rnd, window), gaussian(rnd, window), gaussian(rnd, window))
		vel := vec.New(speed(rnd), speed(rnd), speed(rnd))
		mass := randomMass(rnd)
		if mass > 1e28 {
			vel = vec.Zero
			pos = pos.Scale(2)
		}
		radius := max((rnd.Float64()*1000+rnd.Float64()*10000)*1e3, minRadius)
		b, err := body.New(randomName(rnd), mass, radius, pos, vel, randomColor(rnd))
		if err != nil {
			return nil, fmt.Errorf("scenario: body %d: %w", i, err)
		}
		bodies[i] = b
	}
	return bodies, nil
}

func gaussian(rnd *rand.Rand, window float64) float64 {
	return window * rnd.NormFloat64() * 0.2
}

// speed is ±[1e4, 3.5e5) m/s with a log-uniform exponent.
func speed(rnd *rand.Rand) float64 {
	x := rnd.Float64() + 10
	s := x * math.Pow(10, 3+rnd.Float64()*1.5)
	if rnd.Intn(2) == 0 {
		return -s
	}
	return s
}

func randomMass(rnd *rand.Rand) float64 {
	if rnd.Intn(1000)%heavyPeriod == 0 {
		return 2.5e29 + 1e31*rnd.Float64()
	}
	// Strictly positive so every body passes validation.
	return 4.2e24 * (1 - rnd.Float64())
}

func randomName(rnd *rand.Rand) string {
	b := make([]byte, 3+rnd.Intn(6))
	for i := range b {
		b[i] = nameChars[rnd.Intn(len(nameChars))]
	}
	return string(b)
}

func randomColor(rnd *rand.Rand) string {
	c := func() int { return 100 + rnd.Intn(155) }
	return fmt.Sprintf("#%02X%02X%02X", c(), c(), c())
}

// Generator builds a named scenario.
type Generator func(n int, window float64, seed uint64) ([]*body.Body, error)

var generators = map[string]Generator{
	"solar":  func(int, float64, uint64) ([]*body.Body, error) { return SolarSystem(), nil },
	"random": Random,
}

// Build returns the bodies of the named scenario.
func Build(name string, n int, window float64, seed uint64) ([]*body.Body, error) {
	gen, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("scenario: unknown scenario %q (available: %v)", name, Names())
	}
	return gen(n, window, seed)
}

// Names lists the available scenarios in sorted order.
func Names() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
