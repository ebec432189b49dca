// Package integrators advances bodies in time around a single force
// evaluation per tick.
//
// A tick calls Predict, then the caller rebuilds the tree and stores the
// net force in every body, then Correct. Predict sees the previous tick's
// forces, Correct sees the fresh ones.
package integrators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/bhsim/internal/body"
)

var ErrUnknownIntegrator = errors.New("unknown integrator")

type Integrator interface {
	Name() string
	Predict(bodies []*body.Body, dt float64)
	Correct(bodies []*body.Body, dt float64)
}

const (
	NameEuler    = "euler"
	NameLeapfrog = "leapfrog"
)

var registry = map[string]func() Integrator{
	NameEuler:    func() Integrator { return NewEuler() },
	NameLeapfrog: func() Integrator { return NewLeapfrog() },
}

// New returns the named integrator; an empty name selects Euler.
func New(name string) (Integrator, error) {
	if name == "" {
		name = NameEuler
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownIntegrator, name, Names())
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
