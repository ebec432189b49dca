package integrators

import "github.com/san-kum/bhsim/internal/body"

// Euler is semi-implicit (symplectic) Euler: velocity from the force
// first, then position from the new velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return NameEuler }

func (e *Euler) Predict(bodies []*body.Body, dt float64) {}

func (e *Euler) Correct(bodies []*body.Body, dt float64) {
	for _, b := range bodies {
		b.Step(dt)
	}
}
