package integrators

import "github.com/san-kum/bhsim/internal/body"

// Leapfrog is the drift-kick-drift form: forces are evaluated at the
// half-step position, so a tick still needs one tree build.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return NameLeapfrog }

func (l *Leapfrog) Predict(bodies []*body.Body, dt float64) {
	halfDt := 0.5 * dt
	for _, b := range bodies {
		b.Position = b.Position.Add(b.Velocity.Scale(halfDt))
	}
}

func (l *Leapfrog) Correct(bodies []*body.Body, dt float64) {
	halfDt := 0.5 * dt
	for _, b := range bodies {
		b.Velocity = b.Velocity.Add(b.Force.Scale(dt / b.Mass))
		b.Position = b.Position.Add(b.Velocity.Scale(halfDt))
	}
}
