package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBodies indicates a simulator created without bodies.
	ErrNoBodies = errors.New("sim: no bodies")

	// ErrInvalidState indicates a NaN or Inf position or velocity after
	// integration.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates an unusable configuration value.
	ErrInvalidConfig = errors.New("sim: invalid config")
)

// TickError wraps an error with the tick it happened on.
type TickError struct {
	Tick    int
	Body    string
	Wrapped error
}

func (e *TickError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("tick %d (%s): %v", e.Tick, e.Body, e.Wrapped)
	}
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
}

func (e *TickError) Unwrap() error { return e.Wrapped }
