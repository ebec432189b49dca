package body

import "errors"

var (
	// ErrInvalidMass indicates a non-positive or non-finite mass.
	ErrInvalidMass = errors.New("body: mass must be positive")

	// ErrInvalidRadius indicates a non-positive or non-finite radius.
	ErrInvalidRadius = errors.New("body: radius must be positive")

	// ErrInvalidMode indicates a negative softening or non-positive time scale.
	ErrInvalidMode = errors.New("body: invalid mode")
)
