package octree

import (
	"errors"
	"fmt"

	"github.com/san-kum/bhsim/internal/vec"
)

var (
	// ErrOutOfBounds indicates a body outside the universe cube.
	ErrOutOfBounds = errors.New("octree: body outside universe bounds")

	// ErrTooDeep indicates two bodies too close together to be separated
	// within the maximum subdivision depth.
	ErrTooDeep = errors.New("octree: maximum subdivision depth reached")

	// ErrDuplicate indicates the same body was inserted twice.
	ErrDuplicate = errors.New("octree: body already inserted")

	// ErrInvalidTheta indicates a non-positive acceptance threshold.
	ErrInvalidTheta = errors.New("octree: theta must be positive")

	// ErrInvalidBounds indicates a non-positive universe half-width.
	ErrInvalidBounds = errors.New("octree: universe half-width must be positive")

	// ErrNotFinalized indicates a force query before Finalize.
	ErrNotFinalized = errors.New("octree: tree not finalized")
)

// BoundsError reports which body fell outside the universe cube.
type BoundsError struct {
	Body      string
	Position  vec.Vec3
	HalfWidth float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("octree: body %q at %s outside universe half-width %.3e", e.Body, e.Position, e.HalfWidth)
}

func (e *BoundsError) Unwrap() error { return ErrOutOfBounds }
