package octree

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/vec"
)

// DefaultTheta is the usual operating point for the acceptance criterion.
const DefaultTheta = 1.0

type Config struct {
	// HalfWidth is half the edge of the universe cube centered at the origin.
	HalfWidth float64
	// Theta is the multipole acceptance threshold: an internal node whose
	// edge length divided by its distance to the target is below Theta is
	// treated as a single point mass.
	Theta float64
	// Softening is passed to the force law.
	Softening float64
}

func (c Config) Validate() error {
	if !(c.HalfWidth > 0) || math.IsInf(c.HalfWidth, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidBounds, c.HalfWidth)
	}
	if !(c.Theta > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidTheta, c.Theta)
	}
	if !(c.Softening >= 0) {
		return fmt.Errorf("octree: softening must be non-negative, got %g", c.Softening)
	}
	return nil
}

// Tree is a Barnes-Hut octree over a fixed universe cube.
type Tree struct {
	halfWidth float64
	theta     float64
	softening float64

	nodes     []node
	members   map[*body.Body]struct{}
	finalized bool
}

func New(cfg Config) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tree{
		halfWidth: cfg.HalfWidth,
		theta:     cfg.Theta,
		softening: cfg.Softening,
		members:   make(map[*body.Body]struct{}),
	}, nil
}

func (t *Tree) Theta() float64     { return t.theta }
func (t *Tree) HalfWidth() float64 { return t.halfWidth }

// SetTheta changes the acceptance threshold for subsequent queries.
func (t *Tree) SetTheta(theta float64) error {
	if !(theta > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidTheta, theta)
	}
	t.theta = theta
	return nil
}

// Reset empties the tree but keeps the arena's capacity for the next build.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	clear(t.members)
	t.finalized = false
}

// Empty reports whether nothing has been inserted since the last Reset.
func (t *Tree) Empty() bool { return len(t.nodes) == 0 }

// Insert adds b to the tree, creating the root on first use. Bodies outside
// the universe cube are rejected with a *BoundsError.
func (t *Tree) Insert(b *body.Body) error {
	if b == nil {
		return nil
	}
	upper, lower := vec.Splat(t.halfWidth), vec.Splat(-t.halfWidth)
	if !b.Position.Within(upper, lower) {
		return &BoundsError{Body: b.Name, Position: b.Position, HalfWidth: t.halfWidth}
	}
	if _, ok := t.members[b]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, b.Name)
	}
	if len(t.nodes) == 0 {
		t.nodes = append(t.nodes, node{center: vec.Zero, length: 2 * t.halfWidth})
	}
	if err := t.insert(0, b); err != nil {
		return err
	}
	t.members[b] = struct{}{}
	t.finalized = false
	return nil
}

// Build inserts every body. Bodies that cannot be inserted are skipped and
// reported together in the returned error; the rest of the tree is usable.
func (t *Tree) Build(bodies []*body.Body) error {
	var errs []error
	for _, b := range bodies {
		if err := t.Insert(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Finalize aggregates total mass and then center of mass for every node.
// The order matters: centers are weighted by the masses of the first pass.
func (t *Tree) Finalize() {
	if len(t.nodes) == 0 {
		t.finalized = true
		return
	}
	t.aggregateMass()
	t.aggregateCenterOfMass()
	t.finalized = true
}

// Finalized reports whether aggregates are current.
func (t *Tree) Finalized() bool { return t.finalized }

// QueryForce returns the approximate net force on b from every other body
// in the tree. b itself never contributes, whatever theta is. The tree must
// be finalized; use Query for a checked variant.
func (t *Tree) QueryForce(b *body.Body) vec.Vec3 {
	if len(t.nodes) == 0 {
		return vec.Zero
	}
	_, inside := t.members[b]
	return t.query(0, b, inside)
}

// Query is QueryForce with a check that Finalize ran after the last insert.
func (t *Tree) Query(b *body.Body) (vec.Vec3, error) {
	if !t.finalized {
		return vec.Zero, ErrNotFinalized
	}
	return t.QueryForce(b), nil
}

// Mass is the total mass of the tree after Finalize.
func (t *Tree) Mass() float64 {
	if len(t.nodes) == 0 {
		return 0
	}
	return t.nodes[0].mass
}

// CenterOfMass is the mass-weighted centroid of the tree after Finalize.
func (t *Tree) CenterOfMass() vec.Vec3 {
	if len(t.nodes) == 0 {
		return vec.Zero
	}
	return t.nodes[0].com
}

// Root returns the aggregate of the whole tree as a point mass.
func (t *Tree) Root() body.PointMass {
	return body.PointMass{Mass: t.Mass(), Position: t.CenterOfMass()}
}
