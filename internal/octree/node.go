package octree

import (
	"fmt"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/vec"
)

// MaxDepth bounds subdivision. At the default universe size a depth-64 cell
// is far below a meter across, so reaching it means coincident bodies.
const MaxDepth = 64

// node is one cube of the partition. A node is a leaf iff child == 0; the
// root always sits at index 0 so no child can ever have that index.
type node struct {
	center vec.Vec3
	length float64
	depth  int32
	// child is the arena index of the first of eight contiguous children.
	child    int32
	occupant *body.Body

	// valid after Finalize
	mass float64
	com  vec.Vec3
}

func (n *node) isLeaf() bool { return n.child == 0 }

func (n *node) bounds() (upper, lower vec.Vec3) {
	half := vec.Splat(n.length / 2)
	return n.center.Add(half), n.center.Sub(half)
}

func (n *node) contains(p vec.Vec3) bool {
	upper, lower := n.bounds()
	return p.Within(upper, lower)
}

// octant picks the child of a node centered at c that owns p. Bit 0 is set
// on the +x side, bit 1 on +y, bit 2 on +z; a coordinate equal to the
// center goes to the positive side.
func octant(c, p vec.Vec3) int32 {
	var o int32
	if p.X() >= c.X() {
		o |= 1
	}
	if p.Y() >= c.Y() {
		o |= 2
	}
	if p.Z() >= c.Z() {
		o |= 4
	}
	return o
}

func sign(bit int32) float64 {
	if bit != 0 {
		return 1
	}
	return -1
}

// subdivide turns leaf idx into an internal node with eight empty children
// of half its edge length. It is the only place a node stops being a leaf.
func (t *Tree) subdivide(idx int32) {
	parent := t.nodes[idx]
	q := parent.length / 4
	first := int32(len(t.nodes))
	for i := int32(0); i < 8; i++ {
		off := vec.New(sign(i&1)*q, sign(i&2)*q, sign(i&4)*q)
		t.nodes = append(t.nodes, node{
			center: parent.center.Add(off),
			length: parent.length / 2,
			depth:  parent.depth + 1,
		})
	}
	t.nodes[idx].child = first
}

func (t *Tree) childFor(idx int32, p vec.Vec3) int32 {
	n := &t.nodes[idx]
	return n.child + octant(n.center, p)
}

// insert places b in the subtree rooted at idx. The caller has already
// checked that b lies inside that subtree's cube.
func (t *Tree) insert(idx int32, b *body.Body) error {
	for {
		n := &t.nodes[idx]
		if n.isLeaf() {
			if n.occupant == nil {
				n.occupant = b
				return nil
			}
			if n.depth >= MaxDepth {
				return fmt.Errorf("%w: %q and %q at %s", ErrTooDeep, n.occupant.Name, b.Name, b.Position)
			}
			prev := n.occupant
			t.subdivide(idx)
			// subdivide may have grown the arena
			t.nodes[idx].occupant = nil
			t.nodes[t.childFor(idx, prev.Position)].occupant = prev
		}
		idx = t.childFor(idx, b.Position)
	}
}

// aggregateMass sums masses bottom-up. Children always follow their parent
// in the arena, so one reverse sweep visits every child before its parent.
func (t *Tree) aggregateMass() {
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := &t.nodes[i]
		if n.isLeaf() {
			n.mass = 0
			if n.occupant != nil {
				n.mass = n.occupant.Mass
			}
			continue
		}
		m := 0.0
		for c := n.child; c < n.child+8; c++ {
			m += t.nodes[c].mass
		}
		n.mass = m
	}
}

// aggregateCenterOfMass computes mass-weighted centroids bottom-up. It reads
// the masses left by aggregateMass.
func (t *Tree) aggregateCenterOfMass() {
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := &t.nodes[i]
		if n.isLeaf() {
			n.com = vec.Zero
			if n.occupant != nil {
				n.com = n.occupant.Position
			}
			continue
		}
		if n.mass == 0 {
			n.com = vec.Zero
			continue
		}
		var sum vec.Vec3
		for c := n.child; c < n.child+8; c++ {
			sum = sum.Add(t.nodes[c].com.Scale(t.nodes[c].mass))
		}
		n.com = sum.Scale(1 / n.mass)
	}
}

// query returns the approximate force on target from the subtree at idx.
// inside is true when target is stored somewhere below idx.
func (t *Tree) query(idx int32, target *body.Body, inside bool) vec.Vec3 {
	n := &t.nodes[idx]
	if n.isLeaf() {
		if n.occupant == nil || n.occupant == target {
			return vec.Zero
		}
		return target.GravitationalForce(n.occupant.PointMass(), t.softening)
	}

	d := target.Position.DistanceTo(n.com)
	if n.length/d < t.theta {
		pm := body.PointMass{Mass: n.mass, Position: n.com}
		if inside {
			pm = without(pm, target)
			if pm.Mass <= 0 {
				return vec.Zero
			}
		}
		return target.GravitationalForce(pm, t.softening)
	}

	var f vec.Vec3
	own := octant(n.center, target.Position)
	for i := int32(0); i < 8; i++ {
		f = f.Add(t.query(n.child+i, target, inside && i == own))
	}
	return f
}

// without removes b's own contribution from an aggregate that contains it.
func without(pm body.PointMass, b *body.Body) body.PointMass {
	m := pm.Mass - b.Mass
	if m <= 0 {
		return body.PointMass{}
	}
	weighted := pm.Position.Scale(pm.Mass).Sub(b.Position.Scale(b.Mass))
	return body.PointMass{Mass: m, Position: weighted.Scale(1 / m)}
}
