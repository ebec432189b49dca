package octree

import (
	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/vec"
)

// Cell describes one node of the tree for diagnostics and drawing.
type Cell struct {
	Center vec.Vec3
	Length float64
	Depth  int
	Leaf   bool
	Body   *body.Body
	Mass   float64
}

// Contains reports whether p lies in the cell's closed cube.
func (c Cell) Contains(p vec.Vec3) bool {
	half := vec.Splat(c.Length / 2)
	return p.Within(c.Center.Add(half), c.Center.Sub(half))
}

func (t *Tree) cell(idx int32) Cell {
	n := &t.nodes[idx]
	return Cell{
		Center: n.center,
		Length: n.length,
		Depth:  int(n.depth),
		Leaf:   n.isLeaf(),
		Body:   n.occupant,
		Mass:   n.mass,
	}
}

// Count returns the number of bodies stored in the tree.
func (t *Tree) Count() int {
	count := 0
	for i := range t.nodes {
		if t.nodes[i].occupant != nil {
			count++
		}
	}
	return count
}

// NodeCount returns the number of allocated nodes.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Height is the depth of the deepest node: 0 for a single leaf root, 1 when
// the root has been split once, and so on. An empty tree has height -1.
func (t *Tree) Height() int {
	h := -1
	for i := range t.nodes {
		if d := int(t.nodes[i].depth); d > h {
			h = d
		}
	}
	return h
}

// CountAtLevel returns the number of bodies stored at the given depth, the
// root being level 0.
func (t *Tree) CountAtLevel(level int) int {
	count := 0
	for i := range t.nodes {
		n := &t.nodes[i]
		if int(n.depth) == level && n.occupant != nil {
			count++
		}
	}
	return count
}

// Walk visits every node in depth-first order, parents before children.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(Cell) bool) {
	if len(t.nodes) == 0 {
		return
	}
	t.walk(0, fn)
}

func (t *Tree) walk(idx int32, fn func(Cell) bool) {
	if !fn(t.cell(idx)) {
		return
	}
	n := &t.nodes[idx]
	if n.isLeaf() {
		return
	}
	for c := n.child; c < n.child+8; c++ {
		t.walk(c, fn)
	}
}

// Occupied returns the cells holding a body, in depth-first order.
func (t *Tree) Occupied() []Cell {
	var cells []Cell
	t.Walk(func(c Cell) bool {
		if c.Body != nil {
			cells = append(cells, c)
		}
		return true
	})
	return cells
}

// Locate returns the leaf storing b and the chain of cells from the root
// down to it.
func (t *Tree) Locate(b *body.Body) (path []Cell, ok bool) {
	if len(t.nodes) == 0 {
		return nil, false
	}
	idx := int32(0)
	for {
		path = append(path, t.cell(idx))
		n := &t.nodes[idx]
		if n.isLeaf() {
			return path, n.occupant == b
		}
		idx = t.childFor(idx, b.Position)
	}
}
