package viz

import (
	"sort"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/octree"
	"github.com/san-kum/bhsim/internal/vec"
)

// cubeEdges indexes corner pairs, corners numbered like octants.
var cubeEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Scene draws bodies and, optionally, the octree cells that hold mass.
type Scene struct {
	Canvas      *Canvas
	Projector   *Projector
	Theme       Theme
	DrawOctants bool
}

// Draw clears the canvas and renders one frame. It returns how many bodies
// landed on the canvas.
func (s *Scene) Draw(bodies []*body.Body, tree *octree.Tree) int {
	s.Canvas.Clear()
	if s.DrawOctants && tree != nil {
		s.drawOctants(tree)
	}
	return s.drawBodies(bodies)
}

func (s *Scene) drawOctants(tree *octree.Tree) {
	w, h := s.Canvas.Pixels()
	tree.Walk(func(c octree.Cell) bool {
		if c.Mass == 0 {
			return false
		}
		half := c.Length / 2
		var xs, ys [8]int
		for i := range 8 {
			corner := c.Center.Add(vec.New(sign(i&1), sign(i&2), sign(i&4)).Scale(half))
			xs[i], ys[i], _, _ = s.Projector.Project(corner, w, h)
		}
		for _, e := range cubeEdges {
			s.Canvas.DrawLine(xs[e[0]], ys[e[0]], xs[e[1]], ys[e[1]], string(s.Theme.Octant))
		}
		return true
	})
}

func sign(bit int) float64 {
	if bit != 0 {
		return 1
	}
	return -1
}

type projected struct {
	x, y, r int
	depth   float64
	color   string
}

// drawBodies paints far bodies first so nearer ones own the cell color.
func (s *Scene) drawBodies(bodies []*body.Body) int {
	w, h := s.Canvas.Pixels()
	visible := make([]projected, 0, len(bodies))
	for _, b := range bodies {
		x, y, depth, ok := s.Projector.Project(b.Position, w, h)
		if !ok {
			continue
		}
		color := b.Color
		if color == "" {
			color = string(s.Theme.Body)
		}
		visible = append(visible, projected{
			x: x, y: y, depth: depth, color: color,
			r: s.Projector.Radius(b.DisplayRadius(), w, h),
		})
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].depth < visible[j].depth })
	for _, p := range visible {
		s.Canvas.FillDisc(p.x, p.y, p.r, p.color)
	}
	return len(visible)
}
