package octree_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/octree"
	"github.com/san-kum/bhsim/internal/vec"
)

var _ = Describe("Tree", func() {
	var tree *octree.Tree

	build := func(theta float64, bodies []*body.Body) *octree.Tree {
		t, err := octree.New(octree.Config{HalfWidth: universe, Theta: theta})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Build(bodies)).To(Succeed())
		t.Finalize()
		return t
	}

	Describe("construction", func() {
		It("rejects a non-positive theta", func() {
			_, err := octree.New(octree.Config{HalfWidth: universe, Theta: 0})
			Expect(err).To(MatchError(octree.ErrInvalidTheta))
		})

		It("rejects a non-positive half-width", func() {
			_, err := octree.New(octree.Config{HalfWidth: -1, Theta: 1})
			Expect(err).To(MatchError(octree.ErrInvalidBounds))
		})
	})

	Context("when empty", func() {
		BeforeEach(func() {
			tree = build(1, nil)
		})

		It("returns zero force", func() {
			Expect(tree.QueryForce(newBody("probe", 1, vec.Zero))).To(Equal(vec.Zero))
		})

		It("has no mass, bodies or height", func() {
			Expect(tree.Mass()).To(BeZero())
			Expect(tree.Count()).To(BeZero())
			Expect(tree.Height()).To(Equal(-1))
			Expect(tree.Empty()).To(BeTrue())
		})
	})

	Context("with a single body", func() {
		var b *body.Body

		BeforeEach(func() {
			b = newBody("only", 5e24, vec.New(1e10, -2e10, 3e10))
			tree = build(1, []*body.Body{b})
		})

		It("is a single leaf", func() {
			Expect(tree.NodeCount()).To(Equal(1))
			Expect(tree.Height()).To(Equal(0))
			Expect(tree.CountAtLevel(0)).To(Equal(1))
		})

		It("aggregates to the body itself", func() {
			Expect(tree.Mass()).To(Equal(b.Mass))
			Expect(tree.CenterOfMass()).To(Equal(b.Position))
		})

		It("exerts no force on its own occupant", func() {
			Expect(tree.QueryForce(b)).To(Equal(vec.Zero))
		})
	})

	Context("with one body per octant", func() {
		var bodies []*body.Body

		BeforeEach(func() {
			bodies = nil
			for i := 0; i < 8; i++ {
				s := func(bit int) float64 {
					if i&bit != 0 {
						return 1
					}
					return -1
				}
				pos := vec.New(s(1)*universe/2, s(2)*universe/2, s(4)*universe/2)
				bodies = append(bodies, newBody("corner", 1e24, pos))
			}
			tree = build(1, bodies)
		})

		It("splits the root exactly once", func() {
			Expect(tree.Height()).To(Equal(1))
			Expect(tree.NodeCount()).To(Equal(9))
			Expect(tree.CountAtLevel(0)).To(BeZero())
			Expect(tree.CountAtLevel(1)).To(Equal(8))
		})

		It("stores one body in every child of the root", func() {
			leaves := 0
			tree.Walk(func(c octree.Cell) bool {
				if c.Depth == 1 {
					Expect(c.Leaf).To(BeTrue())
					Expect(c.Body).NotTo(BeNil())
					Expect(c.Contains(c.Body.Position)).To(BeTrue())
					leaves++
				}
				return true
			})
			Expect(leaves).To(Equal(8))
		})

		It("places the center of mass at the origin", func() {
			Expect(tree.CenterOfMass().Length()).To(BeNumerically("<", 1e-3))
		})

		It("grows one level when a ninth body shares an octant", func() {
			extra := newBody("ninth", 1e24, vec.New(universe/4, universe/4, universe/4))
			t2 := build(1, append(bodies, extra))
			Expect(t2.Count()).To(Equal(9))
			Expect(t2.Height()).To(Equal(2))
			Expect(t2.CountAtLevel(1)).To(Equal(7))
			Expect(t2.CountAtLevel(2)).To(Equal(2))
		})
	})

	Describe("aggregation", func() {
		var bodies []*body.Body

		BeforeEach(func() {
			bodies = cluster(7, 200)
		})

		It("sums the total mass", func() {
			tree = build(1, bodies)
			total := 0.0
			for _, b := range bodies {
				total += b.Mass
			}
			Expect(tree.Mass()).To(BeNumerically("~", total, total*1e-12))
		})

		It("places the center of mass at the weighted centroid regardless of order", func() {
			var weighted vec.Vec3
			total := 0.0
			for _, b := range bodies {
				weighted = weighted.Add(b.Position.Scale(b.Mass))
				total += b.Mass
			}
			want := weighted.Scale(1 / total)

			for _, seed := range []uint64{1, 2, 3} {
				t := build(1, shuffled(bodies, seed))
				Expect(t.CenterOfMass().DistanceTo(want)).To(BeNumerically("<", universe*1e-12))
			}
		})

		It("counts every inserted body regardless of order", func() {
			for _, seed := range []uint64{4, 5} {
				Expect(build(1, shuffled(bodies, seed)).Count()).To(Equal(len(bodies)))
			}
		})

		It("stores every body inside the cells on its path", func() {
			tree = build(1, bodies)
			for _, b := range bodies {
				path, ok := tree.Locate(b)
				Expect(ok).To(BeTrue())
				for _, c := range path {
					Expect(c.Contains(b.Position)).To(BeTrue())
				}
				Expect(path[len(path)-1].Body).To(BeIdenticalTo(b))
			}
		})
	})

	Describe("force queries", func() {
		var bodies []*body.Body

		BeforeEach(func() {
			bodies = cluster(11, 150)
		})

		It("converges to direct summation as theta goes to zero", func() {
			tree = build(1e-9, bodies)
			for _, b := range bodies[:20] {
				Expect(relErr(tree.QueryForce(b), direct(b, bodies, 0))).To(BeNumerically("<", 1e-9))
			}
		})

		It("stays close to direct summation at theta 0.5", func() {
			tree = build(0.5, bodies)
			sum := 0.0
			for _, b := range bodies[:20] {
				sum += relErr(tree.QueryForce(b), direct(b, bodies, 0))
			}
			Expect(sum / 20).To(BeNumerically("<", 0.05))
		})

		It("collapses to one root-level evaluation as theta goes to infinity", func() {
			tree = build(1e12, bodies)
			root := tree.Root()
			for _, b := range bodies[:20] {
				m := root.Mass - b.Mass
				pos := root.Position.Scale(root.Mass).Sub(b.Position.Scale(b.Mass)).Scale(1 / m)
				want := b.GravitationalForce(body.PointMass{Mass: m, Position: pos}, 0)
				Expect(relErr(tree.QueryForce(b), want)).To(BeNumerically("<", 1e-9))
			}
		})

		It("never includes a self contribution", func() {
			a := newBody("a", 1e24, vec.New(1e10, 1e10, 1e10))
			b := newBody("b", 1e24, vec.New(1.5e10, 1e10, 1e10))
			want := a.ForceFrom(b, 0)
			for _, theta := range []float64{1e-6, 0.5, 1, 2, 1e9} {
				t := build(theta, []*body.Body{a, b})
				Expect(relErr(t.QueryForce(a), want)).To(BeNumerically("<", 1e-9), "theta %g", theta)
			}
		})

		It("compares occupants by identity, not by value", func() {
			a := newBody("twin", 1e24, vec.New(-1e10, 0, 0))
			b := newBody("twin", 1e24, vec.New(1e10, 0, 0))
			t := build(1e-3, []*body.Body{a, b})
			Expect(t.QueryForce(a).Length()).To(BeNumerically(">", 0))
			Expect(t.QueryForce(b).Length()).To(BeNumerically(">", 0))
		})

		It("reproduces the two-body force", func() {
			a := newBody("a", 1e24, vec.Zero)
			b := newBody("b", 1e24, vec.New(1e9, 0, 0))
			t := build(1, []*body.Body{a, b})

			want := body.G * 1e24 * 1e24 / (1e9 * 1e9)
			fa, fb := t.QueryForce(a), t.QueryForce(b)
			Expect(fa.Length()).To(BeNumerically("~", want, want*1e-9))
			Expect(fa.X()).To(BeNumerically(">", 0))
			Expect(fb.X()).To(BeNumerically("<", 0))
			Expect(fa.Add(fb).Length()).To(BeNumerically("<", want*1e-9))
		})

		It("refuses checked queries before Finalize", func() {
			t, err := octree.New(octree.Config{HalfWidth: universe, Theta: 1})
			Expect(err).NotTo(HaveOccurred())
			a := newBody("a", 1, vec.Zero)
			Expect(t.Insert(a)).To(Succeed())
			_, err = t.Query(a)
			Expect(err).To(MatchError(octree.ErrNotFinalized))

			t.Finalize()
			_, err = t.Query(a)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("insertion failures", func() {
		BeforeEach(func() {
			var err error
			tree, err = octree.New(octree.Config{HalfWidth: universe, Theta: 1})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects bodies outside the universe", func() {
			err := tree.Insert(newBody("rogue", 1, vec.New(2*universe, 0, 0)))
			Expect(err).To(MatchError(octree.ErrOutOfBounds))

			var be *octree.BoundsError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(be.Body).To(Equal("rogue"))
			Expect(tree.Empty()).To(BeTrue())
		})

		It("accepts bodies on the universe boundary", func() {
			Expect(tree.Insert(newBody("edge", 1, vec.Splat(universe)))).To(Succeed())
			Expect(tree.Insert(newBody("edge", 1, vec.Splat(-universe)))).To(Succeed())
			Expect(tree.Count()).To(Equal(2))
		})

		It("keeps the in-bounds bodies of a partly invalid build", func() {
			bodies := []*body.Body{
				newBody("in", 1, vec.New(1, 2, 3)),
				newBody("out", 1, vec.New(0, -3*universe, 0)),
				newBody("in", 1, vec.New(-1, -2, -3)),
			}
			err := tree.Build(bodies)
			Expect(err).To(MatchError(octree.ErrOutOfBounds))
			Expect(tree.Count()).To(Equal(2))
		})

		It("rejects inserting the same body twice", func() {
			b := newBody("a", 1, vec.Zero)
			Expect(tree.Insert(b)).To(Succeed())
			Expect(tree.Insert(b)).To(MatchError(octree.ErrDuplicate))
		})

		It("stops subdividing coincident bodies", func() {
			Expect(tree.Insert(newBody("a", 1, vec.New(5, 5, 5)))).To(Succeed())
			Expect(tree.Insert(newBody("b", 1, vec.New(5, 5, 5)))).To(MatchError(octree.ErrTooDeep))
			Expect(tree.Height()).To(Equal(octree.MaxDepth))
		})
	})

	Describe("boundaries", func() {
		It("sends a body on a splitting plane to the positive side", func() {
			a := newBody("plane", 1, vec.Zero)
			b := newBody("neg", 1, vec.Splat(-1e10))
			t := build(1, []*body.Body{a, b})
			path, ok := t.Locate(a)
			Expect(ok).To(BeTrue())
			leaf := path[len(path)-1]
			Expect(leaf.Center.X()).To(BeNumerically(">", 0))
			Expect(leaf.Center.Y()).To(BeNumerically(">", 0))
			Expect(leaf.Center.Z()).To(BeNumerically(">", 0))
		})
	})

	Describe("reuse", func() {
		It("rebuilds from scratch after Reset", func() {
			bodies := cluster(3, 50)
			tree = build(1, bodies)
			tree.Reset()
			Expect(tree.Empty()).To(BeTrue())
			Expect(tree.Finalized()).To(BeFalse())

			Expect(tree.Build(bodies[:10])).To(Succeed())
			tree.Finalize()
			Expect(tree.Count()).To(Equal(10))
		})
	})
})
