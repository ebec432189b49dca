package metrics

import (
	"github.com/san-kum/bhsim/internal/sim"
)

// TreeHeight is the tallest octree seen. Frames without a tree are ignored.
type TreeHeight struct {
	name string
	max  int
}

func NewTreeHeight() *TreeHeight {
	return &TreeHeight{name: "tree_height", max: -1}
}

func (h *TreeHeight) Name() string { return h.name }

func (h *TreeHeight) Observe(f sim.Frame) {
	if f.Tree == nil {
		return
	}
	h.max = max(h.max, f.Tree.Height())
}

func (h *TreeHeight) Value() float64 { return float64(h.max) }
func (h *TreeHeight) Reset()         { h.max = -1 }

// NodesPerBody is the mean ratio of allocated nodes to stored bodies.
type NodesPerBody struct {
	name    string
	sum     float64
	samples int
}

func NewNodesPerBody() *NodesPerBody {
	return &NodesPerBody{name: "nodes_per_body"}
}

func (n *NodesPerBody) Name() string { return n.name }

func (n *NodesPerBody) Observe(f sim.Frame) {
	if f.Tree == nil {
		return
	}
	count := f.Tree.Count()
	if count == 0 {
		return
	}
	n.sum += float64(f.Tree.NodeCount()) / float64(count)
	n.samples++
}

func (n *NodesPerBody) Value() float64 {
	if n.samples == 0 {
		return 0
	}
	return n.sum / float64(n.samples)
}

func (n *NodesPerBody) Reset() {
	n.sum = 0
	n.samples = 0
}

// Standard returns the metrics every run records.
func Standard(universe float64) []sim.Metric {
	return []sim.Metric{
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewContainment(universe),
		NewTreeHeight(),
		NewNodesPerBody(),
	}
}
