// Package octree implements the Barnes-Hut spatial partition used to
// approximate gravitational forces in O(n log n).
//
// A [Tree] is rebuilt from scratch every tick:
//
//	t, _ := octree.New(octree.Config{HalfWidth: 3e11, Theta: 1})
//	if err := t.Build(bodies); err != nil { ... }
//	t.Finalize()
//	for _, b := range bodies {
//	    b.SetForce(t.QueryForce(b))
//	}
//
// Nodes live in a single arena slice and refer to their children by index;
// the eight children of a node are always allocated contiguously, after
// their parent. [Tree.Finalize] relies on that ordering to aggregate mass
// and center of mass in two reverse sweeps.
//
// # Thread Safety
//
// Building and finalizing are sequential. Once Finalize has returned, any
// number of goroutines may call QueryForce concurrently as long as nothing
// inserts into the tree or moves a body until they are done.
package octree
