// Package sim drives the per-tick Barnes-Hut loop.
//
// Every tick the [Simulator] rebuilds its octree from the current body
// positions, aggregates it, queries the net force on each body and lets
// each body integrate itself:
//
//	s, _ := sim.New(bodies, sim.DefaultConfig())
//	result, _ := s.Run(ctx, 1000)
//
// The force queries are the only parallel phase. With Workers > 1 they are
// spread over an errgroup once the tree is finalized; construction,
// aggregation and integration stay on the calling goroutine.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Observers receive a [Frame]
// whose tree is reused on the next tick and must not be retained.
package sim
