// Package body models the point masses of the simulation.
//
// A [Body] owns its own physics: it evaluates the pairwise gravitational
// force against another mass and integrates its motion with semi-implicit
// Euler. The softening length and the time-scale multiplier are supplied
// together as a [Mode] rather than read from global state:
//
//	mode := body.Accelerated
//	f := earth.ForceFrom(sun, mode.Softening)
//	earth.ApplyForceAndMove(f, mode.TimeScale)
//
// Aggregated subtrees of the octree are represented by the lighter
// [PointMass], which carries only mass and position.
package body
