// Package viz draws the simulation in the terminal.
//
// Bodies are projected onto a Braille [Canvas] by a rotatable [Projector]
// whose scale comes from the display window, not the universe bounds.
// [Model] is the Bubble Tea program behind `bhsim live`.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	O     - Toggle octant boundaries
//	+/-   - Raise/lower theta
//	Z/X   - Zoom in/out
//	Arrows- Rotate the view
//	C     - Reset the view
//	T     - Cycle color themes
//	Q     - Quit
package viz
