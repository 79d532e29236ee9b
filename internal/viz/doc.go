// Package viz renders a running particle engine in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: owns the engine and advances it on every frame tick
//   - [Canvas]: braille dot grid with a colour class per cell
//   - [Palette]: evenly spaced hues, shared with the window renderer
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	S     - Single tick while paused
//	R     - Rebuild with the next seed
//	+/-   - Ticks per frame
//	M     - Show the force matrix
//	?     - Show help overlay
package viz
