// Package viz draws the disk in the terminal.
//
//   - [Canvas]: Braille pixel canvas, 2x4 dots per cell
//   - [Camera]: rotates and projects readback points onto the canvas
//   - [LiveModel]: Bubble Tea program that steps a simulation and shows it
//   - [PickPreset]: menu for choosing a named configuration
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S     - Single step while paused
//	R     - Re-seed the disk
//	X/Y/Z - Rotate the view (shift reverses)
//	+/-   - Zoom
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
