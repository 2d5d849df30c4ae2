// Package viz renders chains and playback results in the terminal.
//
//   - [Canvas]: braille pixel canvas, drawn through an orbit [Camera]
//   - [PoseTable]: per-joint state and world pose
//   - [Plot], [PlotJoints], [PlotEnd]: asciigraph charts of recorded runs
//   - [Jog]: Bubble Tea model for jogging joints interactively
//   - [Replay]: Bubble Tea model animating recorded playback frames
//
// # Jog Key Bindings
//
//	Up/Down    - Select joint
//	Left/Right - Jog selected joint (clamped to limits)
//	[ ]        - Halve/double the jog step
//	R          - Return to the home pose
//	W A S D    - Orbit camera
//	+ -        - Zoom
//	T          - Cycle color themes
//	?          - Show the joint tree
//
// # Replay Key Bindings
//
//	Space      - Pause/resume
//	[ ]        - Step one frame
//	R          - Restart
//	O          - Toggle looping
package viz
