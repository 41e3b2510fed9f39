// Package viz renders the star field live in a terminal.
//
// The [Model] is a Bubble Tea program that hosts a [starfield.Renderer] on a
// braille canvas. Frames are requested through a [frame.Queue] which the
// model fires on every tick, so drawing always happens on the program's
// update goroutine.
//
// # Key Bindings
//
//	Space - Pause/Resume (stops and restarts the renderer)
//	R     - Reseed the field
//	T     - Cycle color themes
//	?     - Toggle the full key list
//	Q     - Quit
//
// Terminal resizes resize the canvas and reseed the field for the new
// viewport. A [ConfigMsg] swaps the theme and frame rate of a running view.
package viz
