// Package starfield implements the animated star-field background.
//
// A [Renderer] owns a fixed set of [Count] particles. Every frame it clears
// its [Surface], draws each star as a filled circle whose opacity pulses as a
// traveling sine wave, lets it drift down and wrap back above the top edge,
// then joins every pair of stars closer than [Threshold] with a faint line.
//
// Frames are paced by a [frame.Scheduler] and timed by a [frame.Clock], so
// the same renderer runs under a terminal UI, a window, or a test that fires
// frames by hand. The renderer is purely decorative: a missing or vanished
// surface stops the loop quietly and nothing is reported to the caller.
package starfield
