// Package surface provides star-field drawing targets that do not need a
// window: a braille terminal canvas and a call recorder.
package surface
