package starfield

import (
	"errors"
	"image/color"
	"math"
	"time"
)

const (
	// Count is the fixed number of particles in a field.
	Count = 200
	// Threshold is the distance below which two particles are connected.
	Threshold = 100.0

	MinRadius   = 0.5
	RadiusRange = 2.0
	MinSpeed    = 0.1
	SpeedRange  = 0.5

	// initial opacity before the first recompute
	minOpacity   = 0.2
	opacityRange = 0.8

	LineWidth = 1.0
)

var ErrSurfaceUnavailable = errors.New("starfield: drawing surface unavailable")

// Color is an RGB color with a fractional alpha in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// Alpha returns c with alpha a.
func (c Color) Alpha(a float64) Color {
	c.A = a
	return c
}

func (c Color) NRGBA() color.NRGBA {
	a := math.Round(clamp01(c.A) * 255)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a)}
}

var (
	// Accent is the default star color.
	Accent = Color{R: 59, G: 130, B: 246, A: 1}
	// ConnectorAlpha is the stroke alpha of connector lines.
	ConnectorAlpha = 0.1
)

// Size is a viewport in logical units.
type Size struct {
	Width, Height int
}

// Clamp raises non-positive dimensions to 1.
func (s Size) Clamp() Size {
	if s.Width < 1 {
		s.Width = 1
	}
	if s.Height < 1 {
		s.Height = 1
	}
	return s
}

type Point struct {
	X, Y float64
}

type Particle struct {
	Position Point
	Radius   float64
	Opacity  float64
	Speed    float64
}

// Surface is a host drawing target. Context returns ErrSurfaceUnavailable
// (or another error) once the target has gone away.
type Surface interface {
	Context() (Context, error)
}

// Context is a 2D drawing context.
type Context interface {
	SetSize(s Size)
	Clear()
	FillCircle(x, y, r float64, c Color)
	StrokeLine(x0, y0, x1, y1, width float64, c Color)
}

// Rand is the random source used for seeding and wraparound. *rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
}

// FrameStats describes one rendered frame.
type FrameStats struct {
	Frame       int
	Elapsed     time.Duration
	Circles     int
	Lines       int
	Wrapped     int
	MeanOpacity float64
}

type Observer interface {
	OnFrame(s FrameStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FrameStats)

func (f ObserverFunc) OnFrame(s FrameStats) { f(s) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
