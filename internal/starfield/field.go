package starfield

import (
	"math"
	"time"
)

// Field is one seeded particle set together with the viewport it was seeded
// against. A Field is replaced wholesale on resize, never resized in place.
type Field struct {
	size      Size
	particles []Particle
}

// NewField seeds Count particles uniformly inside size (clamped to 1x1).
func NewField(size Size, rng Rand) *Field {
	size = size.Clamp()
	w, h := float64(size.Width), float64(size.Height)
	ps := make([]Particle, Count)
	for i := range ps {
		ps[i] = Particle{
			Position: Point{X: rng.Float64() * w, Y: rng.Float64() * h},
			Radius:   rng.Float64()*RadiusRange + MinRadius,
			Opacity:  rng.Float64()*opacityRange + minOpacity,
			Speed:    rng.Float64()*SpeedRange + MinSpeed,
		}
	}
	return &Field{size: size, particles: ps}
}

func (f *Field) Size() Size { return f.size }

func (f *Field) Len() int { return len(f.particles) }

// Particles returns a copy of the particle set.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Pulse is the traveling-wave brightness of a star at horizontal position x,
// elapsed time after the loop started.
func Pulse(elapsed time.Duration, x float64) float64 {
	ms := float64(elapsed) / float64(time.Millisecond)
	return clamp01(0.5 + 0.5*math.Sin(ms*0.001+x*0.01))
}

// advance moves p one frame down and wraps it above the top edge once it has
// fully left the bottom. It reports whether p wrapped.
func advance(p *Particle, size Size, rng Rand) bool {
	p.Position.Y += p.Speed
	if p.Position.Y > float64(size.Height)+p.Radius {
		p.Position.Y = -p.Radius
		p.Position.X = rng.Float64() * float64(size.Width)
		return true
	}
	return false
}

// draw paints every star and steps it forward. The opacity used for a star
// is the one computed for this frame.
func (f *Field) draw(ctx Context, elapsed time.Duration, accent Color, rng Rand) (wrapped int, opacity float64) {
	for i := range f.particles {
		p := &f.particles[i]
		p.Opacity = Pulse(elapsed, p.Position.X)
		ctx.FillCircle(p.Position.X, p.Position.Y, p.Radius, accent.Alpha(p.Opacity))
		opacity += p.Opacity
		if advance(p, f.size, rng) {
			wrapped++
		}
	}
	if n := len(f.particles); n > 0 {
		opacity /= float64(n)
	}
	return wrapped, opacity
}
