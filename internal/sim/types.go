package sim

import (
	"fmt"

	"github.com/san-kum/starfield/internal/starfield"
	"github.com/san-kum/starfield/internal/surface"
)

// Config describes a headless run.
type Config struct {
	Size   starfield.Size
	Frames int
	FPS    int
	Seed   int64
	// Surface receives the frames. A call recorder is used when nil.
	Surface starfield.Surface
	Accent  *starfield.Color
	// RealTime fires frames from a wall-clock ticker at FPS instead of
	// stepping a manual clock. Stats then carry real elapsed times.
	RealTime bool
}

type Result struct {
	Seed    int64
	Stats   []starfield.FrameStats
	Metrics map[string]float64
	Draws   surface.Counts
	// Particles is the field after the last frame.
	Particles []starfield.Particle
}

// Lines returns the connector count of every frame, for plotting.
func (r *Result) Lines() []float64 {
	out := make([]float64, len(r.Stats))
	for i, s := range r.Stats {
		out[i] = float64(s.Lines)
	}
	return out
}

type SimError struct {
	Frame   int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("frame %d: %s", e.Frame, e.Message)
}

// Opacity returns the mean star opacity of every frame.
func (r *Result) Opacity() []float64 {
	out := make([]float64, len(r.Stats))
	for i, s := range r.Stats {
		out[i] = s.MeanOpacity
	}
	return out
}
