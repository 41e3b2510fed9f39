package metrics

import "github.com/san-kum/starfield/internal/starfield"

// Metric accumulates a single number over rendered frames.
type Metric interface {
	Name() string
	Observe(s starfield.FrameStats)
	Value() float64
	Reset()
}

// Default returns one of each frame metric.
func Default() []Metric {
	return []Metric{
		NewMeanConnectors(),
		NewPeakConnectors(),
		NewMeanOpacity(),
		NewWrapRate(),
	}
}

type mean struct {
	name    string
	samples int
	total   float64
	pick    func(starfield.FrameStats) float64
}

func (m *mean) Name() string { return m.name }

func (m *mean) Observe(s starfield.FrameStats) {
	m.total += m.pick(s)
	m.samples++
}

func (m *mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *mean) Reset() {
	m.total = 0
	m.samples = 0
}

// NewMeanConnectors averages connector lines per frame.
func NewMeanConnectors() Metric {
	return &mean{name: "mean_connectors", pick: func(s starfield.FrameStats) float64 { return float64(s.Lines) }}
}

// NewMeanOpacity averages the field's mean star opacity per frame.
func NewMeanOpacity() Metric {
	return &mean{name: "mean_opacity", pick: func(s starfield.FrameStats) float64 { return s.MeanOpacity }}
}

// NewWrapRate averages how many stars wrap to the top per frame.
func NewWrapRate() Metric {
	return &mean{name: "wrap_rate", pick: func(s starfield.FrameStats) float64 { return float64(s.Wrapped) }}
}

type PeakConnectors struct {
	peak int
}

func NewPeakConnectors() *PeakConnectors { return &PeakConnectors{} }

func (p *PeakConnectors) Name() string { return "peak_connectors" }

func (p *PeakConnectors) Observe(s starfield.FrameStats) {
	if s.Lines > p.peak {
		p.peak = s.Lines
	}
}

func (p *PeakConnectors) Value() float64 { return float64(p.peak) }

func (p *PeakConnectors) Reset() { p.peak = 0 }
