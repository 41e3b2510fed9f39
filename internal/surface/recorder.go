package surface

import (
	"sync"

	"github.com/san-kum/starfield/internal/starfield"
)

// Call is one recorded draw call.
type Call struct {
	Op     string
	X0, Y0 float64
	X1, Y1 float64
	R      float64
	Color  starfield.Color
}

// Recorder is a surface that counts draw calls instead of drawing. Detach
// makes it report itself unavailable, like a canvas removed from the page.
type Recorder struct {
	mu       sync.Mutex
	detached bool
	keep     bool
	size     starfield.Size
	clears   int
	circles  int
	lines    int
	calls    []Call
}

// NewRecorder returns a recorder. With keep set it also retains every call
// made since the last Clear.
func NewRecorder(keep bool) *Recorder {
	return &Recorder{keep: keep}
}

func (r *Recorder) Context() (starfield.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.detached {
		return nil, starfield.ErrSurfaceUnavailable
	}
	return r, nil
}

func (r *Recorder) Detach() {
	r.mu.Lock()
	r.detached = true
	r.mu.Unlock()
}

func (r *Recorder) Attach() {
	r.mu.Lock()
	r.detached = false
	r.mu.Unlock()
}

func (r *Recorder) SetSize(s starfield.Size) {
	r.mu.Lock()
	r.size = s
	r.mu.Unlock()
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	r.clears++
	r.calls = r.calls[:0]
	r.mu.Unlock()
}

func (r *Recorder) FillCircle(x, y, rad float64, c starfield.Color) {
	r.mu.Lock()
	r.circles++
	if r.keep {
		r.calls = append(r.calls, Call{Op: "circle", X0: x, Y0: y, R: rad, Color: c})
	}
	r.mu.Unlock()
}

func (r *Recorder) StrokeLine(x0, y0, x1, y1, width float64, c starfield.Color) {
	r.mu.Lock()
	r.lines++
	if r.keep {
		r.calls = append(r.calls, Call{Op: "line", X0: x0, Y0: y0, X1: x1, Y1: y1, R: width, Color: c})
	}
	r.mu.Unlock()
}

// Counts is a snapshot of the recorder's counters.
type Counts struct {
	Clears, Circles, Lines int
}

// Draws is the total of all draw calls, clears included.
func (c Counts) Draws() int { return c.Clears + c.Circles + c.Lines }

func (r *Recorder) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Counts{Clears: r.clears, Circles: r.circles, Lines: r.lines}
}

func (r *Recorder) Size() starfield.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Calls returns the calls made since the last Clear. Empty unless the
// recorder keeps calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
