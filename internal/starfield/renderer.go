package starfield

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/starfield/internal/frame"
	"go.uber.org/zap"
)

type Option func(*Renderer)

func WithClock(c frame.Clock) Option { return func(r *Renderer) { r.clock = c } }

func WithRand(rng Rand) Option { return func(r *Renderer) { r.rng = &lockedRand{src: rng} } }

// WithSeed seeds a math/rand source.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func WithLogger(l *zap.Logger) Option { return func(r *Renderer) { r.log = l } }

// WithAccent sets the star color. Connector lines use the same hue.
func WithAccent(c Color) Option { return func(r *Renderer) { r.accent = c } }

func WithConnectorAlpha(a float64) Option {
	return func(r *Renderer) { r.connector = clamp01(a) }
}

func WithObserver(o Observer) Option {
	return func(r *Renderer) { r.observers = append(r.observers, o) }
}

// Renderer runs the star-field loop against one surface at a time.
type Renderer struct {
	sched     frame.Scheduler
	clock     frame.Clock
	rng       *lockedRand
	log       *zap.Logger
	accent    Color
	connector float64
	observers []Observer

	// field is swapped by Resize without taking mu; a frame loads it once.
	field atomic.Pointer[Field]

	// mu is held for the whole of a frame.
	mu      sync.Mutex
	surface Surface
	applied Size
	running bool
	gen     uint64
	handle  frame.Handle
	started time.Time
	frames  int
	last    FrameStats
}

func New(sched frame.Scheduler, opts ...Option) *Renderer {
	r := &Renderer{
		sched:     sched,
		clock:     frame.SystemClock{},
		log:       zap.NewNop(),
		accent:    Accent,
		connector: ConnectorAlpha,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = &lockedRand{src: rand.New(rand.NewSource(time.Now().UnixNano()))}
	}
	return r
}

// Start acquires a context from s, seeds a field for size and schedules the
// first frame. If the context cannot be acquired Start logs it and leaves the
// renderer stopped. Starting a running renderer restarts it on s.
func (r *Renderer) Start(s Surface, size Size) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()

	if s == nil {
		r.log.Debug("starfield: no surface, not starting")
		return false
	}
	ctx, err := s.Context()
	if err != nil {
		r.log.Debug("starfield: surface unavailable, not starting", zap.Error(err))
		return false
	}

	f := NewField(size, r.rng)
	r.field.Store(f)
	ctx.SetSize(f.size)

	r.surface = s
	r.applied = f.size
	r.running = true
	r.started = r.clock.Now()
	r.frames = 0
	r.last = FrameStats{}
	r.scheduleLocked()

	r.log.Debug("starfield: started",
		zap.Int("width", f.size.Width),
		zap.Int("height", f.size.Height),
		zap.Int("particles", f.Len()))
	return true
}

// Resize reseeds the field inside size (clamped to 1x1). The new dimensions
// reach the surface at the start of the next frame. Resizing to the current
// size, or a renderer that has no field, does nothing.
func (r *Renderer) Resize(size Size) {
	size = size.Clamp()
	for {
		cur := r.field.Load()
		if cur == nil || cur.size == size {
			return
		}
		if r.field.CompareAndSwap(cur, NewField(size, r.rng)) {
			return
		}
	}
}

// Reseed replaces the field with a fresh one of the same size. It does
// nothing on a renderer that has no field.
func (r *Renderer) Reseed() {
	for {
		cur := r.field.Load()
		if cur == nil {
			return
		}
		if r.field.CompareAndSwap(cur, NewField(cur.size, r.rng)) {
			return
		}
	}
}

// Stop cancels the pending frame and discards the field. A frame in progress
// finishes before Stop returns and no frame draws afterwards.
func (r *Renderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Renderer) stopLocked() {
	if !r.running {
		return
	}
	r.sched.CancelFrame(r.handle)
	r.haltLocked()
}

// haltLocked ends the loop and drops its state. A callback still queued
// sees the new generation and returns without drawing.
func (r *Renderer) haltLocked() {
	r.running = false
	r.gen++
	r.handle = 0
	r.surface = nil
	r.field.Store(nil)
}

// SetAccent changes the star color and connector alpha from the next frame.
func (r *Renderer) SetAccent(c Color, connectorAlpha float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accent = c
	r.connector = clamp01(connectorAlpha)
}

func (r *Renderer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Size is the logical size of the current field, zero when stopped.
func (r *Renderer) Size() Size {
	if f := r.field.Load(); f != nil {
		return f.size
	}
	return Size{}
}

// Particles returns a copy of the current field, nil when stopped.
func (r *Renderer) Particles() []Particle {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.field.Load()
	if f == nil {
		return nil
	}
	return f.Particles()
}

// Stats returns the stats of the most recent frame.
func (r *Renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Renderer) scheduleLocked() {
	gen := r.gen
	r.handle = r.sched.RequestFrame(func(time.Time) { r.frame(gen) })
}

func (r *Renderer) frame(gen uint64) {
	r.mu.Lock()
	if !r.running || gen != r.gen {
		r.mu.Unlock()
		return
	}

	ctx, err := r.surface.Context()
	if err != nil {
		frames := r.frames
		r.haltLocked()
		r.mu.Unlock()
		r.log.Warn("starfield: surface lost, stopping", zap.Error(err), zap.Int("frames", frames))
		return
	}

	f := r.field.Load()
	if f.size != r.applied {
		ctx.SetSize(f.size)
		r.applied = f.size
	}

	ctx.Clear()
	elapsed := r.clock.Now().Sub(r.started)
	wrapped, opacity := f.draw(ctx, elapsed, r.accent, r.rng)
	lines := f.connect(ctx, r.accent.Alpha(r.connector))

	r.frames++
	stats := FrameStats{
		Frame:       r.frames,
		Elapsed:     elapsed,
		Circles:     f.Len(),
		Lines:       lines,
		Wrapped:     wrapped,
		MeanOpacity: opacity,
	}
	r.last = stats
	r.scheduleLocked()
	r.mu.Unlock()

	for _, o := range r.observers {
		o.OnFrame(stats)
	}
}

// lockedRand serializes a Rand shared by frames and concurrent Resize calls.
type lockedRand struct {
	mu  sync.Mutex
	src Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}
