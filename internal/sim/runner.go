package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/starfield/internal/frame"
	"github.com/san-kum/starfield/internal/metrics"
	"github.com/san-kum/starfield/internal/starfield"
	"github.com/san-kum/starfield/internal/surface"
	"go.uber.org/zap"
)

// epoch is the start of every headless clock so runs are reproducible.
var epoch = time.Unix(0, 0)

// Runner drives a renderer frame by frame with a manual scheduler and clock.
type Runner struct {
	metrics   []metrics.Metric
	observers []starfield.Observer
	log       *zap.Logger
}

func New(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{log: log}
}

func (r *Runner) AddMetric(m metrics.Metric)       { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o starfield.Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	result := &Result{
		Seed:    cfg.Seed,
		Stats:   make([]starfield.FrameStats, 0, cfg.Frames),
		Metrics: make(map[string]float64, len(r.metrics)),
	}

	// frames past the target can still draw before Stop in real time; they
	// are not recorded.
	var rend *starfield.Renderer
	recorded := 0
	reached := make(chan struct{})
	observe := starfield.ObserverFunc(func(s starfield.FrameStats) {
		if recorded == cfg.Frames {
			return
		}
		result.Stats = append(result.Stats, s)
		for _, m := range r.metrics {
			m.Observe(s)
		}
		for _, o := range r.observers {
			o.OnFrame(s)
		}
		recorded++
		if recorded == cfg.Frames {
			result.Particles = rend.Particles()
			close(reached)
		}
	})

	var (
		sched  frame.Scheduler
		clock  frame.Clock
		queue  *frame.Queue
		manual *frame.ManualClock
		ticker *frame.Ticker
	)
	if cfg.RealTime {
		ticker = frame.NewTicker(ctx, cfg.FPS)
		defer ticker.Close()
		sched, clock = ticker, frame.SystemClock{}
	} else {
		queue, manual = frame.NewQueue(), frame.NewManualClock(epoch)
		sched, clock = queue, manual
	}

	opts := []starfield.Option{
		starfield.WithClock(clock),
		starfield.WithSeed(cfg.Seed),
		starfield.WithLogger(r.log),
		starfield.WithObserver(observe),
	}
	if cfg.Accent != nil {
		opts = append(opts, starfield.WithAccent(*cfg.Accent))
	}
	rend = starfield.New(sched, opts...)

	target := cfg.Surface
	rec, recording := target.(*surface.Recorder)
	if target == nil {
		rec = surface.NewRecorder(false)
		recording = true
		target = rec
	}

	if !rend.Start(target, cfg.Size) {
		return nil, fmt.Errorf("start: %w", starfield.ErrSurfaceUnavailable)
	}
	defer rend.Stop()

	interval := time.Second / time.Duration(cfg.FPS)
	if cfg.RealTime {
		done, err := wait(ctx, rend, ticker, reached, interval)
		if err != nil {
			return result, err
		}
		if !done {
			err := SimError{Frame: len(result.Stats) + 1, Message: "renderer stopped before the run finished"}
			r.log.Debug("sim: real-time run cut short", zap.Error(err))
			return result, err
		}
	} else {
		for i := 0; i < cfg.Frames; i++ {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			if queue.Fire(manual.Advance(interval)) == 0 {
				err := SimError{Frame: i + 1, Message: "renderer stopped before the run finished"}
				r.log.Debug("sim: run cut short", zap.Error(err))
				return result, err
			}
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if recording {
		result.Draws = rec.Counts()
	}
	return result, nil
}

// wait blocks until the ticker has driven the target number of frames, the
// renderer halts on its own or ctx ends. It then stops the renderer and the
// ticker, so the result is no longer written once it returns.
func wait(ctx context.Context, rend *starfield.Renderer, ticker *frame.Ticker, reached <-chan struct{}, interval time.Duration) (bool, error) {
	poll := time.NewTicker(interval)
	defer poll.Stop()

	var err error
loop:
	for {
		select {
		case <-reached:
			break loop
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case <-poll.C:
			if !rend.Running() {
				break loop
			}
		}
	}

	rend.Stop()
	ticker.Close()

	select {
	case <-reached:
		return true, nil
	default:
		return false, err
	}
}
