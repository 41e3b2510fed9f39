// Package automation runs scripted renderer sessions and viewport sweeps
// headlessly.
package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/san-kum/starfield/internal/config"
	"github.com/san-kum/starfield/internal/frame"
	"github.com/san-kum/starfield/internal/metrics"
	"github.com/san-kum/starfield/internal/sim"
	"github.com/san-kum/starfield/internal/starfield"
	"github.com/san-kum/starfield/internal/surface"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of renderer lifecycle calls.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Seed        int64          `yaml:"seed"`
	FPS         int            `yaml:"fps"`
	Viewport    ViewportSize   `yaml:"viewport"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ViewportSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ScenarioStep is a single step in a scenario. Action is one of start, stop,
// frames, resize, reseed, detach, attach or theme.
type ScenarioStep struct {
	Action string `yaml:"action"`
	Count  int    `yaml:"count"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Theme  string `yaml:"theme"`
}

// StepResult is the renderer state after a step.
type StepResult struct {
	Step    int
	Action  string
	Drawn   int
	Draws   int
	Running bool
	Size    starfield.Size
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		switch step.Action {
		case "start", "stop", "reseed", "detach", "attach":
		case "frames":
			if step.Count <= 0 {
				return fmt.Errorf("step %d: frames needs a positive count", i+1)
			}
		case "resize":
		case "theme":
			if config.GetPreset(step.Theme) == nil {
				return fmt.Errorf("step %d: unknown theme %q", i+1, step.Theme)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
	}
	return nil
}

// RunScenario executes all steps against a call recorder and checks the
// field after every step. It stops at the first violated check.
func RunScenario(ctx context.Context, scenario *Scenario, log *zap.Logger) ([]StepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	fps := scenario.FPS
	if fps <= 0 {
		fps = frame.DefaultFPS
	}
	interval := time.Second / time.Duration(fps)
	size := starfield.Size{Width: scenario.Viewport.Width, Height: scenario.Viewport.Height}

	queue := frame.NewQueue()
	clock := frame.NewManualClock(time.Unix(0, 0))
	rec := surface.NewRecorder(false)
	r := starfield.New(queue,
		starfield.WithClock(clock),
		starfield.WithSeed(scenario.Seed),
		starfield.WithLogger(log))
	defer r.Stop()

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		log.Debug("scenario step", zap.Int("step", i+1), zap.String("action", step.Action))

		before := rec.Counts().Draws()
		wasRunning := r.Running()
		drawn := 0
		switch step.Action {
		case "start":
			r.Start(rec, size)
		case "stop":
			r.Stop()
		case "frames":
			for n := 0; n < step.Count; n++ {
				drawn += queue.Fire(clock.Advance(interval))
			}
		case "resize":
			size = starfield.Size{Width: step.Width, Height: step.Height}
			r.Resize(size)
		case "reseed":
			r.Reseed()
		case "detach":
			rec.Detach()
		case "attach":
			rec.Attach()
		case "theme":
			t := config.GetPreset(step.Theme)
			r.SetAccent(t.Accent, t.ConnectorAlpha)
		}

		res := StepResult{
			Step:    i + 1,
			Action:  step.Action,
			Drawn:   drawn,
			Draws:   rec.Counts().Draws() - before,
			Running: r.Running(),
			Size:    r.Size(),
		}
		results = append(results, res)

		if err := CheckField(r.Particles(), r.Size()); err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		if step.Action == "frames" && !wasRunning && res.Draws != 0 {
			return results, fmt.Errorf("step %d: %d draws while stopped", i+1, res.Draws)
		}
	}
	return results, nil
}

// CheckField verifies the field invariants: a full set of stars, opacities
// in [0,1] and every star inside the wrap band of the viewport. A nil field
// (never started) passes.
func CheckField(ps []starfield.Particle, size starfield.Size) error {
	if ps == nil {
		return nil
	}
	if len(ps) != starfield.Count {
		return fmt.Errorf("field has %d stars, want %d", len(ps), starfield.Count)
	}
	for i, p := range ps {
		if p.Opacity < 0 || p.Opacity > 1 || math.IsNaN(p.Opacity) {
			return fmt.Errorf("star %d opacity %v outside [0,1]", i, p.Opacity)
		}
		if p.Position.X < 0 || p.Position.X >= float64(size.Width) {
			return fmt.Errorf("star %d x %v outside [0,%d)", i, p.Position.X, size.Width)
		}
		if p.Position.Y < -p.Radius || p.Position.Y > float64(size.Height)+p.Radius {
			return fmt.Errorf("star %d y %v outside the wrap band", i, p.Position.Y)
		}
	}
	return nil
}

// ViewportSweep runs the field at a range of square viewport sizes.
type ViewportSweep struct {
	MinSide  int
	MaxSide  int
	NumSteps int
	Frames   int
	FPS      int
	Seed     int64
}

// SweepResult holds the connector density at one viewport size.
type SweepResult struct {
	Side           int
	MeanConnectors float64
	PeakConnectors float64
}

// RunSweep executes a viewport sweep. Smaller viewports pack the fixed star
// count tighter, so connector counts grow as the side shrinks.
func RunSweep(ctx context.Context, sweep *ViewportSweep, log *zap.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	if sweep.MinSide <= 0 || sweep.MaxSide < sweep.MinSide {
		return nil, fmt.Errorf("invalid side range [%d, %d]", sweep.MinSide, sweep.MaxSide)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	step := float64(sweep.MaxSide-sweep.MinSide) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		side := sweep.MinSide + int(math.Round(float64(i)*step))

		runner := sim.New(log)
		mean := metrics.NewMeanConnectors()
		peak := metrics.NewPeakConnectors()
		runner.AddMetric(mean)
		runner.AddMetric(peak)

		_, err := runner.Run(ctx, sim.Config{
			Size:   starfield.Size{Width: side, Height: side},
			Frames: sweep.Frames,
			FPS:    sweep.FPS,
			Seed:   sweep.Seed,
		})
		if err != nil {
			return results, fmt.Errorf("side %d: %w", side, err)
		}

		results = append(results, SweepResult{
			Side:           side,
			MeanConnectors: mean.Value(),
			PeakConnectors: peak.Value(),
		})
	}

	return results, nil
}
