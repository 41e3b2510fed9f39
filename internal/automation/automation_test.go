package automation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/starfield/internal/starfield"
)

const lifecycle = `
name: lifecycle
seed: 3
viewport:
  width: 400
  height: 300
steps:
  - action: start
  - action: frames
    count: 10
  - action: resize
    width: 0
    height: 0
  - action: frames
    count: 2
  - action: detach
  - action: frames
    count: 3
  - action: attach
  - action: start
  - action: frames
    count: 1
  - action: stop
  - action: frames
    count: 4
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, lifecycle))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Name != "lifecycle" || sc.Seed != 3 {
		t.Errorf("unexpected header: %+v", sc)
	}
	if len(sc.Steps) != 11 {
		t.Errorf("expected 11 steps, got %d", len(sc.Steps))
	}
	if sc.Viewport.Width != 400 || sc.Viewport.Height != 300 {
		t.Errorf("expected 400x300 viewport, got %+v", sc.Viewport)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no steps", "name: empty\n", "no steps"},
		{"unknown action", "steps:\n  - action: explode\n", "unknown action"},
		{"zero frames", "steps:\n  - action: frames\n", "positive count"},
		{"unknown theme", "steps:\n  - action: theme\n    theme: plaid\n", "unknown theme"},
		{"bad yaml", "steps: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunScenarioLifecycle(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, lifecycle))
	if err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != len(sc.Steps) {
		t.Fatalf("expected %d results, got %d", len(sc.Steps), len(results))
	}

	frames := results[1]
	if frames.Drawn != 10 || !frames.Running {
		t.Errorf("expected 10 frames while running, got %+v", frames)
	}
	// each frame clears once and fills every star
	if frames.Draws < 10*(1+starfield.Count) {
		t.Errorf("expected at least %d draws, got %d", 10*(1+starfield.Count), frames.Draws)
	}

	if got := results[2].Size; got != (starfield.Size{Width: 1, Height: 1}) {
		t.Errorf("expected clamped 1x1 after resize, got %+v", got)
	}

	lost := results[5]
	if lost.Draws != 0 || lost.Running {
		t.Errorf("expected no draws after detach, got %+v", lost)
	}

	restarted := results[8]
	if restarted.Drawn != 1 || restarted.Draws == 0 {
		t.Errorf("expected a drawn frame after restart, got %+v", restarted)
	}

	stopped := results[10]
	if stopped.Drawn != 0 || stopped.Draws != 0 {
		t.Errorf("expected nothing after stop, got %+v", stopped)
	}
}

func TestShippedScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "scenarios", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			sc, err := LoadScenario(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			results, err := RunScenario(context.Background(), sc, nil)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(results) != len(sc.Steps) {
				t.Errorf("expected %d results, got %d", len(sc.Steps), len(results))
			}
		})
	}
}

func TestLifecycleScenarioFile(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("..", "..", "scenarios", "lifecycle.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sc.Steps) != 15 {
		t.Fatalf("expected 15 steps, got %d", len(sc.Steps))
	}

	results, err := RunScenario(context.Background(), sc, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	last := results[len(results)-1]
	if last.Action != "frames" || last.Drawn != 0 || last.Draws != 0 || last.Running {
		t.Errorf("expected a silent stopped tail, got %+v", last)
	}
}

func TestRunScenarioThemeAndReseed(t *testing.T) {
	sc := &Scenario{
		Viewport: ViewportSize{Width: 800, Height: 600},
		Steps: []ScenarioStep{
			{Action: "start"},
			{Action: "theme", Theme: "amber"},
			{Action: "reseed"},
			{Action: "frames", Count: 5},
		},
	}
	results, err := RunScenario(context.Background(), sc, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[3].Drawn != 5 {
		t.Errorf("expected 5 frames, got %d", results[3].Drawn)
	}
}

func TestRunScenarioCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := &Scenario{Steps: []ScenarioStep{{Action: "start"}}}
	if _, err := RunScenario(ctx, sc, nil); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunScenarioRejectsUnknownTheme(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Action: "theme", Theme: "plaid"}}}
	if _, err := RunScenario(context.Background(), sc, nil); err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestCheckField(t *testing.T) {
	size := starfield.Size{Width: 100, Height: 100}
	good := make([]starfield.Particle, starfield.Count)
	for i := range good {
		good[i] = starfield.Particle{
			Position: starfield.Point{X: 50, Y: 50},
			Radius:   1,
			Opacity:  0.5,
		}
	}

	if err := CheckField(nil, size); err != nil {
		t.Errorf("expected nil field to pass, got %v", err)
	}
	if err := CheckField(good, size); err != nil {
		t.Errorf("expected valid field to pass, got %v", err)
	}
	if err := CheckField(good[:10], size); err == nil {
		t.Error("expected error for short field")
	}

	tests := []struct {
		name   string
		mutate func(p *starfield.Particle)
	}{
		{"opacity above 1", func(p *starfield.Particle) { p.Opacity = 1.5 }},
		{"negative opacity", func(p *starfield.Particle) { p.Opacity = -0.1 }},
		{"x past width", func(p *starfield.Particle) { p.Position.X = 100 }},
		{"y above wrap band", func(p *starfield.Particle) { p.Position.Y = -2 }},
		{"y below wrap band", func(p *starfield.Particle) { p.Position.Y = 102 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := append([]starfield.Particle(nil), good...)
			tt.mutate(&ps[7])
			if err := CheckField(ps, size); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunSweep(t *testing.T) {
	results, err := RunSweep(context.Background(), &ViewportSweep{
		MinSide:  100,
		MaxSide:  1000,
		NumSteps: 4,
		Frames:   5,
		FPS:      60,
		Seed:     1,
	}, nil)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Side != 100 || results[3].Side != 1000 {
		t.Errorf("expected sides 100..1000, got %d..%d", results[0].Side, results[3].Side)
	}
	// the same 200 stars packed into a smaller box sit closer together
	if results[0].MeanConnectors <= results[3].MeanConnectors {
		t.Errorf("expected denser field to connect more: %v vs %v",
			results[0].MeanConnectors, results[3].MeanConnectors)
	}
	if results[0].PeakConnectors < results[0].MeanConnectors {
		t.Errorf("expected peak >= mean, got %v < %v", results[0].PeakConnectors, results[0].MeanConnectors)
	}
}

func TestRunSweepErrors(t *testing.T) {
	tests := []struct {
		name  string
		sweep ViewportSweep
	}{
		{"one step", ViewportSweep{MinSide: 10, MaxSide: 20, NumSteps: 1, Frames: 1}},
		{"zero side", ViewportSweep{MinSide: 0, MaxSide: 20, NumSteps: 2, Frames: 1}},
		{"inverted", ViewportSweep{MinSide: 30, MaxSide: 20, NumSteps: 2, Frames: 1}},
		{"no frames", ViewportSweep{MinSide: 10, MaxSide: 20, NumSteps: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RunSweep(context.Background(), &tt.sweep, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}
