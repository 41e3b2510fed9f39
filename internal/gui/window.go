// Package gui shows the star field in a desktop window.
package gui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/san-kum/starfield/internal/config"
	"github.com/san-kum/starfield/internal/frame"
	"github.com/san-kum/starfield/internal/starfield"
	"go.uber.org/zap"
)

type Options struct {
	Size   starfield.Size
	Theme  *config.Theme
	FPS    int
	Seed   int64
	Logger *zap.Logger
	// ConfigPath, when set, is watched and reloaded into the open window.
	ConfigPath string
}

// Window is an ebiten game hosting a renderer. Frames requested by the
// renderer are fired from Update, so the offscreen image is only written on
// the game loop.
type Window struct {
	renderer *starfield.Renderer
	queue    *frame.Queue
	surface  *ImageSurface
	theme    *config.Theme
	log      *zap.Logger

	// reloaded is set by the config watcher and consumed by Update.
	reloaded atomic.Pointer[config.Config]

	size    starfield.Size
	started bool
	running bool
	closed  bool
	showHUD bool
}

func New(opts Options) *Window {
	if opts.Theme == nil {
		opts.Theme = config.GetPreset(config.DefaultTheme)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	queue := frame.NewQueue()
	ropts := []starfield.Option{
		starfield.WithLogger(opts.Logger),
		starfield.WithAccent(opts.Theme.Accent),
		starfield.WithConnectorAlpha(opts.Theme.ConnectorAlpha),
	}
	if opts.Seed != 0 {
		ropts = append(ropts, starfield.WithSeed(opts.Seed))
	}
	return &Window{
		renderer: starfield.New(queue, ropts...),
		queue:    queue,
		surface:  NewImageSurface(),
		theme:    opts.Theme,
		log:      opts.Logger,
		size:     opts.Size.Clamp(),
		showHUD:  true,
	}
}

func (w *Window) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		w.Close()
		return ebiten.Termination
	}
	if !w.started {
		w.started = true
		w.running = w.renderer.Start(w.surface, w.size)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if w.running {
			w.renderer.Stop()
			w.running = false
		} else {
			w.running = w.renderer.Start(w.surface, w.size)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		w.renderer.Reseed()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		w.setTheme(config.Next(w.theme.Name))
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		w.showHUD = !w.showHUD
	}

	if c := w.reloaded.Swap(nil); c != nil {
		w.apply(c)
	}

	w.queue.Fire(time.Now())
	w.running = w.renderer.Running()
	return nil
}

// Reload hands a config to the game loop; it takes effect on the next Update.
func (w *Window) Reload(c *config.Config) { w.reloaded.Store(c) }

func (w *Window) apply(c *config.Config) {
	if t := config.GetPreset(c.Theme); t != nil {
		w.setTheme(t)
	}
	if c.FPS > 0 {
		ebiten.SetTPS(c.FPS)
	}
}

func (w *Window) setTheme(t *config.Theme) {
	w.theme = t
	w.renderer.SetAccent(t.Accent, t.ConnectorAlpha)
}

func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(Background)
	if img := w.surface.Image(); img != nil {
		screen.DrawImage(img, nil)
	}
	if !w.showHUD {
		return
	}
	s := w.renderer.Stats()
	status := "running"
	if !w.running {
		status = "paused"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
		"%s | frame %d | lines %d | theme %s | %.0f fps\nSpace: pause  R: reseed  T: theme  H: hud  Q: quit",
		status, s.Frame, s.Lines, w.theme.Name, ebiten.ActualFPS()), 12, 12)
}

// Layout keeps the logical viewport equal to the window size; a new size
// reseeds the field.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := starfield.Size{Width: outsideWidth, Height: outsideHeight}.Clamp()
	if size != w.size {
		w.size = size
		w.renderer.Resize(size)
	}
	return size.Width, size.Height
}

// Close stops the renderer and releases the offscreen image.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.renderer.Stop()
	w.surface.Detach()
	w.log.Debug("gui: closed", zap.Int("frames", w.renderer.Stats().Frame))
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	w := New(opts)
	fps := opts.FPS
	if fps <= 0 {
		fps = frame.DefaultFPS
	}
	ebiten.SetWindowSize(w.size.Width, w.size.Height)
	ebiten.SetWindowTitle("starfield")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(fps)

	if opts.ConfigPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := config.Watch(ctx, opts.ConfigPath, w.log, w.Reload); err != nil {
				w.log.Warn("gui: config watch stopped", zap.Error(err))
			}
		}()
	}

	err := ebiten.RunGame(w)
	w.Close()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
