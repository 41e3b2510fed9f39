package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/starfield/internal/config"
	"github.com/san-kum/starfield/internal/frame"
	"github.com/san-kum/starfield/internal/metrics"
	"github.com/san-kum/starfield/internal/starfield"
	"github.com/san-kum/starfield/internal/surface"
	"go.uber.org/zap"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 44
	historyCapacity = 120
	// unitsPerDot maps braille dots to the logical viewport, so an 80 column
	// terminal shows a field roughly as wide as a desktop browser's.
	unitsPerDot = 5
)

type TickMsg time.Time

// ConfigMsg carries a reloaded config file into a running view.
type ConfigMsg struct{ Config *config.Config }

type Options struct {
	Theme  *config.Theme
	FPS    int
	Seed   int64
	Logger *zap.Logger
	// Clock overrides the renderer's clock; tests pass a manual one.
	Clock frame.Clock
	// ConfigPath, when set, is watched and reloaded into the running view.
	ConfigPath string
}

// Model hosts a renderer on a braille canvas.
type Model struct {
	renderer *starfield.Renderer
	queue    *frame.Queue
	canvas   *surface.Braille
	metrics  []metrics.Metric
	log      *zap.Logger
	keys     keyMap
	help     help.Model

	theme    *config.Theme
	palette  Palette
	interval time.Duration

	width, height int
	running       bool
	quitting      bool
	stats         starfield.FrameStats
	lineHistory   []float64
	opacity       []float64
}

func NewModel(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = config.GetPreset(config.DefaultTheme)
	}
	if opts.FPS <= 0 {
		opts.FPS = frame.DefaultFPS
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
	if opts.Clock != nil {
		ropts = append(ropts, starfield.WithClock(opts.Clock))
	}

	cols, rows := canvasCells(width, height)
	m := Model{
		renderer:    starfield.New(queue, ropts...),
		queue:       queue,
		canvas:      surface.NewBraille(cols, rows),
		metrics:     metrics.Default(),
		log:         opts.Logger,
		keys:        defaultKeys(),
		help:        help.New(),
		theme:       opts.Theme,
		palette:     PaletteFor(opts.Theme),
		interval:    time.Second / time.Duration(opts.FPS),
		width:       width,
		height:      height,
		lineHistory: make([]float64, 0, historyCapacity),
		opacity:     make([]float64, 0, historyCapacity),
	}
	m.running = m.renderer.Start(m.canvas, m.logicalSize())
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and fires pending frames on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quit()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.toggle()
		case key.Matches(msg, m.keys.Reseed):
			m.renderer.Reseed()
			m.reset()
		case key.Matches(msg, m.keys.Theme):
			m.setTheme(config.Next(m.theme.Name))
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = panelWidth - 8
		cols, rows := canvasCells(msg.Width, msg.Height)
		m.canvas.Resize(cols, rows)
		m.renderer.Resize(m.logicalSize())
		m.reset()
	case ConfigMsg:
		if t := config.GetPreset(msg.Config.Theme); t != nil {
			m.setTheme(t)
		}
		if msg.Config.FPS > 0 {
			m.interval = time.Second / time.Duration(msg.Config.FPS)
		}
	case TickMsg:
		if m.quitting {
			return m, nil
		}
		if m.queue.Fire(time.Time(msg)) > 0 {
			m.record(m.renderer.Stats())
		}
		// the renderer halts on its own when the canvas goes away
		m.running = m.renderer.Running()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) setTheme(t *config.Theme) {
	m.theme = t
	m.palette = PaletteFor(t)
	m.renderer.SetAccent(t.Accent, t.ConnectorAlpha)
}

func (m *Model) toggle() {
	if m.running {
		m.renderer.Stop()
		m.running = false
		return
	}
	m.running = m.renderer.Start(m.canvas, m.logicalSize())
	m.reset()
}

func (m *Model) quit() {
	m.quitting = true
	m.renderer.Stop()
	m.canvas.Detach()
	m.log.Debug("viz: quit",
		zap.Int("frames", m.stats.Frame),
		zap.Float64("peak_connectors", m.metricValue("peak_connectors")))
}

func (m *Model) record(s starfield.FrameStats) {
	m.stats = s
	for _, mt := range m.metrics {
		mt.Observe(s)
	}
	m.lineHistory = appendCapped(m.lineHistory, float64(s.Lines))
	m.opacity = appendCapped(m.opacity, s.MeanOpacity)
}

func (m *Model) reset() {
	m.lineHistory = m.lineHistory[:0]
	m.opacity = m.opacity[:0]
	for _, mt := range m.metrics {
		mt.Reset()
	}
}

func (m Model) metricValue(name string) float64 {
	for _, mt := range m.metrics {
		if mt.Name() == name {
			return mt.Value()
		}
	}
	return 0
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// canvasCells is the braille grid left over beside the stats panel.
func canvasCells(termW, termH int) (int, int) {
	return max(termW-panelWidth-4, 8), max(termH-2, 4)
}

func (m Model) logicalSize() starfield.Size {
	w, h := m.canvas.Dots()
	return starfield.Size{Width: w * unitsPerDot, Height: h * unitsPerDot}
}

// View renders the canvas beside the stats panel.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	canvasView := m.palette.Stars().Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.palette.Header().Render("STARFIELD") + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}

	if len(m.lineHistory) > 1 {
		chart := asciigraph.Plot(m.lineHistory,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.Caption("Connectors"))
		s.WriteString(m.palette.Graph().Render(chart) + "\n")
	}

	size := m.logicalSize()
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", m.stats.Frame))
	row("Elapsed", m.stats.Elapsed.Truncate(100*time.Millisecond).String())
	row("Stars", fmt.Sprintf("%d", m.stats.Circles))
	row("Lines", fmt.Sprintf("%d (peak %.0f)", m.stats.Lines, m.metricValue("peak_connectors")))
	row("Wrapped", fmt.Sprintf("%.2f/frame", m.metricValue("wrap_rate")))
	row("Viewport", fmt.Sprintf("%dx%d", size.Width, size.Height))
	row("Theme", m.theme.Name)
	s.WriteString(MetricLabel.Render("Opacity") + SparklineChart(m.opacity, 24, 0, 1) + "\n")

	s.WriteString(KeyHint.Render(m.help.View(m.keys)))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// Run starts the terminal view and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())

	if opts.ConfigPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := config.Watch(ctx, opts.ConfigPath, opts.Logger, func(c *config.Config) {
				p.Send(ConfigMsg{Config: c})
			})
			if err != nil && opts.Logger != nil {
				opts.Logger.Warn("viz: config watch stopped", zap.Error(err))
			}
		}()
	}

	_, err := p.Run()
	return err
}
