package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/starfield/internal/analysis"
	"github.com/san-kum/starfield/internal/analytics"
	"github.com/san-kum/starfield/internal/automation"
	"github.com/san-kum/starfield/internal/config"
	"github.com/san-kum/starfield/internal/export"
	"github.com/san-kum/starfield/internal/gui"
	"github.com/san-kum/starfield/internal/logging"
	"github.com/san-kum/starfield/internal/metrics"
	"github.com/san-kum/starfield/internal/server"
	"github.com/san-kum/starfield/internal/sim"
	"github.com/san-kum/starfield/internal/starfield"
	"github.com/san-kum/starfield/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	logLevel   string
	cfg        *config.Config
	logger     *zap.Logger

	theme          string
	frameRate      int
	seed           int64
	width          int
	height         int
	snapshotFrames int
	benchFrames    int
	benchSeed      int64
	seeds          int
	addr           string
	output         string
	rangeFlag      string
	jsonOut        bool
	csvOut         string
	sweepMin       int
	sweepMax       int
	sweepSteps     int
	sweepFrames    int
	watch          bool
	realTime       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "starfield",
		Short:        "animated star-field background and portfolio API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, args)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	viewFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")
		cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
		cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	}
	liveFlags := func(cmd *cobra.Command) {
		viewFlags(cmd)
		cmd.Flags().BoolVar(&watch, "watch", false, "reload theme and fps when the config file changes")
	}
	sizeFlags := func(cmd *cobra.Command) {
		cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "viewport width")
		cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "viewport height")
	}
	liveFlags(rootCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "render the star field in the terminal",
		RunE:  runTUI,
	}
	liveFlags(tuiCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "render the star field in a window",
		RunE:  runGUI,
	}
	liveFlags(guiCmd)
	sizeFlags(guiCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the contact and analytics API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render frames headlessly and write the last one as SVG",
		RunE:  runSnapshot,
	}
	viewFlags(snapshotCmd)
	sizeFlags(snapshotCmd)
	snapshotCmd.Flags().IntVar(&snapshotFrames, "frames", 1, "frames to render")
	snapshotCmd.Flags().StringVarP(&output, "output", "o", "starfield.svg", "output file (- for stdout)")
	snapshotCmd.Flags().BoolVar(&realTime, "realtime", false, "render on a wall-clock ticker instead of a simulated clock")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run headless frames over several seeds and report frame metrics",
		RunE:  runBench,
	}
	sizeFlags(benchCmd)
	benchCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "simulated frame rate")
	benchCmd.Flags().Int64Var(&benchSeed, "seed-start", 1, "seed of the first run")
	benchCmd.Flags().IntVar(&benchFrames, "frames", config.DefaultBenchFrames, "frames per run")
	benchCmd.Flags().IntVar(&seeds, "seeds", config.DefaultBenchSeeds, "number of runs")
	benchCmd.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	benchCmd.Flags().StringVar(&csvOut, "csv", "", "write per-frame stats of the first run to a CSV file")
	benchCmd.Flags().BoolVar(&realTime, "realtime", false, "pace frames with a wall-clock ticker at --fps")

	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "print a mock analytics report",
		RunE:  runAnalytics,
	}
	analyticsCmd.Flags().StringVar(&rangeFlag, "range", analytics.DefaultRange, "report range (7d, 30d, 90d)")
	analyticsCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	analyticsCmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available color themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "THEME\tACCENT\tCONNECTOR ALPHA")
			for _, name := range config.ListPresets() {
				t := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.2f\n", t.Name, t.Hex, t.ConnectorAlpha)
			}
			return w.Flush()
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario <file>",
		Short: "replay a scripted renderer session and check the field after each step",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "measure connector density over a range of viewport sizes",
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&sweepMin, "min", 100, "smallest viewport side")
	sweepCmd.Flags().IntVar(&sweepMax, "max", 1600, "largest viewport side")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 16, "number of viewport sizes")
	sweepCmd.Flags().IntVar(&sweepFrames, "frames", 60, "frames per size")
	sweepCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "simulated frame rate")
	sweepCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")

	rootCmd.AddCommand(tuiCmd, guiCmd, serveCmd, snapshotCmd, benchCmd, analyticsCmd, presetsCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config file and applies flags the user set explicitly.
func setup(cmd *cobra.Command) error {
	cfg = config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("width") {
		cfg.Viewport.Width = width
	}
	if flags.Changed("height") {
		cfg.Viewport.Height = height
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = addr
	}
	if cmd.Name() == "bench" && flags.Changed("frames") {
		cfg.Bench.Frames = benchFrames
	}
	if flags.Changed("seeds") {
		cfg.Bench.Seeds = seeds
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func currentTheme() *config.Theme {
	return config.GetPreset(cfg.Theme)
}

func viewport() starfield.Size {
	return starfield.Size{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height}
}

// watchedConfig is the config file the live views reload, if any.
func watchedConfig() (string, error) {
	if !watch {
		return "", nil
	}
	if configFile == "" {
		return "", fmt.Errorf("--watch needs --config")
	}
	return configFile, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	path, err := watchedConfig()
	if err != nil {
		return err
	}
	return viz.Run(viz.Options{
		Theme:      currentTheme(),
		FPS:        cfg.FPS,
		Seed:       cfg.Seed,
		Logger:     logger,
		ConfigPath: path,
	})
}

func runGUI(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	path, err := watchedConfig()
	if err != nil {
		return err
	}
	return gui.Run(gui.Options{
		Size:       viewport(),
		Theme:      currentTheme(),
		FPS:        cfg.FPS,
		Seed:       cfg.Seed,
		Logger:     logger,
		ConfigPath: path,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg.Server, logger).Run(ctx)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	accent := currentTheme().Accent
	svg := export.NewSVG()
	runCfg := sim.Config{
		Size:     viewport(),
		Frames:   snapshotFrames,
		FPS:      cfg.FPS,
		Seed:     cfg.SeedOr(time.Now().UnixNano()),
		Surface:  svg,
		Accent:   &accent,
		RealTime: realTime,
	}

	res, err := sim.New(logger).Run(cmd.Context(), runCfg)
	if err != nil {
		return err
	}

	if output == "-" {
		_, err = svg.WriteTo(os.Stdout)
		return err
	}
	err = writeFile(output, func(w io.Writer) error {
		_, err := svg.WriteTo(w)
		return err
	})
	if err != nil {
		return err
	}
	last := res.Stats[len(res.Stats)-1]
	fmt.Printf("wrote %s: frame %d, %d stars, %d connectors (seed %d)\n",
		output, last.Frame, last.Circles, last.Lines, res.Seed)
	return nil
}

// writeFile creates path, hands it to write and reports the first of the
// write and close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func runBench(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	runCfg := sim.Config{
		Size:     viewport(),
		Frames:   cfg.Bench.Frames,
		FPS:      cfg.FPS,
		RealTime: realTime,
	}
	ens := sim.NewEnsemble(cfg.Bench.Seeds, benchSeed, metrics.Default, logger)

	start := time.Now()
	results, err := ens.Run(cmd.Context(), runCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if csvOut != "" {
		err := writeFile(csvOut, func(w io.Writer) error {
			return export.WriteCSV(w, results[0])
		})
		if err != nil {
			return err
		}
	}

	if jsonOut {
		runs := make([]export.RunData, len(results))
		for i, res := range results {
			runs[i] = export.NewRunData(runCfg, res, false)
		}
		return export.WriteJSON(os.Stdout, runs)
	}

	names := make([]string, 0)
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("benchmarking %d runs of %d frames at %dx%d\n\n",
		len(results), runCfg.Frames, runCfg.Size.Width, runCfg.Size.Height)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w, "\tDRAWS")
	for _, res := range results {
		fmt.Fprintf(w, "%d", res.Seed)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.3f", res.Metrics[name])
		}
		fmt.Fprintf(w, "\t%d\n", res.Draws.Draws())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total := len(results) * runCfg.Frames
	fmt.Printf("\n%d frames in %v (%.0f frames/sec)\n", total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	if period := analysis.DominantPeriod(results[0].Opacity(), cfg.FrameInterval()); period > 0 {
		fmt.Printf("opacity pulse period: %v\n", period.Round(10*time.Millisecond))
	}
	fmt.Println()

	graph := asciigraph.Plot(results[0].Lines(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("connectors per frame (seed %d)", results[0].Seed)))
	fmt.Println(graph)
	return nil
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	period, err := analytics.ParseRange(rangeFlag)
	if err != nil {
		return err
	}
	src := rand.New(rand.NewSource(cfg.SeedOr(time.Now().UnixNano())))
	report := analytics.Generate(src, period)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("analytics (%s, mock data)\n\n", period)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "page views\t%d\n", report.PageViews)
	fmt.Fprintf(w, "unique visitors\t%d\n", report.UniqueVisitors)
	fmt.Fprintf(w, "resume downloads\t%d\n", report.ResumeDownloads)
	fmt.Fprintf(w, "avg session\t%ds\n", report.AvgSessionDuration)
	fmt.Fprintf(w, "bounce rate\t%d%%\n", report.BounceRate)
	fmt.Fprintln(w, "\t")
	fmt.Fprintln(w, "PAGE\tVIEWS\tSHARE")
	for _, p := range report.TopPages {
		fmt.Fprintf(w, "%s\t%d\t%d%%\n", p.Page, p.Views, p.Percentage)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	graph := asciigraph.Plot(report.WeeklyViews(),
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("weekly page views (Mon-Sun)"))
	fmt.Println(graph)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.FPS == 0 {
		sc.FPS = cfg.FPS
	}

	fmt.Printf("scenario %s", sc.Name)
	if sc.Description != "" {
		fmt.Printf(": %s", sc.Description)
	}
	fmt.Print("\n\n")

	results, runErr := automation.RunScenario(cmd.Context(), sc, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tACTION\tFRAMES\tDRAWS\tRUNNING\tSIZE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%t\t%dx%d\n",
			r.Step, r.Action, r.Drawn, r.Draws, r.Running, r.Size.Width, r.Size.Height)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	fmt.Printf("\nall %d steps passed\n", len(results))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	results, err := automation.RunSweep(cmd.Context(), &automation.ViewportSweep{
		MinSide:  sweepMin,
		MaxSide:  sweepMax,
		NumSteps: sweepSteps,
		Frames:   sweepFrames,
		FPS:      cfg.FPS,
		Seed:     cfg.SeedOr(1),
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIDE\tMEAN CONNECTORS\tPEAK")
	means := make([]float64, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%.1f\t%.0f\n", r.Side, r.MeanConnectors, r.PeakConnectors)
		means[i] = r.MeanConnectors
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	graph := asciigraph.Plot(means,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("mean connectors, side %d..%d", sweepMin, sweepMax)))
	fmt.Println(graph)
	return nil
}
