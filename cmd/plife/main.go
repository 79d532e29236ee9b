package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/plife/internal/analysis"
	"github.com/san-kum/plife/internal/config"
	"github.com/san-kum/plife/internal/experiment"
	"github.com/san-kum/plife/internal/export"
	"github.com/san-kum/plife/internal/forces"
	"github.com/san-kum/plife/internal/gui"
	"github.com/san-kum/plife/internal/optim"
	"github.com/san-kum/plife/internal/physics"
	"github.com/san-kum/plife/internal/sim"
	"github.com/san-kum/plife/internal/storage"
	"github.com/san-kum/plife/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var (
	dataDir    string
	verbose    bool
	configFile string

	name         string
	numParticles int
	capacity     int
	colors       int
	matrixPreset int
	matrixLow    float64
	matrixHigh   float64
	width        float64
	height       float64
	radius       float64
	drag         float64
	strategy     string
	initMode     string
	dt           float64
	steps        int
	sampleEvery  int
	seed         int64

	// gui
	fixedDt   float64
	timeScale float64
	fps       int32

	// ensemble
	numRuns int

	// export
	outPath   string
	what      string
	svgScale  float64
	svgMetric string

	// analysis
	metricName string
	epsilon    float64

	// sweep
	sweepParams []string
	maximize    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "plife",
		Short:         "particle life simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".plife", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a headless simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	bindConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run simulation with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	bindConfigFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui [scenario]",
		Short: "run simulation in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	bindConfigFlags(guiCmd)
	guiCmd.Flags().Float64Var(&fixedDt, "fixed-dt", 0, "advance every frame by this dt instead of frame time")
	guiCmd.Flags().Float64Var(&timeScale, "time-scale", gui.DefaultTimeScale, "simulation time per second of frame time")
	guiCmd.Flags().Int32Var(&fps, "fps", 60, "target frame rate")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scenario]",
		Short: "run one configuration under consecutive seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	bindConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seeds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export metrics or final particles to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&what, "what", "metrics", "metrics or particles")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenarios and built-in force matrices",
		RunE:  listPresets,
	}

	matrixCmd := &cobra.Command{
		Use:   "matrix [scenario]",
		Short: "print the force matrix a configuration resolves to",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showMatrix,
	}
	bindConfigFlags(matrixCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark ticks per second by population and sweep",
		RunE:  benchEngine,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file to start from",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	bindConfigFlags(initCmd)

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final particles, or one metric series, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 1, "pixels per world unit")
	exportSVGCmd.Flags().StringVar(&svgMetric, "metric", "", "plot this metric instead of the particles")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summarise and find the dominant period of each metric",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	divergenceCmd := &cobra.Command{
		Use:   "divergence [scenario]",
		Short: "measure how fast a nudged twin drifts from the original",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDivergence,
	}
	bindConfigFlags(divergenceCmd)
	divergenceCmd.Flags().Float64Var(&epsilon, "eps", 1e-6, "initial x offset of particle 0 in the twin")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid search config parameters for the best final metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	bindConfigFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable); names: "+strings.Join(optim.Sweepable, ", "))
	sweepCmd.Flags().StringVar(&metricName, "metric", "clustering", "metric to optimise")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "prefer larger values")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, ensembleCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, analyzeCmd, divergenceCmd, sweepCmd, presetsCmd, matrixCmd, benchCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func bindConfigFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&name, "name", "", "run name")
	f.IntVarP(&numParticles, "particles", "n", d.Particles, "number of particles")
	f.IntVar(&capacity, "capacity", 0, "particle capacity (0 = default)")
	f.IntVarP(&colors, "colors", "k", d.Colors, "number of colour classes")
	f.IntVar(&matrixPreset, "matrix-preset", 0, "built-in force matrix id (0 = random)")
	f.Float64Var(&matrixLow, "matrix-low", d.MatrixRange.Low, "random matrix lower bound")
	f.Float64Var(&matrixHigh, "matrix-high", d.MatrixRange.High, "random matrix upper bound")
	f.Float64Var(&width, "width", d.Width, "world width")
	f.Float64Var(&height, "height", d.Height, "world height")
	f.Float64Var(&radius, "radius", d.RepulsionRadius, "repulsion radius")
	f.Float64Var(&drag, "drag", d.Drag, "drag factor")
	f.StringVar(&strategy, "strategy", d.Strategy, "sweep strategy: sequential or buffered")
	f.StringVar(&initMode, "init", d.Init, "initial layout: uniform or noise")
	f.Float64Var(&dt, "dt", d.Dt, "timestep")
	f.IntVar(&steps, "steps", d.Steps, "number of ticks")
	f.IntVar(&sampleEvery, "sample-every", d.SampleEvery, "record metrics every n ticks")
	f.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
}

// resolveConfig layers defaults, a named scenario, a config file and the
// flags the user actually set, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown scenario: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("name") {
		cfg.Name = name
	}
	if f.Changed("particles") {
		cfg.Particles = numParticles
	}
	if f.Changed("capacity") {
		cfg.Capacity = capacity
	}
	if f.Changed("colors") {
		cfg.Colors = colors
	}
	if f.Changed("matrix-preset") {
		cfg.Preset = matrixPreset
	}
	if f.Changed("matrix-low") {
		cfg.MatrixRange.Low = matrixLow
	}
	if f.Changed("matrix-high") {
		cfg.MatrixRange.High = matrixHigh
	}
	if f.Changed("width") {
		cfg.Width = width
	}
	if f.Changed("height") {
		cfg.Height = height
	}
	if f.Changed("radius") {
		cfg.RepulsionRadius = radius
	}
	if f.Changed("drag") {
		cfg.Drag = drag
	}
	if f.Changed("strategy") {
		cfg.Strategy = strategy
	}
	if f.Changed("init") {
		cfg.Init = initMode
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if f.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	log := newLogger()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	exp.SetLogger(log)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d particles, %d colours, %d ticks (seed %d)...\n", cfg.Particles, cfg.Colors, cfg.Steps, cfg.Seed)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		log.Warn("run stopped early", "err", err, "steps", result.StepsTaken)
	}

	elapsed := time.Since(start)

	meta := storage.NewMetadata(cfg, exp.Engine().Matrix().Rows(), result)
	runID, saveErr := st.Save(meta, result)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.Coincident > 0 {
		fmt.Printf("coincident pairs skipped: %d\n", result.Coincident)
	}
	fmt.Println("\nmetrics:")
	for _, n := range result.Names {
		fmt.Printf("  %s: %.6f\n", n, result.Metrics[n])
	}

	return err
}

func rebuilder(cfg *config.Config) viz.Rebuild {
	reg := experiment.NewRegistry()
	return func(s int64) (*physics.Engine, error) {
		c := cfg.Clone()
		c.Seed = s
		return experiment.Build(reg, c)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	rebuild := rebuilder(cfg)
	engine, err := rebuild(cfg.Seed)
	if err != nil {
		return err
	}

	title := cfg.Name
	if title == "" {
		title = "particle life"
	}
	m := viz.NewModel(engine, rebuild, title, cfg.Seed, cfg.Dt)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	rebuild := rebuilder(cfg)
	engine, err := rebuild(cfg.Seed)
	if err != nil {
		return err
	}

	return gui.Run(engine, rebuild, gui.Options{
		Title:     cfg.Name,
		Seed:      cfg.Seed,
		FixedDt:   fixedDt,
		TimeScale: timeScale,
		TargetFPS: fps,
	})
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("--runs must be positive, got %d", numRuns)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := experiment.NewRegistry()
	simCfg := experiment.New(cfg).SimConfig()
	fmt.Printf("running %d seeds from %d...\n", numRuns, cfg.Seed)

	start := time.Now()
	results, err := sim.NewEnsemble(experiment.Factory(reg, cfg, newLogger()), numRuns, cfg.Seed).Run(ctx, simCfg)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	names := results[0].Names
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", n)
	}
	fmt.Fprintln(w)

	for i, r := range results {
		fmt.Fprintf(w, "%d", cfg.Seed+int64(i))
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[n])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, "mean±sd")
	for _, n := range names {
		vals := make([]float64, len(results))
		for i, r := range results {
			vals[i] = r.Metrics[n]
		}
		mean, sd := stat.MeanStdDev(vals, nil)
		fmt.Fprintf(w, "\t%.4f±%.4f", mean, sd)
	}
	fmt.Fprintln(w)

	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tN\tK\tMATRIX\tSTEPS\tDT\tSWEEP\tSEED")

	for _, run := range runs {
		matrix := "random"
		if run.Preset > 0 {
			matrix = fmt.Sprintf("preset %d", run.Preset)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\t%.4f\t%s\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Colors,
			matrix,
			run.StepsTaken,
			run.Dt,
			run.Strategy,
			run.Seed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d  colours: %d  seed: %d\n", meta.Particles, meta.Colors, meta.Seed)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	for _, n := range series.Names {
		data := series.Values[n]
		if len(data) < 2 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s vs time", n)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	ps, err := st.LoadParticles(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{Names: series.Names, Times: series.Times, Series: series.Values, Final: ps}
	data := storage.NewExportData(*meta, result)
	if outPath == "" {
		return storage.ExportJSONStdout(data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	switch what {
	case "metrics":
		series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		if len(series.Times) == 0 {
			return fmt.Errorf("no data to export")
		}
		return storage.WriteSeriesCSV(os.Stdout, &sim.Result{Names: series.Names, Times: series.Times, Series: series.Values})
	case "particles":
		ps, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		return storage.WriteParticlesCSV(os.Stdout, ps)
	default:
		return fmt.Errorf("unknown export %q: want metrics or particles", what)
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tN\tK\tMATRIX\tINIT\tSWEEP")
	for _, n := range config.ListPresets() {
		p := config.GetPreset(n)
		matrix := fmt.Sprintf("random [%g,%g]", p.MatrixRange.Low, p.MatrixRange.High)
		if p.Preset > 0 {
			matrix = fmt.Sprintf("preset %d", p.Preset)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n", n, p.Particles, p.Colors, matrix, p.Init, p.Strategy)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATRIX\tCOLOURS\tNAME")
	for _, p := range forces.Presets() {
		fmt.Fprintf(w, "%d\t%d\t%s\n", p.ID, p.Colors, p.Name)
	}
	return w.Flush()
}

func showMatrix(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	m, err := experiment.BuildMatrix(rand.New(rand.NewSource(cfg.Seed)), cfg)
	if err != nil {
		return err
	}

	fmt.Printf("force on row colour from column colour (seed %d):\n", cfg.Seed)
	fmt.Print(m.String())
	fmt.Printf("symmetric: %v\n", m.IsSymmetric())
	return nil
}

func benchEngine(cmd *cobra.Command, args []string) error {
	counts := []int{100, 200, 400, 800}
	strategies := []physics.Strategy{physics.Sequential, physics.Buffered}
	const benchSteps = 50

	reg := experiment.NewRegistry()

	fmt.Println("benchmarking engine")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tSWEEP\tSTEPS\tTIME\tSTEPS/SEC\tPAIRS/SEC")

	for _, n := range counts {
		for _, s := range strategies {
			cfg := config.DefaultConfig()
			cfg.Particles = n
			cfg.Strategy = s.String()
			cfg.Seed = 42

			engine, err := experiment.Build(reg, cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < benchSteps; i++ {
				if err := engine.Step(cfg.Dt); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)

			perSec := float64(benchSteps) / elapsed.Seconds()
			pairs := perSec * float64(n) * float64(n-1)
			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.1f\t%.3g\n", n, s, benchSteps, elapsed.Round(time.Microsecond), perSec, pairs)
		}
	}

	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var svg string
	if svgMetric != "" {
		series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		data, ok := series.Values[svgMetric]
		if !ok {
			return fmt.Errorf("run %s has no metric %q (have %v)", runID, svgMetric, series.Names)
		}
		svg = export.SeriesToSVG(series.Times, data, 800, 400, "#00ff88")
		if svg == "" {
			return fmt.Errorf("not enough samples to plot")
		}
	} else {
		ps, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		svg = export.ParticlesToSVG(ps, meta.Colors, meta.Width, meta.Height, svgScale)
	}

	if outPath == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Times) < 2 {
		return fmt.Errorf("run %s has fewer than two samples", runID)
	}
	sampleDt := series.Times[1] - series.Times[0]

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSD\tMIN\tMAX\tPERIOD")
	for _, n := range series.Names {
		data := series.Values[n]
		if len(data) == 0 {
			continue
		}
		mean, sd := stat.MeanStdDev(data, nil)
		lo, hi := data[0], data[0]
		for _, v := range data {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		period := "-"
		// the last sample may be off the regular grid
		if p, ok := analysis.DominantPeriod(data[:len(data)-1], sampleDt); ok {
			period = fmt.Sprintf("%.3g", p)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n", n, mean, sd, lo, hi, period)
	}
	return w.Flush()
}

func runDivergence(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	a, err := experiment.Build(reg, cfg)
	if err != nil {
		return err
	}
	b, err := experiment.Build(reg, cfg)
	if err != nil {
		return err
	}
	ps := b.Set().Particles()
	ps[0].Pos.X = physics.Wrap(ps[0].Pos.X+epsilon, cfg.Width)

	seps, err := analysis.Divergence(a, b, cfg.Dt, cfg.Steps)
	if err != nil {
		return err
	}

	logSeps := make([]float64, 0, len(seps))
	for _, s := range seps {
		if s > 0 {
			logSeps = append(logSeps, math.Log10(s))
		}
	}
	if len(logSeps) > 1 {
		fmt.Println(asciigraph.Plot(logSeps,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("log10 RMS separation vs tick"),
		))
		fmt.Println()
	}

	fmt.Printf("initial offset: %g\n", epsilon)
	fmt.Printf("final separation: %.6g\n", seps[len(seps)-1])
	fmt.Printf("growth rate: %.6g per unit time\n", analysis.GrowthRate(seps, cfg.Dt))
	return nil
}

func parseAxis(arg string) (optim.Axis, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || list == "" {
		return optim.Axis{}, fmt.Errorf("bad --param %q: want name=v1,v2", arg)
	}
	axis := optim.Axis{Name: name}
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return optim.Axis{}, fmt.Errorf("bad --param %q: %w", arg, err)
		}
		axis.Values = append(axis.Values, v)
	}
	return axis, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	axes := make([]optim.Axis, 0, len(sweepParams))
	for _, p := range sweepParams {
		axis, err := parseAxis(p)
		if err != nil {
			return err
		}
		axes = append(axes, axis)
	}

	g := optim.NewGridSearch(axes)
	if maximize {
		g.Maximize()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, all, err := g.Search(ctx, optim.Builder(experiment.NewRegistry(), cfg), metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, a := range axes {
		fmt.Fprintf(w, "%s\t", strings.ToUpper(a.Name))
	}
	fmt.Fprintln(w, strings.ToUpper(metricName))
	for _, p := range all {
		for _, a := range axes {
			fmt.Fprintf(w, "%g\t", p.Params[a.Name])
		}
		fmt.Fprintf(w, "%.6f\n", p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6f at %v\n", metricName, best.Value, best.Params)
	return nil
}
