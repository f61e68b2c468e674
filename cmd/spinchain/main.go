package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/spinchain/internal/analysis"
	"github.com/san-kum/spinchain/internal/config"
	"github.com/san-kum/spinchain/internal/export"
	"github.com/san-kum/spinchain/internal/metrics"
	"github.com/san-kum/spinchain/internal/micromag"
	"github.com/san-kum/spinchain/internal/storage"
	"github.com/san-kum/spinchain/internal/sweep"
	"github.com/san-kum/spinchain/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	size       int
	initPolicy string
	seed       int64
	rule       string
	maxIter    int
	tolerance  float64
	timeStep   float64
	workers    int

	runName    string
	xlsxPath   string
	printCells bool
	noSave     bool
	traceEvery int

	format  string
	outPath string

	component int

	fieldMin   float64
	fieldMax   float64
	fieldSteps int
	fieldDir   []float64
	parallel   int
)

// main registers the command tree and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "spinchain",
		Short:        "relax a 1D chain of magnetic moments under LLG dynamics",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spinchain", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "relax a chain and save the result",
		Args:  cobra.NoArgs,
		RunE:  runRelaxation,
	}
	bindRunFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "relax", "run name prefix")
	runCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the final magnetizations to this .xlsx file")
	runCmd.Flags().BoolVar(&printCells, "print", false, "print every cell after relaxation")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().IntVar(&traceEvery, "trace-every", 0, "sample energy and norm drift every n iterations (0 disables)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "relax a chain with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	bindRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print the final magnetization of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot magnetization profile and convergence",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "profile statistics and spatial spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&component, "component", 0, "component for the spectrum (0=x, 1=y, 2=z)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export final magnetizations (xlsx, csv, json)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "xlsx", "output format: xlsx, csv, json, meta")
	exportCmd.Flags().StringVar(&outPath, "out", "", "output path (default vectors.xlsx for xlsx, stdout otherwise)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "relax once per applied field strength and plot m(H)",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	bindRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&fieldMin, "hmin", -1, "lowest field strength")
	sweepCmd.Flags().Float64Var(&fieldMax, "hmax", 1, "highest field strength")
	sweepCmd.Flags().IntVar(&fieldSteps, "steps", 11, "number of field values")
	sweepCmd.Flags().Float64SliceVar(&fieldDir, "direction", []float64{1, 0, 0}, "field direction")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent relaxations")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write a config file from defaults or a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	configCmd.Flags().StringVar(&preset, "preset", "", "start from preset")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, plotCmd, analyzeCmd, exportCmd, sweepCmd, presetsCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(logger)
	return nil
}

func bindRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&size, "size", config.DefaultSize, "number of moments")
	cmd.Flags().StringVar(&initPolicy, "init", config.DefaultInit, "initial profile: "+strings.Join(config.InitNames(), ", "))
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed (random init)")
	cmd.Flags().StringVar(&rule, "rule", config.DefaultRule, "update rule: "+strings.Join(micromag.RuleNames(), ", "))
	cmd.Flags().IntVar(&maxIter, "max-iter", micromag.DefaultMaxIterations, "iteration cap")
	cmd.Flags().Float64Var(&tolerance, "tol", micromag.DefaultTolerance, "convergence tolerance on max change")
	cmd.Flags().Float64Var(&timeStep, "dt", micromag.DefaultTimeStep, "time step (llg)")
	cmd.Flags().IntVar(&workers, "workers", 1, "goroutines per step")
}

// resolveConfig layers defaults or the config file, the preset and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(configFile, preset)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Size = size
	}
	if flags.Changed("init") {
		cfg.Init = initPolicy
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("rule") {
		cfg.Rule = rule
	}
	if flags.Changed("max-iter") {
		cfg.Loop.MaxIterations = maxIter
	}
	if flags.Changed("tol") {
		cfg.Loop.Tolerance = tolerance
	}
	if flags.Changed("dt") {
		cfg.Physics.TimeStep = timeStep
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type setup struct {
	cfg   *config.Config
	c     micromag.Constants
	rule  micromag.UpdateRule
	chain *micromag.Chain
}

func prepare(cmd *cobra.Command) (*setup, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	c, err := cfg.Constants()
	if err != nil {
		return nil, err
	}
	r, err := cfg.UpdateRule()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.InitPolicy()
	if err != nil {
		return nil, err
	}
	chain, err := micromag.NewChain(cfg.Size, policy)
	if err != nil {
		return nil, err
	}
	return &setup{cfg: cfg, c: c, rule: r, chain: chain}, nil
}

func runRelaxation(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd)
	if err != nil {
		return err
	}

	slog.Info("relaxing chain",
		"size", s.cfg.Size,
		"init", s.cfg.Init,
		"rule", s.rule.Name(),
		"max_iterations", s.c.MaxIterations,
		"tolerance", s.c.Tolerance)

	relaxer := micromag.NewRelaxer(s.c, s.rule)
	relaxer.SetLogger(slog.Default())

	var (
		trace *metrics.EnergyTrace
		drift *metrics.NormDrift
	)
	if traceEvery > 0 {
		trace = metrics.NewEnergyTrace(s.c, traceEvery)
		drift = metrics.NewNormDrift()
		relaxer.AddObserver(trace)
		relaxer.AddObserver(drift)
	}

	start := time.Now()
	result, err := relaxer.Minimize(cmd.Context(), s.chain)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println(viz.Summary(runName, result))

	if trace != nil {
		slog.Info("trace",
			"samples", len(trace.Energies),
			"energy_increases", trace.Increases(),
			"max_norm_drift", drift.Value())
		if len(trace.Energies) > 1 {
			fmt.Println(viz.ComponentPlot(trace.Energies, "energy vs sample", 80, 10))
			fmt.Println()
		}
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(runName, s.cfg, result, elapsed)
		if err != nil {
			return fmt.Errorf("relaxation finished but saving failed: %w", err)
		}
		fmt.Printf("run id: %s\n", runID)
	}

	var exportErr error
	if xlsxPath != "" {
		exportErr = writeSpreadsheet(xlsxPath, result.Final)
	}

	if printCells {
		if err := export.Print(os.Stdout, result.Final); err != nil {
			return errors.Join(exportErr, err)
		}
	}
	return exportErr
}

// writeSpreadsheet exports the final state. The run is already complete and
// stored when this fails, so the error says so.
func writeSpreadsheet(path string, s micromag.Snapshot) error {
	if err := export.WriteXLSX(path, s); err != nil {
		return fmt.Errorf("relaxation finished but spreadsheet export failed: %w", err)
	}
	slog.Info("spreadsheet written", "path", path)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s chain (%d sites)", s.cfg.Init, s.cfg.Size)
	m := viz.NewModel(title, s.chain, s.c, s.rule)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(fieldDir) != 3 {
		return fmt.Errorf("direction needs 3 components, got %d", len(fieldDir))
	}
	if fieldSteps < 1 {
		return fmt.Errorf("steps must be positive, got %d", fieldSteps)
	}

	values := sweep.Linspace(fieldMin, fieldMax, fieldSteps)
	dir := micromag.Vec3{fieldDir[0], fieldDir[1], fieldDir[2]}

	slog.Info("sweeping field",
		"size", cfg.Size,
		"rule", cfg.Rule,
		"from", fieldMin,
		"to", fieldMax,
		"steps", fieldSteps)

	points, err := sweep.New(cfg, dir, values, parallel).Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "H\tSTATUS\tITER\tM·H\tENERGY")
	alignment := make([]float64, len(points))
	for i, p := range points {
		alignment[i] = p.Alignment
		fmt.Fprintf(w, "%.4g\t%s\t%d\t%.6f\t%.4e\n", p.Field, p.Status, p.Iterations, p.Alignment, p.Energy)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.ComponentPlot(alignment, "m·h vs field step", 80, 12))
	return nil
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
	fmt.Fprintln(w, "ID\tTIME\tSIZE\tINIT\tRULE\tSTATUS\tITER\tMAX_CHANGE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%d\t%.3e\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Size,
			run.Init,
			run.Rule,
			run.Status,
			run.Iterations,
			run.MaxChange,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	mags, err := st.LoadMagnetizations(args[0])
	if err != nil {
		return err
	}
	return export.Print(os.Stdout, mags)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	mags, err := st.LoadMagnetizations(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	if len(mags) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("status: %s after %d iterations\n\n", meta.Status, meta.Iterations)

	fmt.Println(viz.ProfilePlot(mags, 80, 12))
	fmt.Println()
	if len(history) > 0 {
		fmt.Println(viz.ConvergencePlot(history, 80, 10))
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	if component < 0 || component > 2 {
		return fmt.Errorf("component must be 0, 1 or 2, got %d", component)
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	mags, err := st.LoadMagnetizations(runID)
	if err != nil {
		return err
	}
	if len(mags) == 0 {
		return fmt.Errorf("no data")
	}

	easyAxis := micromag.Vec3{1, 0, 0}
	if meta.Config != nil {
		if c, err := meta.Config.Constants(); err == nil {
			easyAxis = c.EasyAxis
		}
	}

	stats := analysis.Summarize(mags, easyAxis)
	fmt.Printf("analysis: %s\n\n", meta.ID)
	fmt.Printf("mean m:         (%.6f, %.6f, %.6f)\n", stats.Mean[0], stats.Mean[1], stats.Mean[2])
	fmt.Printf("mean m·e:       %.6f\n", stats.MeanAlignment)
	fmt.Printf("max twist:      %.4f rad\n", stats.MaxTwist)
	fmt.Printf("total twist:    %.4f rad\n\n", stats.TotalTwist)

	amp := analysis.AmplitudeSpectrum(mags.Components(component))
	axis := []string{"x", "y", "z"}[component]
	fmt.Println(viz.ComponentPlot(amp, fmt.Sprintf("spatial amplitude spectrum |F(k)| (m_%s)", axis), 80, 12))
	fmt.Println()

	k, amplitude := analysis.DominantMode(amp)
	if k == 0 {
		fmt.Println("no oscillating component")
		return nil
	}
	fmt.Printf("dominant mode: k=%d (wavelength %.2f sites, |F|=%.4f)\n", k, float64(len(mags))/float64(k), amplitude)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	if format == "meta" {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}

	mags, err := st.LoadMagnetizations(runID)
	if err != nil {
		return err
	}

	switch format {
	case "xlsx":
		path := outPath
		if path == "" {
			path = "vectors.xlsx"
		}
		if err := export.WriteXLSX(path, mags); err != nil {
			return err
		}
		fmt.Printf("wrote %d rows to %s\n", len(mags), path)
		return nil
	case "csv", "json":
		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if format == "csv" {
			return export.WriteCSV(out, mags)
		}
		return export.WriteJSON(out, mags)
	default:
		return fmt.Errorf("unknown format: %s (available: xlsx, csv, json, meta)", format)
	}
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve("", preset)
	if err != nil {
		return err
	}
	if err = config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
