package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/extrema/internal/analysis"
	"github.com/san-kum/extrema/internal/calculus"
	"github.com/san-kum/extrema/internal/config"
	"github.com/san-kum/extrema/internal/engine"
	"github.com/san-kum/extrema/internal/expr"
	"github.com/san-kum/extrema/internal/logging"
	"github.com/san-kum/extrema/internal/plot"
	"github.com/san-kum/extrema/internal/storage"
	"github.com/san-kum/extrema/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	devLog     bool
	bindings   map[string]string
	// search
	rangeText string
	step      float64
	tol       float64
	convTol   float64
	maxIter   int
	// output
	noPlot    bool
	check     bool
	save      bool
	jsonOut   bool
	plotWidth int
	plotRows  int
	workers   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "extrema",
		Short:        "find critical points and extrema of a function",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config: runs)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use a preset function and range")
	rootCmd.PersistentFlags().StringVar(&rangeText, "range", "", "search range, e.g. \"[-1/2, 2]\"")
	rootCmd.PersistentFlags().StringToStringVar(&bindings, "let", nil, "bind a symbol, e.g. --let a=3")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&devLog, "dev-log", false, "human readable development logs")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [function]",
		Short: "find critical points and extrema",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeFunction,
	}
	analyzeCmd.Flags().Float64Var(&step, "step", calculus.DefaultStep, "scan step")
	analyzeCmd.Flags().Float64Var(&tol, "tol", calculus.DefaultTolerance, "detection tolerance")
	analyzeCmd.Flags().Float64Var(&convTol, "conv-tol", 0, "newton convergence tolerance (default: --tol)")
	analyzeCmd.Flags().IntVar(&maxIter, "max-iter", calculus.DefaultMaxIterations, "newton iteration cap")
	analyzeCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the chart")
	analyzeCmd.Flags().BoolVar(&check, "check", false, "compare the derivative with finite differences")
	analyzeCmd.Flags().BoolVar(&save, "save", false, "save the run")
	analyzeCmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as json")
	analyzeCmd.Flags().IntVar(&plotWidth, "width", config.DefaultPlotWidth, "chart width")
	analyzeCmd.Flags().IntVar(&plotRows, "height", config.DefaultPlotHeight, "chart height")

	deriveCmd := &cobra.Command{
		Use:   "derive [function]",
		Short: "print the first derivative",
		Args:  cobra.MaximumNArgs(1),
		RunE:  deriveFunction,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFUNCTION\tRANGE\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				iv := calculus.Interval{Lo: p.Range.Lo, Hi: p.Range.Hi}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Function, iv, p.Description)
			}
			return w.Flush()
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch [function...]",
		Short: "analyze several functions concurrently (default: every preset)",
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent analyses (default: number of CPUs)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the sampled curve to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [file]",
		Short: "export the curve and critical points to SVG",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportSVG,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [file]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(analyzeCmd, deriveCmd, batchCmd, presetsCmd, listCmd, showCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers preset, config file, then flags and arguments.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Apply(p)
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if len(args) > 0 {
		cfg.Function = args[0]
	}
	if rangeText != "" {
		iv, err := analysis.ParseInterval(rangeText)
		if err != nil {
			return nil, err
		}
		cfg.SetInterval(iv)
	}
	if len(bindings) > 0 {
		if cfg.Scope == nil {
			cfg.Scope = map[string]float64{}
		}
		for k, v := range bindings {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid binding %s=%s: %w", k, v, err)
			}
			cfg.Scope[k] = f
		}
	}

	flags := cmd.Flags()
	if flags.Changed("step") {
		cfg.Search.Step = step
	}
	if flags.Changed("tol") {
		cfg.Search.Tolerance = tol
	}
	if flags.Changed("conv-tol") {
		cfg.Search.ConvergenceTolerance = convTol
	}
	if flags.Changed("max-iter") {
		cfg.Search.MaxIterations = maxIter
	}
	if flags.Changed("width") {
		cfg.Plot.Width = plotWidth
	}
	if flags.Changed("height") {
		cfg.Plot.Height = plotRows
	}
	if flags.Changed("no-plot") {
		cfg.Plot.Enabled = !noPlot
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("dev-log") {
		cfg.Log.Development = devLog
		if devLog && !flags.Changed("log-level") {
			cfg.Log.Level = "debug"
		}
	}
	return cfg, nil
}

func newAnalyzer(cfg *config.Config, logger *logging.Logger) *analysis.Analyzer {
	return analysis.New(engine.New(cfg.Scope), cfg.FinderConfig(),
		analysis.WithLogger(logger.Named("analysis").Logger))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// the alt screen owns the terminal, keep logs out of it
	logger := logging.NewNop()
	iv := cfg.Interval()
	rng := fmt.Sprintf("%s, %s", expr.FormatNumber(iv.Lo), expr.FormatNumber(iv.Hi))
	return tui.RunInteractive(newAnalyzer(cfg, logger), storage.New(cfg.DataDir), cfg.Function, rng)
}

func analyzeFunction(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	iv := cfg.Interval()
	report, err := newAnalyzer(cfg, logger).Run(ctx, analysis.Request{
		Function:        cfg.Function,
		Interval:        &iv,
		CurveStep:       cfg.Plot.Step,
		CheckDerivative: check,
	})
	if errors.Is(err, analysis.ErrDegenerateDerivative) {
		if jsonOut {
			return storage.EncodeJSON(os.Stdout, report)
		}
		fmt.Printf("f'(x) = %s\n\n", report.Derivative)
		fmt.Println(report.Log[0])
		return nil
	}
	if err != nil {
		logger.Debug("analysis failed", zap.Error(err))
		return err
	}

	var runID string
	if save {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if runID, err = st.Save(report); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
	}

	if jsonOut {
		return storage.EncodeJSON(os.Stdout, report)
	}

	fmt.Printf("f(x)  = %s\n", report.Function)
	fmt.Printf("f'(x) = %s\n", report.Derivative)
	fmt.Printf("range   %s\n\n", report.Interval)
	for _, line := range report.Log {
		fmt.Println(line)
	}
	for _, f := range report.Failures {
		fmt.Printf("skipped x = %s after %d iterations: %s\n", expr.FormatNumber(f.Candidate), f.Iterations, f.Reason)
	}

	if len(report.Stationary) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "X\tF(X)\tF''(X)\tKIND")
		for _, sp := range report.Stationary {
			fmt.Fprintf(w, "%.6g\t%.6g\t%.4g\t%s\n", sp.X, sp.Y, sp.Curvature, sp.Kind)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if report.Check != nil {
		fmt.Printf("\nderivative check: max deviation %.3g at x = %.4g over %d samples\n",
			report.Check.MaxDeviation, report.Check.At, report.Check.Samples)
	}

	if cfg.Plot.Enabled && len(report.Curve) > 0 {
		fmt.Println()
		fmt.Println(plot.Chart(report.Curve, plot.ChartOptions{
			Width:     cfg.Plot.Width,
			Height:    cfg.Plot.Height,
			Caption:   plot.Caption(report),
			Precision: 2,
		}))
	}

	if runID != "" {
		fmt.Printf("\nsaved run %s\n", runID)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	var reqs []analysis.Request
	if len(args) > 0 {
		iv := cfg.Interval()
		for _, fn := range args {
			reqs = append(reqs, analysis.Request{Function: fn, Interval: &iv})
		}
	} else {
		for _, name := range config.ListPresets() {
			p := config.GetPreset(name)
			iv := calculus.Interval{Lo: p.Range.Lo, Hi: p.Range.Hi}
			reqs = append(reqs, analysis.Request{Function: p.Function, Interval: &iv})
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := newAnalyzer(cfg, logger).RunBatch(ctx, reqs, workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FUNCTION\tRANGE\tCRITICAL POINTS\tMAX\tMIN")
	for _, r := range results {
		iv := *r.Request.Interval
		switch {
		case errors.Is(r.Err, analysis.ErrDegenerateDerivative):
			fmt.Fprintf(w, "%s\t%s\tnone (constant derivative)\t-\t-\n", r.Request.Function, iv)
		case r.Err != nil:
			fmt.Fprintf(w, "%s\t%s\terror: %v\t-\t-\n", r.Request.Function, iv, r.Err)
		default:
			rep := r.Report
			hi, lo := "-", "-"
			if rep.Extrema != nil {
				hi = expr.FormatNumber(rep.Extrema.Maximum.Y)
				lo = expr.FormatNumber(rep.Extrema.Minimum.Y)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rep.Function, iv, formatValues(rep.Roots), hi, lo)
		}
	}
	return w.Flush()
}

func deriveFunction(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	eng := engine.New(cfg.Scope)
	f, err := eng.Parse(cfg.Function)
	if err != nil {
		return fmt.Errorf("invalid expression: %w", err)
	}
	d, err := eng.Differentiate(f, cfg.Search.Variable)
	if err != nil {
		return err
	}
	fmt.Printf("f(x)  = %s\n", f)
	fmt.Printf("f'(x) = %s\n", d)
	if calculus.IsConstantOrZero(d.String()) {
		fmt.Println("the derivative is a constant or zero")
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tFUNCTION\tRANGE\tCRITICAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Function,
			run.Interval,
			len(run.Roots),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	curve, err := st.LoadCurve(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("f(x)  = %s\n", meta.Function)
	fmt.Printf("f'(x) = %s\n", meta.Derivative)
	fmt.Printf("range   %s\n\n", meta.Interval)
	fmt.Println(strings.Join(meta.Log, "\n"))

	if len(curve) > 0 {
		fmt.Println()
		fmt.Println(plot.Chart(curve, plot.ChartOptions{
			Width:     cfg.Plot.Width,
			Height:    cfg.Plot.Height,
			Caption:   fmt.Sprintf("f(x) = %s", meta.Function),
			Precision: 2,
		}))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	meta, err := storage.New(cfg.DataDir).Load(args[0])
	if err != nil {
		return err
	}
	return storage.EncodeJSON(os.Stdout, meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	curve, err := storage.New(cfg.DataDir).LoadCurve(args[0])
	if err != nil {
		return err
	}
	if len(curve) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCurveCSV(os.Stdout, curve)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	curve, err := st.LoadCurve(args[0])
	if err != nil {
		return err
	}

	svg := plot.CurveSVG(curve, meta.Stationary, 800, 600, "#00ff88")
	if svg == "" {
		return fmt.Errorf("not enough data to draw")
	}
	if len(args) < 2 {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(args[1], []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func formatValues(vs []float64) string {
	if len(vs) == 0 {
		return "none"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = expr.FormatNumber(v)
	}
	return strings.Join(parts, ", ")
}
