package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"keymaker/pkg/engine/terminal"
	"keymaker/pkg/game/arbiter"
	"keymaker/pkg/game/config"
	"keymaker/pkg/game/devtools"
	"keymaker/pkg/game/metrics"
	"keymaker/pkg/game/renderer"
	"keymaker/pkg/game/renderer/tui"
	"keymaker/pkg/game/runner"
)

// cliOptions holds the raw flag values. Flags only override the config when
// they were set explicitly.
type cliOptions struct {
	configPath  string
	strategy    string
	logLevel    string
	color       string
	language    string
	metricsFile string
	stepPolicy  string
	trace       bool
	scenario    string
	dumpPath    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "keymaker:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}

	play := func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, opts, stdin, stdout, stderr)
	}

	rootCmd := &cobra.Command{
		Use:   "keymaker",
		Short: "Find the shortest path to the keymaker on a partially observed grid",
		Long: `keymaker talks to an arbiter over stdin/stdout: it sends moves, reads
perception batches and finally reports the length of the shortest path.
Logs and the optional trace go to stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          play,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&opts.strategy, "strategy", "", "search strategy: variant, backtrack or astar")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&opts.trace, "trace", false, "render the known grid after every move")
	pf.StringVar(&opts.color, "color", "", "trace colour: auto, always or never")
	pf.StringVar(&opts.language, "language", "", "message catalogue language ("+strings.Join(renderer.Languages(), "|")+")")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when the run ends")
	pf.StringVar(&opts.stepPolicy, "step-policy", "", "planner step policy: snap or row-wrap")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play one run against an arbiter on stdin/stdout (default)",
		RunE:  play,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play one run against the built-in arbiter for a scenario file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts, stdout, stderr)
		},
	}
	simulateCmd.Flags().StringVar(&opts.scenario, "scenario", "", "path to a YAML scenario")
	simulateCmd.Flags().StringVar(&opts.dumpPath, "dump", "", "write a debug dump of the run to this file")
	_ = simulateCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(playCmd, simulateCmd)
	return rootCmd
}

// loadConfig merges the config file, the environment and explicitly set flags
func loadConfig(cmd *cobra.Command, opts *cliOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath, os.LookupEnv)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Strategy = opts.strategy
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("trace") {
		cfg.Trace = opts.trace
	}
	if flags.Changed("color") {
		cfg.Color = opts.color
	}
	if flags.Changed("language") {
		cfg.Language = opts.language
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if flags.Changed("step-policy") {
		cfg.Planner.StepPolicy = opts.stepPolicy
	}
	return cfg, cfg.Validate()
}

// useColor resolves the colour mode for output written to w
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		color.ForceOpenColor()
		return true
	case config.ColorNever:
		return false
	default:
		return terminal.IsTerminal(w)
	}
}

func newRenderer(cfg config.Config, w io.Writer) (renderer.Renderer, error) {
	po, err := renderer.Catalog(cfg.Language)
	if err != nil {
		return nil, err
	}
	return tui.New(w, po, useColor(cfg.Color, w)), nil
}

// buildRunner wires logging, metrics and the trace renderer. The renderer is
// only attached when out is non-nil.
func buildRunner(cfg config.Config, out, stderr io.Writer) (*runner.Runner, *metrics.Recorder, *slog.Logger, error) {
	logger := cfg.Logger(stderr)
	opts := []runner.Option{runner.WithLogger(logger)}

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.New()
		opts = append(opts, runner.WithMetrics(rec))
	}

	if out != nil {
		rend, err := newRenderer(cfg, out)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, runner.WithRenderer(rend))
	}

	return runner.New(cfg, opts...), rec, logger, nil
}

func writeMetrics(rec *metrics.Recorder, path string, logger *slog.Logger) error {
	if rec == nil {
		return nil
	}
	if err := rec.WriteFile(path); err != nil {
		return err
	}
	logger.Debug("metrics written", "path", path)
	return nil
}

func runPlay(cmd *cobra.Command, opts *cliOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	// stdout carries the protocol, so the trace can only go to stderr
	var traceOut io.Writer
	if cfg.Trace {
		traceOut = stderr
	}
	r, rec, logger, err := buildRunner(cfg, traceOut, stderr)
	if err != nil {
		return err
	}

	_, runErr := r.Play(cmd.Context(), stdin, stdout)
	if err := writeMetrics(rec, cfg.MetricsFile, logger); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func runSimulate(cmd *cobra.Command, opts *cliOptions, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	sc, err := arbiter.LoadScenario(opts.scenario)
	if err != nil {
		return err
	}

	r, rec, logger, err := buildRunner(cfg, stdout, stderr)
	if err != nil {
		return err
	}

	res, a, runErr := r.Simulate(cmd.Context(), sc)
	if runErr == nil {
		fmt.Fprintf(stdout, "scenario %q: reported %d, optimal %d, %d moves\n", sc.Name, res.Length, sc.Optimal(), len(a.Moves()))
	}
	if opts.dumpPath != "" {
		path, err := devtools.DumpRunToFile(opts.dumpPath, a, res.Session)
		if err != nil && runErr == nil {
			return err
		}
		logger.Info("run dumped", "path", path)
	}
	if err := writeMetrics(rec, cfg.MetricsFile, logger); err != nil && runErr == nil {
		return err
	}
	return runErr
}
