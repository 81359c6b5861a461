// Package runner drives one complete run: it picks a strategy from the
// startup variant, wires the session, search, trace and metrics together,
// and reports the final length to the arbiter.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"keymaker/pkg/engine/protocol"
	"keymaker/pkg/game/config"
	"keymaker/pkg/game/metrics"
	"keymaker/pkg/game/perception"
	"keymaker/pkg/game/renderer"
	"keymaker/pkg/game/search"
	"keymaker/pkg/game/state"
)

// Result is the outcome of a run
type Result struct {
	Strategy string
	Startup  protocol.Startup
	Length   int
	Rounds   int
	Session  *state.Session
	// Truncated is set when the planner ran out of rounds and the last
	// successful length was reported instead
	Truncated bool
}

// Runner plays runs with a fixed configuration
type Runner struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Recorder
	renderer renderer.Renderer
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics counts channel traffic and search events into rec
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = rec }
}

// WithRenderer renders a frame after every decision and a summary at the end
func WithRenderer(rend renderer.Renderer) Option {
	return func(r *Runner) { r.renderer = rend }
}

// New creates a runner
func New(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Strategy returns the search used for a startup variant. Variant 1 (and
// anything below) backtracks, every other variant replans with A*, unless
// the configuration pins a strategy.
func (r *Runner) Strategy(variant int) string {
	switch r.cfg.Strategy {
	case config.StrategyBacktrack, config.StrategyAStar:
		return r.cfg.Strategy
	}
	if variant <= 1 {
		return config.StrategyBacktrack
	}
	return config.StrategyAStar
}

// Play runs a session over a text stream: it reads the startup, searches,
// and writes the result.
func (r *Runner) Play(ctx context.Context, in io.Reader, out io.Writer) (Result, error) {
	stream := perception.NewStream(in, out)
	startup, err := stream.Startup()
	if err != nil {
		return Result{Length: search.NoPath}, err
	}
	return r.Run(ctx, stream, startup)
}

// Run searches over ch and reports the result on it. Channel errors end the
// run without a report.
func (r *Runner) Run(ctx context.Context, ch perception.Channel, startup protocol.Startup) (Result, error) {
	res := Result{
		Strategy: r.Strategy(startup.Variant),
		Startup:  startup,
		Length:   search.NoPath,
	}
	logger := r.logger.With("strategy", res.Strategy, "variant", startup.Variant)
	logger.Info("run started", "target", startup.Target)

	opts := []search.Option{search.WithLogger(logger)}
	if r.metrics != nil {
		ch = r.metrics.Wrap(ch)
		opts = append(opts, search.WithRecorder(r.metrics))
	}
	if r.cfg.Trace && r.renderer != nil {
		opts = append(opts, search.WithObserver(r.renderer.RenderFrame))
	}

	var err error
	switch res.Strategy {
	case config.StrategyBacktrack:
		res.Session = state.NewSession(startup.Target, state.Accumulate)
		res.Length, err = search.NewBacktracker(ch, res.Session, opts...).Run(ctx)
	default:
		res.Session = state.NewSession(startup.Target, state.Overwrite)
		res.Session.DissipateNearAgents = r.cfg.Planner.DissipateNearAgents
		opts = append(opts,
			search.WithStepPolicy(r.cfg.StepPolicy()),
			search.WithMaxRounds(r.cfg.Planner.MaxRounds),
		)
		planner := search.NewPlanner(ch, res.Session, opts...)
		res.Length, err = planner.Run(ctx)
		res.Rounds = len(planner.Rounds())
	}

	switch {
	case errors.Is(err, search.ErrRoundLimit):
		logger.Warn("reporting last planned length", "length", res.Length, "err", err)
		res.Truncated = true
	case err != nil:
		return res, fmt.Errorf("%s search: %w", res.Strategy, err)
	}

	if err := ch.Report(ctx, res.Length); err != nil {
		return res, fmt.Errorf("report result: %w", err)
	}
	logger.Info("run finished", "length", res.Length, "moves", res.Session.Moves, "hazards", res.Session.Grid.HazardCount())

	if r.renderer != nil {
		r.renderer.RenderSummary(renderer.Summary{
			Strategy: res.Strategy,
			Variant:  startup.Variant,
			Target:   res.Session.Grid.Target(),
			Length:   res.Length,
			Moves:    res.Session.Moves,
			Hazards:  res.Session.Grid.HazardCount(),
			Rounds:   res.Rounds,
		})
	}
	return res, nil
}
