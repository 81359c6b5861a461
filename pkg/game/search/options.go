// Package search implements the two strategies that find the shortest path
// to the target while the grid is revealed one perception batch at a time:
// exhaustive backtracking with pruning, and incremental A* replanning.
package search

import (
	"io"
	"log/slog"

	"keymaker/pkg/game/state"
)

// NoPath is the result reported when the target cannot be reached
const NoPath = -1

// Prune reasons passed to Recorder.BranchPruned
const (
	PruneBound = "bound"
	PruneMemo  = "memo"
)

// Recorder receives search events. Implementations must be cheap; they are
// called on every branch.
type Recorder interface {
	BranchPruned(reason string)
	GoalReached(length int)
	Replanned(length int, found bool)
}

// Observer is called after every batch has been applied to the session
type Observer func(s *state.Session)

// Option is a function that modifies Options
type Option func(*Options)

// Options defines parameters shared by both strategies
type Options struct {
	Logger     *slog.Logger
	Recorder   Recorder
	Observer   Observer
	StepPolicy StepPolicy
	MaxRounds  int
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithRecorder sets the event recorder
func WithRecorder(r Recorder) Option {
	return func(o *Options) { o.Recorder = r }
}

// WithObserver sets a callback run after each perception batch is applied
func WithObserver(fn Observer) Option {
	return func(o *Options) { o.Observer = fn }
}

// WithStepPolicy chooses how the planner advances the mover between rounds
func WithStepPolicy(p StepPolicy) Option {
	return func(o *Options) { o.StepPolicy = p }
}

// WithMaxRounds bounds the number of planner rounds. Zero means unbounded.
func WithMaxRounds(n int) Option {
	return func(o *Options) { o.MaxRounds = n }
}

func buildOptions(opts []Option) Options {
	o := Options{StepPolicy: SnapToGoal}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}

type nopRecorder struct{}

func (nopRecorder) BranchPruned(string) {}
func (nopRecorder) GoalReached(int) {}
func (nopRecorder) Replanned(int, bool) {}
