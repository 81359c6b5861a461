// Package metrics counts what happens during one run and exports the counts
// in the Prometheus text format. Every Recorder owns its own registry, so
// runs never share counters.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/perception"
)

const namespace = "keymaker"

// Recorder holds the per-run counters. It satisfies search.Recorder.
type Recorder struct {
	registry *prometheus.Registry

	moves      prometheus.Counter
	batches    prometheus.Counter
	reports    *prometheus.CounterVec
	pruned     *prometheus.CounterVec
	goals      prometheus.Counter
	replans    *prometheus.CounterVec
	lastLength prometheus.Gauge
	result     prometheus.Gauge
}

// New creates a recorder with a fresh registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		// moves counts every m command sent, including unwinding moves.
		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "moves_total",
			Help:      "Moves sent to the arbiter",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "batches_total",
			Help:      "Perception batches received",
		}),
		// reports is labelled by kind (hazard, target, marker).
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "reports_total",
			Help:      "Perception reports received by kind",
		}, []string{"kind"}),
		pruned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "pruned_total",
			Help:      "Backtracking branches cut, by reason",
		}, []string{"reason"}),
		goals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "goals_total",
			Help:      "Complete paths reaching the target",
		}),
		// replans is labelled by outcome (found, none).
		replans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "replans_total",
			Help:      "A* planning rounds by outcome",
		}, []string{"outcome"}),
		lastLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "last_length",
			Help:      "Length of the most recent complete path or plan",
		}),
		result: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "result_length",
			Help:      "Length reported to the arbiter, -1 when no path exists",
		}),
	}

	r.registry.MustRegister(r.moves, r.batches, r.reports, r.pruned, r.goals, r.replans, r.lastLength, r.result)
	return r
}

// Registry returns the registry the counters live in
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// BranchPruned counts a cut branch
func (r *Recorder) BranchPruned(reason string) {
	r.pruned.WithLabelValues(reason).Inc()
}

// GoalReached counts a complete path
func (r *Recorder) GoalReached(length int) {
	r.goals.Inc()
	r.lastLength.Set(float64(length))
}

// Replanned counts a planning round
func (r *Recorder) Replanned(length int, found bool) {
	if !found {
		r.replans.WithLabelValues("none").Inc()
		return
	}
	r.replans.WithLabelValues("found").Inc()
	r.lastLength.Set(float64(length))
}

// Batch counts a received batch and its reports
func (r *Recorder) Batch(batch perception.Batch) {
	r.batches.Inc()
	for _, rep := range batch {
		r.reports.WithLabelValues(rep.Kind.String()).Inc()
	}
}

// Result stores the reported length
func (r *Recorder) Result(length int) {
	r.result.Set(float64(length))
}

// WriteFile writes the registry to path in the text exposition format
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// Wrap returns a channel that counts traffic on ch before passing it through
func (r *Recorder) Wrap(ch perception.Channel) perception.Channel {
	return &countingChannel{ch: ch, rec: r}
}

type countingChannel struct {
	ch  perception.Channel
	rec *Recorder
}

func (c *countingChannel) Exchange(ctx context.Context, move world.Cell) (perception.Batch, error) {
	c.rec.moves.Inc()
	batch, err := c.ch.Exchange(ctx, move)
	if err != nil {
		return nil, err
	}
	c.rec.Batch(batch)
	return batch, nil
}

func (c *countingChannel) Report(ctx context.Context, length int) error {
	if err := c.ch.Report(ctx, length); err != nil {
		return err
	}
	c.rec.Result(length)
	return nil
}
