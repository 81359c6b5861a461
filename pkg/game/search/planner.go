package search

import (
	"context"
	"errors"
	"fmt"

	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/perception"
	"keymaker/pkg/game/state"
)

// ErrRoundLimit is returned when the planner runs out of rounds before the
// mover lands on the target
var ErrRoundLimit = errors.New("planner round limit reached")

// StepPolicy decides where the mover goes after a successful round
type StepPolicy int

// Step policies
const (
	// SnapToGoal treats the first plan found as walked: the mover is placed
	// on the target and the run ends with that plan's length.
	SnapToGoal StepPolicy = iota
	// RowWrap advances the mover one row (x+1, wrapping to 0 at the edge)
	// whatever the plan's first step was.
	RowWrap
)

// String returns the config name of the policy
func (p StepPolicy) String() string {
	switch p {
	case SnapToGoal:
		return "snap"
	case RowWrap:
		return "row-wrap"
	default:
		return "unknown"
	}
}

// ParseStepPolicy parses a policy name
func ParseStepPolicy(s string) (StepPolicy, error) {
	switch s {
	case "", "snap":
		return SnapToGoal, nil
	case "row-wrap":
		return RowWrap, nil
	default:
		return 0, fmt.Errorf("unknown step policy %q", s)
	}
}

// nextRow is the RowWrap step. It is deliberately independent of the plan.
func nextRow(c world.Cell) world.Cell {
	if c.X < world.Size-1 {
		return world.At(c.X+1, c.Y)
	}
	return world.At(0, c.Y)
}

// Round records one planning round
type Round struct {
	Mover  world.Cell
	Target world.Cell
	Plan   Plan
}

// Planner replans from scratch with A* after every perception batch
type Planner struct {
	ch      perception.Channel
	session *state.Session
	opts    Options

	rounds []Round
}

// NewPlanner creates an incremental planner over session, talking to ch.
// The session should use state.Overwrite.
func NewPlanner(ch perception.Channel, session *state.Session, opts ...Option) *Planner {
	return &Planner{
		ch:      ch,
		session: session,
		opts:    buildOptions(opts),
	}
}

// Rounds returns the rounds played so far
func (p *Planner) Rounds() []Round {
	return p.rounds
}

// Run plays rounds until the mover reaches the target, a round finds no
// path, or the round budget runs out. It returns the length of the last
// successful plan, or NoPath if the last round failed. On ErrRoundLimit the
// last successful length is returned alongside the error.
//
// Per-round lengths are logged and recorded but never reported. Under
// row-wrap the arbiter still gets one result per run, not one per successful
// round.
func (p *Planner) Run(ctx context.Context) (int, error) {
	last := NoPath
	for round := 1; ; round++ {
		if p.opts.MaxRounds > 0 && round > p.opts.MaxRounds {
			return last, fmt.Errorf("%w after %d rounds", ErrRoundLimit, p.opts.MaxRounds)
		}

		plan, err := p.replan(ctx)
		if err != nil {
			return NoPath, err
		}
		if !plan.Found {
			p.opts.Logger.Debug("no path", "round", round, "mover", p.session.Mover, "target", p.session.Grid.Target())
			return NoPath, nil
		}
		last = plan.Length
		p.opts.Logger.Debug("planned", "round", round, "mover", p.session.Mover, "length", plan.Length)

		if p.session.AtTarget() {
			return last, nil
		}

		switch p.opts.StepPolicy {
		case RowWrap:
			p.session.Mover = nextRow(p.session.Mover)
		default:
			p.session.Mover = p.session.Grid.Target()
			return last, nil
		}
	}
}

// replan runs one round: exchange at the mover's cell, fold in the batch,
// then search again from nothing.
func (p *Planner) replan(ctx context.Context) (Plan, error) {
	mover := p.session.Mover
	batch, err := p.ch.Exchange(ctx, mover)
	if err != nil {
		return Plan{}, err
	}
	p.session.MoveTo(mover)
	change := p.session.Apply(batch)
	if change.TargetMoved {
		p.opts.Logger.Debug("target relocated", "from", change.PrevTarget, "to", change.CurrentTarget)
	}
	if p.opts.Observer != nil {
		p.opts.Observer(p.session)
	}

	plan := AStar(p.session.Grid, mover, p.session.Grid.Target())
	p.opts.Recorder.Replanned(plan.Length, plan.Found)
	p.rounds = append(p.rounds, Round{Mover: mover, Target: p.session.Grid.Target(), Plan: plan})
	return plan, nil
}
