package search

import (
	"context"
	"math"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/perception"
	"keymaker/pkg/game/state"
)

// Backtracker explores every simple path from the start cell depth-first.
// A branch is cut when it cannot beat the best complete path found so far,
// or when its cell was already reached by a strictly shorter path. Equal
// lengths are explored again since the target may have moved in between.
//
// Each call to enter emits a move, and after every child returns the current
// cell is emitted again, so the arbiter sees one move per step including the
// steps taken while unwinding.
type Backtracker struct {
	ch      perception.Channel
	session *state.Session
	opts    Options

	visited world.CellSet
	memo    map[world.Cell]int
	best    int
}

// NewBacktracker creates a backtracking search over session, talking to ch.
// The session should use state.Accumulate.
func NewBacktracker(ch perception.Channel, session *state.Session, opts ...Option) *Backtracker {
	return &Backtracker{
		ch:      ch,
		session: session,
		opts:    buildOptions(opts),
		visited: mapset.New[world.Cell](),
		memo:    make(map[world.Cell]int),
		best:    math.MaxInt,
	}
}

// Run searches from the start cell and returns the shortest length found,
// or NoPath. Errors come only from the channel.
func (b *Backtracker) Run(ctx context.Context) (int, error) {
	if err := b.enter(ctx, world.Start, 0); err != nil {
		return NoPath, err
	}
	return b.Best(), nil
}

// Best returns the best length found so far, or NoPath
func (b *Backtracker) Best() int {
	if b.best == math.MaxInt {
		return NoPath
	}
	return b.best
}

// Memo returns a copy of the distance memo
func (b *Backtracker) Memo() map[world.Cell]int {
	out := make(map[world.Cell]int, len(b.memo))
	for c, d := range b.memo {
		out[c] = d
	}
	return out
}

// exchange moves the mover onto cell and folds in the batch that comes back.
// It is used identically when descending and when unwinding.
func (b *Backtracker) exchange(ctx context.Context, cell world.Cell) error {
	batch, err := b.ch.Exchange(ctx, cell)
	if err != nil {
		return err
	}
	b.session.MoveTo(cell)
	change := b.session.Apply(batch)
	if change.TargetMoved {
		b.opts.Logger.Debug("target relocated", "from", change.PrevTarget, "to", change.CurrentTarget)
	}
	if b.opts.Observer != nil {
		b.opts.Observer(b.session)
	}
	return nil
}

func (b *Backtracker) enter(ctx context.Context, cell world.Cell, length int) error {
	if err := b.exchange(ctx, cell); err != nil {
		return err
	}

	if cell == b.session.Grid.Target() {
		if length < b.best {
			b.best = length
			b.opts.Logger.Debug("goal reached", "length", length)
		}
		b.opts.Recorder.GoalReached(length)
		return nil
	}

	if length >= b.best {
		b.opts.Recorder.BranchPruned(PruneBound)
		return nil
	}

	if known, ok := b.memo[cell]; ok && known < length {
		b.opts.Recorder.BranchPruned(PruneMemo)
		return nil
	}
	b.memo[cell] = length

	b.visited.Put(cell)
	defer b.visited.Remove(cell)

	for _, next := range b.expand(cell) {
		// The batch from the previous child may have revealed next as a hazard.
		if !b.traversable(next) {
			continue
		}
		if err := b.enter(ctx, next, length+1); err != nil {
			return err
		}
		if err := b.exchange(ctx, cell); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backtracker) traversable(c world.Cell) bool {
	return b.session.Grid.IsTraversable(c) && !b.visited.Has(c)
}

// expand lists the traversable neighbours of cell, target first, otherwise
// in North, East, South, West order.
func (b *Backtracker) expand(cell world.Cell) []world.Cell {
	target := b.session.Grid.Target()
	next := make([]world.Cell, 0, 4)
	for _, n := range cell.Neighbors() {
		if b.traversable(n) {
			next = append(next, n)
		}
	}
	slices.SortStableFunc(next, func(a, c world.Cell) int {
		switch {
		case a == target && c != target:
			return -1
		case c == target && a != target:
			return 1
		default:
			return 0
		}
	})
	return next
}
