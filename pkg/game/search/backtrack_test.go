package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/arbiter"
	"keymaker/pkg/game/state"
)

// recorder captures search events
type recorder struct {
	pruned   map[string]int
	goals    []int
	replans  []int
	failures int
}

func newRecorder() *recorder {
	return &recorder{pruned: make(map[string]int)}
}

func (r *recorder) BranchPruned(reason string) { r.pruned[reason]++ }
func (r *recorder) GoalReached(length int) { r.goals = append(r.goals, length) }
func (r *recorder) Replanned(length int, found bool) {
	r.replans = append(r.replans, length)
	if !found {
		r.failures++
	}
}

func hazards(tag string, cells ...world.Cell) []arbiter.Entity {
	out := make([]arbiter.Entity, 0, len(cells))
	for _, c := range cells {
		out = append(out, arbiter.Entity{X: c.X, Y: c.Y, Tag: tag})
	}
	return out
}

// wallScenario has a wall along x=4 with a single gap at the top
func wallScenario(t *testing.T) arbiter.Scenario {
	t.Helper()
	var wall []world.Cell
	for y := 0; y < world.Size-1; y++ {
		wall = append(wall, world.At(4, y))
	}
	sc := arbiter.Scenario{
		Name:    "wall",
		Variant: 1,
		Target:  world.At(8, 0),
		Hazards: hazards("P", wall...),
		Strict:  true,
	}
	require.NoError(t, sc.Validate())
	return sc
}

func runBacktrack(t *testing.T, sc arbiter.Scenario, opts ...Option) (int, *arbiter.Arbiter, *Backtracker) {
	t.Helper()
	a := arbiter.New(sc)
	session := state.NewSession(sc.Target, state.Accumulate)
	b := NewBacktracker(a, session, opts...)
	n, err := b.Run(context.Background())
	require.NoError(t, err)
	return n, a, b
}

func TestBacktrack_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		sc   arbiter.Scenario
		want int
	}{
		{
			name: "empty grid",
			sc:   arbiter.Scenario{Variant: 1, Target: world.At(8, 8), Strict: true},
			want: 16,
		},
		{
			name: "target on start",
			sc:   arbiter.Scenario{Variant: 1, Target: world.Start, Strict: true},
			want: 0,
		},
		{
			name: "enclosed target",
			sc: arbiter.Scenario{
				Variant: 1,
				Target:  world.At(4, 4),
				Hazards: hazards("S", world.At(3, 4), world.At(5, 4), world.At(4, 3), world.At(4, 5)),
				Strict:  true,
			},
			want: NoPath,
		},
		{
			name: "target relocates on first move",
			sc: arbiter.Scenario{
				Variant:     1,
				Target:      world.At(8, 8),
				Relocations: []arbiter.Relocation{{AfterMoves: 0, To: world.At(1, 1)}},
				Strict:      true,
			},
			want: 2,
		},
		{
			// the first column is memoised up to (0,4) before the target shows up at (0,3)
			name: "target relocates behind explored cells",
			sc: arbiter.Scenario{
				Variant:     1,
				Target:      world.At(8, 8),
				Relocations: []arbiter.Relocation{{AfterMoves: 4, To: world.At(0, 3)}},
				Strict:      true,
			},
			want: 5,
		},
		{
			name: "target relocates next to start",
			sc: arbiter.Scenario{
				Variant:     1,
				Target:      world.At(8, 8),
				Relocations: []arbiter.Relocation{{AfterMoves: 4, To: world.At(0, 1)}},
				Strict:      true,
			},
			want: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _, _ := runBacktrack(t, tt.sc)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestBacktrack_MatchesBFS(t *testing.T) {
	sc := wallScenario(t)
	n, a, _ := runBacktrack(t, sc)
	assert.Equal(t, sc.Optimal(), n)
	assert.Equal(t, 24, n)
	assert.Equal(t, world.Start, a.Moves()[0])
}

func TestBacktrack_EmptyGridIsManhattan(t *testing.T) {
	for _, target := range []world.Cell{world.At(0, 8), world.At(3, 5), world.At(8, 1), world.At(6, 6)} {
		t.Run(target.String(), func(t *testing.T) {
			n, _, _ := runBacktrack(t, arbiter.Scenario{Variant: 2, Target: target, Strict: true})
			assert.Equal(t, world.Manhattan(world.Start, target), n)
		})
	}
}

func TestBacktrack_StartsAndEndsOnStart(t *testing.T) {
	_, a, _ := runBacktrack(t, arbiter.Scenario{Variant: 1, Target: world.At(2, 2), Strict: true})
	moves := a.Moves()
	require.NotEmpty(t, moves)
	assert.Equal(t, world.Start, moves[0])
	assert.Equal(t, world.Start, moves[len(moves)-1], "unwinding returns to the start cell")
}

func TestBacktrack_MemoNeverIncreases(t *testing.T) {
	sc := wallScenario(t)
	a := arbiter.New(sc)
	session := state.NewSession(sc.Target, state.Accumulate)

	seen := make(map[world.Cell]int)
	var b *Backtracker
	b = NewBacktracker(a, session, WithObserver(func(*state.Session) {
		for c, d := range b.Memo() {
			if prev, ok := seen[c]; ok && d > prev {
				t.Errorf("memo for %v grew from %d to %d", c, prev, d)
			}
			seen[c] = d
		}
	}))
	_, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, seen)
}

func TestBacktrack_BestBoundsEveryGoal(t *testing.T) {
	rec := newRecorder()
	n, _, _ := runBacktrack(t, wallScenario(t), WithRecorder(rec))

	require.NotEmpty(t, rec.goals)
	for _, g := range rec.goals {
		assert.LessOrEqual(t, n, g)
	}
	assert.Positive(t, rec.pruned[PruneBound]+rec.pruned[PruneMemo])
}

func TestBacktrack_TargetFirst(t *testing.T) {
	a := arbiter.New(arbiter.Scenario{Variant: 1, Target: world.At(1, 0)})
	session := state.NewSession(world.At(1, 0), state.Accumulate)
	b := NewBacktracker(a, session)

	assert.Equal(t, []world.Cell{world.At(1, 0), world.At(0, 1)}, b.expand(world.Start))

	// Without a target among the neighbours the order is North, East, South, West
	assert.Equal(t, []world.Cell{world.At(4, 5), world.At(5, 4), world.At(4, 3), world.At(3, 4)}, b.expand(world.At(4, 4)))
}

func TestBacktrack_Cancelled(t *testing.T) {
	a := arbiter.New(arbiter.Scenario{Variant: 1, Target: world.At(8, 8)})
	b := NewBacktracker(a, state.NewSession(world.At(8, 8), state.Accumulate))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, NoPath, n)
}
