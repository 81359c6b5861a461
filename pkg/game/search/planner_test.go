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

func newPlanner(sc arbiter.Scenario, opts ...Option) (*Planner, *arbiter.Arbiter, *state.Session) {
	a := arbiter.New(sc)
	session := state.NewSession(sc.Target, state.Overwrite)
	return NewPlanner(a, session, opts...), a, session
}

func roundLengths(p *Planner) []int {
	out := make([]int, 0, len(p.Rounds()))
	for _, r := range p.Rounds() {
		out = append(out, r.Plan.Length)
	}
	return out
}

func TestPlanner_Snap(t *testing.T) {
	tests := []struct {
		name string
		sc   arbiter.Scenario
		want int
	}{
		{"empty grid", arbiter.Scenario{Variant: 2, Target: world.At(8, 8)}, 16},
		{"target on start", arbiter.Scenario{Variant: 2, Target: world.Start}, 0},
		{
			name: "enclosed target",
			sc: arbiter.Scenario{
				Variant: 2,
				Target:  world.At(1, 1),
				Hazards: hazards("A", world.At(1, 0), world.At(0, 1), world.At(2, 1), world.At(1, 2)),
			},
			want: NoPath,
		},
		{
			name: "target relocates",
			sc: arbiter.Scenario{
				Variant:     2,
				Target:      world.At(8, 8),
				Relocations: []arbiter.Relocation{{AfterMoves: 0, To: world.At(1, 1)}},
			},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, a, session := newPlanner(tt.sc)
			n, err := p.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			assert.Len(t, p.Rounds(), 1)
			assert.Len(t, a.Moves(), 1)
			if n != NoPath {
				assert.True(t, session.AtTarget())
			}
		})
	}
}

func TestPlanner_RowWrap(t *testing.T) {
	sc := arbiter.Scenario{
		Variant: 1,
		Target:  world.At(3, 0),
		Hazards: hazards("P", world.At(2, 0)),
	}
	rec := newRecorder()
	p, a, _ := newPlanner(sc, WithStepPolicy(RowWrap), WithRecorder(rec))

	n, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, []int{3, 4, 1, 0}, roundLengths(p))
	assert.Equal(t, []int{3, 4, 1, 0}, rec.replans)
	assert.Equal(t, []world.Cell{world.At(0, 0), world.At(1, 0), world.At(2, 0), world.At(3, 0)}, a.Moves())
}

func TestPlanner_ReplansFromScratch(t *testing.T) {
	sc := arbiter.Scenario{
		Variant: 1,
		Target:  world.At(3, 0),
		Hazards: hazards("P", world.At(2, 0)),
	}
	p, _, _ := newPlanner(sc, WithStepPolicy(RowWrap))
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	rounds := p.Rounds()
	require.Len(t, rounds, 4)
	for _, r := range rounds {
		require.True(t, r.Plan.Found)
		assert.Equal(t, r.Mover, r.Plan.Path[0], "each plan starts at the mover")
		assert.Equal(t, r.Target, r.Plan.Path[len(r.Plan.Path)-1])
	}
}

func TestPlanner_RoundLimit(t *testing.T) {
	p, _, _ := newPlanner(
		arbiter.Scenario{Variant: 1, Target: world.At(0, 5)},
		WithStepPolicy(RowWrap),
		WithMaxRounds(3),
	)

	n, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrRoundLimit)
	assert.Equal(t, 7, n)
	assert.Equal(t, []int{5, 6, 7}, roundLengths(p))
}

func TestPlanner_Unreachable(t *testing.T) {
	rec := newRecorder()
	p, _, _ := newPlanner(arbiter.Scenario{
		Variant: 2,
		Target:  world.At(1, 1),
		Hazards: hazards("S", world.At(1, 0), world.At(0, 1), world.At(2, 1), world.At(1, 2)),
	}, WithStepPolicy(RowWrap), WithRecorder(rec))

	n, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoPath, n)
	assert.Equal(t, 1, rec.failures)
}

func TestParseStepPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    StepPolicy
		wantErr bool
	}{
		{"", SnapToGoal, false},
		{"snap", SnapToGoal, false},
		{"row-wrap", RowWrap, false},
		{"diagonal", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStepPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				assert.Equal(t, tt.in, got.String())
			}
		})
	}
}

func TestNextRow(t *testing.T) {
	assert.Equal(t, world.At(1, 4), nextRow(world.At(0, 4)))
	assert.Equal(t, world.At(0, 4), nextRow(world.At(8, 4)))
}
