package arbiter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keymaker/pkg/engine/protocol"
	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/perception"
)

const enclosedYAML = `
name: enclosed
variant: 2
target: {x: 4, y: 4}
marker: {x: 2, y: 0}
strict: true
hazards:
  - {x: 3, y: 4, tag: P}
  - {x: 5, y: 4, tag: A}
  - {x: 4, y: 3, tag: S}
  - {x: 4, y: 5, tag: P}
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(enclosedYAML))
	require.NoError(t, err)

	assert.Equal(t, "enclosed", sc.Name)
	assert.Equal(t, 2, sc.Radius())
	assert.Equal(t, world.At(4, 4), sc.Target)
	require.NotNil(t, sc.Marker)
	assert.Equal(t, world.At(2, 0), *sc.Marker)
	assert.Len(t, sc.Hazards, 4)
	assert.True(t, sc.Strict)
	assert.Equal(t, -1, sc.Optimal())
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variant: 1\ntarget: {x: 8, y: 8}\n"), 0o600))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, 16, sc.Optimal())

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad variant", "variant: 3\ntarget: {x: 1, y: 1}\n"},
		{"target off grid", "variant: 1\ntarget: {x: 9, y: 1}\n"},
		{"marker off grid", "variant: 1\ntarget: {x: 1, y: 1}\nmarker: {x: -1, y: 0}\n"},
		{"hazard off grid", "variant: 1\ntarget: {x: 1, y: 1}\nhazards: [{x: 10, y: 0, tag: P}]\n"},
		{"target tag as hazard", "variant: 1\ntarget: {x: 1, y: 1}\nhazards: [{x: 2, y: 0, tag: K}]\n"},
		{"unknown tag", "variant: 1\ntarget: {x: 1, y: 1}\nhazards: [{x: 2, y: 0, tag: Q}]\n"},
		{"relocation off grid", "variant: 1\ntarget: {x: 1, y: 1}\nrelocations: [{after_moves: 1, to: {x: 0, y: 9}}]\n"},
		{"not yaml", "variant: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestPerceive_Radius(t *testing.T) {
	sc := Scenario{
		Variant: 1,
		Target:  world.At(8, 8),
		Hazards: []Entity{{X: 1, Y: 1, Tag: "P"}, {X: 2, Y: 0, Tag: "S"}},
	}
	a := New(sc)
	batch := a.Perceive(world.Start)
	assert.Equal(t, perception.Batch{{Cell: world.At(1, 1), Kind: perception.Hazard, Tag: 'P'}}, batch)

	sc.Variant = 2
	a = New(sc)
	assert.Len(t, a.Perceive(world.Start), 2)
}

func TestPerceive_TargetAndMarker(t *testing.T) {
	marker := world.At(0, 1)
	a := New(Scenario{Variant: 1, Target: world.Start, Marker: &marker})
	batch := a.Perceive(world.Start)
	assert.ElementsMatch(t, perception.Batch{
		{Cell: world.Start, Kind: perception.Target, Tag: 'K'},
		{Cell: marker, Kind: perception.Marker, Tag: 'B'},
	}, batch)
}

func TestExchange_Strict(t *testing.T) {
	ctx := context.Background()
	sc := Scenario{Variant: 1, Target: world.At(8, 8), Strict: true, Hazards: []Entity{{X: 1, Y: 0, Tag: "P"}}}

	a := New(sc)
	_, err := a.Exchange(ctx, world.At(0, 1))
	assert.ErrorIs(t, err, ErrIllegalMove, "first move must be the start cell")

	a = New(sc)
	_, err = a.Exchange(ctx, world.Start)
	require.NoError(t, err)
	_, err = a.Exchange(ctx, world.Start)
	require.NoError(t, err, "repeating the current cell is allowed")
	_, err = a.Exchange(ctx, world.At(1, 1))
	assert.ErrorIs(t, err, ErrIllegalMove, "diagonal jump")
	_, err = a.Exchange(ctx, world.At(1, 0))
	assert.ErrorIs(t, err, ErrIllegalMove, "onto a hazard")
	_, err = a.Exchange(ctx, world.At(0, 1))
	require.NoError(t, err)
	assert.Equal(t, []world.Cell{world.Start, world.Start, world.At(0, 1)}, a.Moves())
}

func TestExchange_LenientAllowsJumps(t *testing.T) {
	a := New(Scenario{Variant: 1, Target: world.At(8, 8)})
	ctx := context.Background()
	_, err := a.Exchange(ctx, world.At(8, 0))
	require.NoError(t, err)
	_, err = a.Exchange(ctx, world.At(0, 0))
	require.NoError(t, err)
	_, err = a.Exchange(ctx, world.At(0, 9))
	assert.ErrorIs(t, err, ErrIllegalMove, "off the grid is always illegal")
}

func TestExchange_Relocation(t *testing.T) {
	a := New(Scenario{
		Variant:     1,
		Target:      world.At(8, 8),
		Relocations: []Relocation{{AfterMoves: 1, To: world.At(1, 1)}},
	})
	ctx := context.Background()

	batch, err := a.Exchange(ctx, world.Start)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.Equal(t, world.At(8, 8), a.Target())

	batch, err = a.Exchange(ctx, world.At(0, 1))
	require.NoError(t, err)
	assert.Equal(t, world.At(1, 1), a.Target())
	assert.Contains(t, batch, perception.Report{Cell: world.At(1, 1), Kind: perception.Target, Tag: 'K'})
}

func TestReport_Once(t *testing.T) {
	a := New(Scenario{Variant: 1, Target: world.At(8, 8)})
	ctx := context.Background()
	require.NoError(t, a.Report(ctx, 16))
	n, ok := a.Result()
	assert.True(t, ok)
	assert.Equal(t, 16, n)

	assert.ErrorIs(t, a.Report(ctx, 3), ErrFinished)
	_, err := a.Exchange(ctx, world.Start)
	assert.ErrorIs(t, err, ErrFinished)
}

func TestServe(t *testing.T) {
	a := New(Scenario{Variant: 1, Target: world.At(0, 1), Hazards: []Entity{{X: 1, Y: 0, Tag: "A"}}})

	toArbiterR, toArbiterW := io.Pipe()
	fromArbiterR, fromArbiterW := io.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- a.Serve(context.Background(), toArbiterR, fromArbiterW)
		fromArbiterW.Close()
	}()

	reader := protocol.NewReader(fromArbiterR)
	writer := protocol.NewWriter(toArbiterW)

	startup, err := reader.ReadStartup()
	require.NoError(t, err)
	assert.Equal(t, protocol.Startup{Variant: 1, Target: world.At(0, 1)}, startup)

	require.NoError(t, writer.WriteMove(world.Start))
	records, err := reader.ReadBatch()
	require.NoError(t, err)
	assert.ElementsMatch(t, []protocol.Record{
		{Cell: world.At(1, 0), Tag: 'A'},
		{Cell: world.At(0, 1), Tag: 'K'},
	}, records)

	require.NoError(t, writer.WriteResult(1))
	require.NoError(t, <-done)

	n, ok := a.Result()
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}
