// Package arbiter is a local stand-in for the external arbiter. It knows the
// whole board, answers each move with what the mover can see from there, and
// keeps a transcript so runs can be checked offline.
package arbiter

import (
	"context"
	"errors"
	"fmt"

	"keymaker/pkg/engine/protocol"
	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/perception"
)

// ErrIllegalMove is returned by a strict arbiter when the mover jumps more
// than one step or steps onto a hazard
var ErrIllegalMove = errors.New("illegal move")

// ErrFinished is returned for any exchange after the result was reported
var ErrFinished = errors.New("run already finished")

// Arbiter answers exchanges from a fully known scenario
type Arbiter struct {
	sc     Scenario
	radius int
	truth  *world.Grid
	tags   map[world.Cell]byte

	moves    []world.Cell
	applied  int
	result   int
	reported bool
}

// New creates an arbiter for the scenario. The scenario is assumed valid.
func New(sc Scenario) *Arbiter {
	a := &Arbiter{
		sc:     sc,
		radius: sc.Radius(),
		truth:  sc.Grid(),
		tags:   make(map[world.Cell]byte, len(sc.Hazards)),
	}
	for _, h := range sc.Hazards {
		a.tags[world.At(h.X, h.Y)] = h.Tag[0]
	}
	return a
}

// Startup returns what the arbiter announces before the first move
func (a *Arbiter) Startup() protocol.Startup {
	return protocol.Startup{Variant: a.sc.Variant, Target: a.sc.Target}
}

// Exchange implements perception.Channel
func (a *Arbiter) Exchange(ctx context.Context, move world.Cell) (perception.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.reported {
		return nil, ErrFinished
	}
	if err := a.check(move); err != nil {
		return nil, err
	}
	a.moves = append(a.moves, move)
	a.relocate()
	return a.Perceive(move), nil
}

func (a *Arbiter) check(move world.Cell) error {
	if !move.InBounds() {
		return fmt.Errorf("%w: %v is off the grid", ErrIllegalMove, move)
	}
	if !a.sc.Strict {
		return nil
	}
	if len(a.moves) == 0 {
		if move != world.Start {
			return fmt.Errorf("%w: first move %v is not the start cell", ErrIllegalMove, move)
		}
		return nil
	}
	last := a.moves[len(a.moves)-1]
	if move != last && !move.Adjacent(last) {
		return fmt.Errorf("%w: %v -> %v is not a single step", ErrIllegalMove, last, move)
	}
	if a.truth.IsHazard(move) {
		return fmt.Errorf("%w: %v is a hazard", ErrIllegalMove, move)
	}
	return nil
}

// relocate applies every relocation that is due after the moves made so far
func (a *Arbiter) relocate() {
	for a.applied < len(a.sc.Relocations) {
		r := a.sc.Relocations[a.applied]
		if len(a.moves) <= r.AfterMoves {
			return
		}
		a.truth.SetTarget(r.To)
		a.applied++
	}
}

// Perceive lists every entity within the perception radius of at
func (a *Arbiter) Perceive(at world.Cell) perception.Batch {
	var batch perception.Batch
	marker, hasMarker := a.truth.Marker()
	for _, c := range world.FieldOfView(at, a.radius) {
		if tag, ok := a.tags[c]; ok {
			batch = append(batch, perception.Report{Cell: c, Kind: perception.Hazard, Tag: tag})
		}
		if c == a.truth.Target() {
			batch = append(batch, perception.Report{Cell: c, Kind: perception.Target, Tag: perception.TagKeymaker})
		}
		if hasMarker && c == marker {
			batch = append(batch, perception.Report{Cell: c, Kind: perception.Marker, Tag: perception.TagKey})
		}
	}
	return batch
}

// Report implements perception.Channel
func (a *Arbiter) Report(ctx context.Context, length int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.reported {
		return ErrFinished
	}
	a.result = length
	a.reported = true
	return nil
}

// Moves returns the transcript of moves received
func (a *Arbiter) Moves() []world.Cell {
	return a.moves
}

// Result returns the reported result and whether one was reported
func (a *Arbiter) Result() (int, bool) {
	return a.result, a.reported
}

// Target returns where the target currently is
func (a *Arbiter) Target() world.Cell {
	return a.truth.Target()
}

// Scenario returns the scenario being played
func (a *Arbiter) Scenario() Scenario {
	return a.sc
}
