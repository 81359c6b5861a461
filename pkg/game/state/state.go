// Package state holds everything one run knows: the grid model, the mover's
// position, and a short log of notable events. A Session lives for exactly
// one run and is owned by a single search.
package state

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/perception"
)

// Mode decides how a batch is folded into the grid
type Mode int

// Modes
const (
	// Accumulate only ever adds hazards. Target and marker reports leave a
	// cell's hazard flag alone.
	Accumulate Mode = iota
	// Overwrite makes every reported cell's hazard flag match its latest
	// report, so a target or marker report clears a previous hazard.
	Overwrite
)

// Session is the per-run search context
type Session struct {
	Grid  *world.Grid
	Mover world.Cell
	Mode  Mode

	// DissipateNearAgents clears the 3x3 block around every reported agent
	// after a batch is applied. Only honoured in Overwrite mode.
	DissipateNearAgents bool

	Messages []string

	// Visited holds every cell the mover has stood on
	Visited world.CellSet
	Moves   int
}

// Change summarises what a batch did to the session
type Change struct {
	Applied       int
	Ignored       int
	NewHazards    int
	Cleared       int
	TargetMoved   bool
	MarkerSeen    bool
	PrevTarget    world.Cell
	CurrentTarget world.Cell
}

// NewSession creates a session with the mover on the start cell
func NewSession(target world.Cell, mode Mode) *Session {
	return &Session{
		Grid:     world.NewGrid(target),
		Mover:    world.Start,
		Mode:     mode,
		Messages: make([]string, 0),
		Visited:  mapset.New[world.Cell](),
	}
}

// Apply folds a batch into the grid. Reports for cells off the grid are
// skipped. The order of reports within a batch does not matter.
func (s *Session) Apply(batch perception.Batch) Change {
	change := Change{PrevTarget: s.Grid.Target()}
	var agents []world.Cell

	for _, r := range batch {
		if !r.Cell.InBounds() {
			change.Ignored++
			continue
		}
		change.Applied++

		switch r.Kind {
		case perception.Hazard:
			if !s.Grid.IsHazard(r.Cell) {
				change.NewHazards++
			}
			s.Grid.MarkHazard(r.Cell)
			if r.Tag == perception.TagAgent {
				agents = append(agents, r.Cell)
			}
		case perception.Target:
			s.Grid.SetTarget(r.Cell)
			if s.Mode == Overwrite && s.Grid.IsHazard(r.Cell) {
				s.Grid.ClearHazard(r.Cell)
				change.Cleared++
			}
		case perception.Marker:
			s.Grid.RecordMarker(r.Cell)
			change.MarkerSeen = true
			if s.Mode == Overwrite && s.Grid.IsHazard(r.Cell) {
				s.Grid.ClearHazard(r.Cell)
				change.Cleared++
			}
		}
	}

	if s.Mode == Overwrite && s.DissipateNearAgents {
		for _, a := range agents {
			before := s.Grid.HazardCount()
			s.Grid.ClearAround(a)
			change.Cleared += before - s.Grid.HazardCount()
		}
	}

	change.CurrentTarget = s.Grid.Target()
	change.TargetMoved = change.CurrentTarget != change.PrevTarget
	if change.TargetMoved {
		s.AddMessage(fmt.Sprintf("target moved %v -> %v", change.PrevTarget, change.CurrentTarget))
	}
	return change
}

// MoveTo records that the mover now stands on c
func (s *Session) MoveTo(c world.Cell) {
	s.Mover = c
	s.Visited.Put(c)
	s.Moves++
}

// AtTarget returns true if the mover stands on the current target
func (s *Session) AtTarget() bool {
	return s.Mover == s.Grid.Target()
}

// AddMessage adds a message to the session's event log
func (s *Session) AddMessage(msg string) {
	const maxMessages = 5
	s.Messages = append(s.Messages, msg)

	// Keep only the last maxMessages
	if len(s.Messages) > maxMessages {
		s.Messages = s.Messages[len(s.Messages)-maxMessages:]
	}
}
