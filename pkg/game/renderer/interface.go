package renderer

import (
	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/state"
)

// TextStyle represents different text styling options
type TextStyle int

const (
	StyleNormal TextStyle = iota
	StyleMover
	StyleTarget
	StyleMarker
	StyleHazard
	StyleVisited
	StyleSubtle
	StyleAction
)

// Summary describes a finished run
type Summary struct {
	Strategy string
	Variant  int
	Target   world.Cell
	Length   int
	Moves    int
	Hazards  int
	Rounds   int
}

// Renderer defines the interface for trace output backends
type Renderer interface {
	// RenderFrame renders the mover's current knowledge of the grid,
	// the status line and the message pane
	RenderFrame(s *state.Session)

	// RenderSummary renders the outcome of a run
	RenderSummary(sum Summary)

	// StyleText applies a style to text and returns the styled string
	StyleText(text string, style TextStyle) string

	// FormatText formats a message with the renderer's markup system
	FormatText(msg string, args ...any) string
}
