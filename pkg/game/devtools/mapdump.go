// Package devtools provides developer tools for testing and debugging.
package devtools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/arbiter"
	"keymaker/pkg/game/state"
)

// cellSymbol returns the single-character symbol for a cell on g (no mover overlay)
func cellSymbol(g *world.Grid, c world.Cell) rune {
	marker, hasMarker := g.Marker()
	switch {
	case c == g.Target():
		return 'K'
	case g.IsHazard(c):
		return '!'
	case hasMarker && c == marker:
		return 'B'
	default:
		return '.'
	}
}

// writeMapGrid writes g row by row (x down, y across) with an optional mover overlay
func writeMapGrid(w io.Writer, g *world.Grid, mover *world.Cell) {
	for x := 0; x < world.Size; x++ {
		for y := 0; y < world.Size; y++ {
			c := world.At(x, y)
			if mover != nil && c == *mover {
				fmt.Fprint(w, "@")
				continue
			}
			fmt.Fprintf(w, "%c", cellSymbol(g, c))
		}
		fmt.Fprintln(w)
	}
}

// DumpRun writes a full debug dump of a simulated run: metadata, legend, the
// mover's map, the ground truth map, entity lists and the move transcript.
// session may be nil if the run never started.
func DumpRun(w io.Writer, a *arbiter.Arbiter, session *state.Session) {
	sc := a.Scenario()
	result, reported := a.Result()

	// --- Metadata ---
	fmt.Fprintln(w, "=== RUN DUMP ===")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "--- Metadata ---")
	fmt.Fprintf(w, "scenario: %q\n", sc.Name)
	fmt.Fprintf(w, "variant: %d\n", sc.Variant)
	fmt.Fprintf(w, "perception_radius: %d\n", sc.Radius())
	fmt.Fprintf(w, "strict: %v\n", sc.Strict)
	fmt.Fprintf(w, "grid_size: %d\n", world.Size)
	fmt.Fprintf(w, "coordinate_system: x,y (0-based, x=row, y=column)\n")
	fmt.Fprintf(w, "initial_target: %v\n", sc.Target)
	fmt.Fprintf(w, "final_target: %v\n", a.Target())
	fmt.Fprintf(w, "optimal_length: %d\n", sc.Optimal())
	if reported {
		fmt.Fprintf(w, "reported_length: %d\n", result)
	} else {
		fmt.Fprintln(w, "reported_length: (none)")
	}
	fmt.Fprintf(w, "moves: %d\n", len(a.Moves()))
	fmt.Fprintln(w, "")

	// --- Legend ---
	fmt.Fprintln(w, "--- Legend (cell symbols) ---")
	fmt.Fprintln(w, ". = free or unknown  ! = hazard  K = keymaker  B = key  @ = mover")
	fmt.Fprintln(w, "")

	// --- Map: what the mover knew ---
	if session != nil {
		fmt.Fprintln(w, "--- Map (mover's knowledge at the end of the run) ---")
		mover := session.Mover
		writeMapGrid(w, session.Grid, &mover)
		fmt.Fprintln(w, "")
	}

	// --- Map: ground truth ---
	fmt.Fprintln(w, "--- Map (ground truth, initial target) ---")
	writeMapGrid(w, sc.Grid(), nil)
	fmt.Fprintln(w, "")

	// --- Entities ---
	fmt.Fprintln(w, "Hazards:")
	if len(sc.Hazards) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, h := range sc.Hazards {
		fmt.Fprintf(w, "  x: %d y: %d tag: %s\n", h.X, h.Y, h.Tag)
	}
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "Relocations:")
	if len(sc.Relocations) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, r := range sc.Relocations {
		fmt.Fprintf(w, "  after_moves: %d to: %v\n", r.AfterMoves, r.To)
	}
	fmt.Fprintln(w, "")

	// --- Transcript ---
	fmt.Fprintln(w, "Transcript:")
	for i, m := range a.Moves() {
		fmt.Fprintf(w, "  %d: m %d %d\n", i+1, m.X, m.Y)
	}
	if reported {
		fmt.Fprintf(w, "  e %d\n", result)
	}
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "=== END RUN DUMP ===")
}

// DumpRunToFile writes DumpRun to path and returns its absolute form
func DumpRunToFile(path string, a *arbiter.Arbiter, session *state.Session) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	DumpRun(f, a, session)

	if err := f.Sync(); err != nil {
		return absPath, err
	}
	return absPath, nil
}
