package world

import (
	"github.com/zyedidia/generic/mapset"
)

// CellSet is a set of cells
type CellSet = mapset.Set[Cell]

// Grid is the mover's knowledge of the board: which cells are known to be
// hazardous, where the target is believed to be, and where the marker was seen.
// Mutations outside the board are ignored.
type Grid struct {
	hazards CellSet

	target    Cell
	marker    Cell
	hasMarker bool
}

// NewGrid creates an empty grid with the given target
func NewGrid(target Cell) *Grid {
	return &Grid{
		hazards: mapset.New[Cell](),
		target:  target,
	}
}

// Size returns the side length of the grid
func (g *Grid) Size() int {
	return Size
}

// IsHazard returns true if the cell is known to be hazardous
func (g *Grid) IsHazard(c Cell) bool {
	return g.hazards.Has(c)
}

// IsTraversable returns true if the cell is on the grid and not a known hazard
func (g *Grid) IsTraversable(c Cell) bool {
	return c.InBounds() && !g.hazards.Has(c)
}

// MarkHazard records a hazard. Returns false if the cell is out of bounds.
func (g *Grid) MarkHazard(c Cell) bool {
	if !c.InBounds() {
		return false
	}
	g.hazards.Put(c)
	return true
}

// ClearHazard drops the hazard flag on a cell. Returns false if out of bounds.
func (g *Grid) ClearHazard(c Cell) bool {
	if !c.InBounds() {
		return false
	}
	g.hazards.Remove(c)
	return true
}

// ClearAround drops the hazard flag on the eight cells surrounding center.
// The center keeps its own flag.
func (g *Grid) ClearAround(center Cell) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			g.ClearHazard(Cell{X: center.X + dx, Y: center.Y + dy})
		}
	}
}

// HazardCount returns the number of known hazards
func (g *Grid) HazardCount() int {
	return g.hazards.Size()
}

// Target returns the current target cell
func (g *Grid) Target() Cell {
	return g.target
}

// SetTarget moves the target. Returns false if the cell is out of bounds.
func (g *Grid) SetTarget(c Cell) bool {
	if !c.InBounds() {
		return false
	}
	g.target = c
	return true
}

// Marker returns the recorded marker cell and whether one has been seen
func (g *Grid) Marker() (Cell, bool) {
	return g.marker, g.hasMarker
}

// RecordMarker records the marker position. Returns false if out of bounds.
func (g *Grid) RecordMarker(c Cell) bool {
	if !c.InBounds() {
		return false
	}
	g.marker = c
	g.hasMarker = true
	return true
}

// ForEachCell iterates over all cells in the grid, x outer and y inner
func (g *Grid) ForEachCell(fn func(c Cell)) {
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			fn(Cell{X: x, Y: y})
		}
	}
}
