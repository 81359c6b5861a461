// Package world provides the fixed-size grid model the searches run over.
// Cells are plain coordinates; everything the mover has learned about them
// lives in a Grid.
package world

import "fmt"

// Size is the side length of the square grid.
const Size = 9

// Cell is a grid coordinate. It has no identity beyond its position.
type Cell struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Start is the cell every run begins on
var Start = Cell{X: 0, Y: 0}

// At returns the cell at (x, y)
func At(x, y int) Cell {
	return Cell{X: x, Y: y}
}

// String renders the cell as "(x,y)"
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// InBounds returns true if the cell lies on the Size x Size grid
func (c Cell) InBounds() bool {
	return c.X >= 0 && c.X < Size && c.Y >= 0 && c.Y < Size
}

// Neighbor returns the adjacent cell in the given direction.
// The result may lie outside the grid.
func (c Cell) Neighbor(dir Direction) Cell {
	dx, dy := dir.Delta()
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Neighbors returns the in-bounds orthogonal neighbours in AllDirections order
func (c Cell) Neighbors() []Cell {
	neighbors := make([]Cell, 0, 4)
	for _, dir := range AllDirections() {
		if n := c.Neighbor(dir); n.InBounds() {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// Adjacent returns true if o is exactly one orthogonal step away from c
func (c Cell) Adjacent(o Cell) bool {
	return Manhattan(c, o) == 1
}

// Manhattan returns the Manhattan distance between two cells
func Manhattan(a, b Cell) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
