package world

import (
	"github.com/zyedidia/generic/mapset"
)

// Distance returns the length of the shortest hazard-free path from start to
// goal by BFS over the known grid, and false if the goal cannot be reached.
// The start cell itself is never treated as blocked.
func Distance(g *Grid, start, goal Cell) (int, bool) {
	if !start.InBounds() || !goal.InBounds() {
		return 0, false
	}

	type step struct {
		cell Cell
		dist int
	}

	visited := mapset.New[Cell]()
	visited.Put(start)
	queue := []step{{cell: start}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.cell == goal {
			return current.dist, true
		}

		for _, n := range current.cell.Neighbors() {
			if visited.Has(n) || !g.IsTraversable(n) {
				continue
			}
			visited.Put(n)
			queue = append(queue, step{cell: n, dist: current.dist + 1})
		}
	}

	return 0, false
}

// Reachable returns true if goal can be reached from start over known-safe cells
func Reachable(g *Grid, start, goal Cell) bool {
	_, ok := Distance(g, start, goal)
	return ok
}
