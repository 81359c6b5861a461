package search

import (
	"github.com/zyedidia/generic/heap"

	"keymaker/pkg/engine/world"
)

// Plan is the outcome of a single A* search
type Plan struct {
	Path     []world.Cell
	Length   int
	Found    bool
	Expanded []world.Cell
}

// Heuristic estimates the remaining cost from a cell to the goal
type Heuristic func(from, to world.Cell) int

// openItem is a frontier entry. Stale entries are skipped when popped.
type openItem struct {
	cell world.Cell
	g    int
	f    int
}

// less orders the frontier by f, preferring deeper entries on ties
func less(a, b openItem) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.g > b.g
}

// AStar finds a shortest path from start to goal over the cells the grid
// considers traversable, using the Manhattan distance as heuristic. Moves are
// orthogonal with unit cost, so the heuristic never overestimates and the
// first time the goal is popped its cost is optimal. The start cell itself is
// never treated as blocked.
func AStar(g *world.Grid, start, goal world.Cell) Plan {
	return search(g, start, goal, world.Manhattan)
}

func search(g *world.Grid, start, goal world.Cell, h Heuristic) Plan {
	if !start.InBounds() || !goal.InBounds() {
		return Plan{Length: NoPath}
	}

	openSet := heap.New[openItem](less)
	openSet.Push(openItem{cell: start, g: 0, f: h(start, goal)})

	cameFrom := make(map[world.Cell]world.Cell)
	pathCostFromStart := map[world.Cell]int{start: 0}
	closedSet := make(map[world.Cell]bool)
	var expanded []world.Cell

	for openSet.Size() > 0 {
		current, _ := openSet.Pop()

		// Skip if already closed
		if closedSet[current.cell] {
			continue
		}
		closedSet[current.cell] = true
		expanded = append(expanded, current.cell)

		if current.cell == goal {
			return Plan{
				Path:     reconstructPath(cameFrom, goal, start),
				Length:   current.g,
				Found:    true,
				Expanded: expanded,
			}
		}

		for _, next := range current.cell.Neighbors() {
			if closedSet[next] || !g.IsTraversable(next) {
				continue
			}
			tentativeG := current.g + 1
			if known, ok := pathCostFromStart[next]; ok && known <= tentativeG {
				continue
			}
			pathCostFromStart[next] = tentativeG
			cameFrom[next] = current.cell
			openSet.Push(openItem{cell: next, g: tentativeG, f: tentativeG + h(next, goal)})
		}
	}

	return Plan{Length: NoPath, Expanded: expanded}
}

func reconstructPath(cameFrom map[world.Cell]world.Cell, current, start world.Cell) []world.Cell {
	path := []world.Cell{current}
	for current != start {
		previous, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, previous)
		current = previous
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
