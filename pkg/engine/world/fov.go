package world

// FieldOfView returns every in-bounds cell within the given Chebyshev radius
// of center, center included, in row-major order (x outer, y inner).
// Nothing on the grid blocks perception.
func FieldOfView(center Cell, radius int) []Cell {
	if radius < 0 {
		return nil
	}

	visible := make([]Cell, 0, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if chebyshevDist(dx, dy) > radius {
				continue
			}
			c := Cell{X: center.X + dx, Y: center.Y + dy}
			if c.InBounds() {
				visible = append(visible, c)
			}
		}
	}
	return visible
}

// InView returns true if target lies within radius of center (Chebyshev)
func InView(center, target Cell, radius int) bool {
	return chebyshevDist(target.X-center.X, target.Y-center.Y) <= radius
}

// chebyshevDist returns Chebyshev (chessboard) distance for (dx, dy).
func chebyshevDist(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
