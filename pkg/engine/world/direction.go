package world

// Direction is one of the four orthogonal steps a mover can take
type Direction int

// Directions in neighbour enumeration order (up, right, down, left). Each is
// two steps away from its opposite.
const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{"North", "East", "South", "West"}

// North increases y, East increases x
var directionDeltas = [...][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// AllDirections returns every direction in enumeration order
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

func (d Direction) String() string {
	if d < North || d > West {
		return "Unknown"
	}
	return directionNames[d]
}

// Opposite returns the direction that undoes d
func (d Direction) Opposite() Direction {
	if d < North || d > West {
		return d
	}
	return (d + 2) % 4
}

// Delta returns the x and y offsets of one step in d, or zero for an
// unknown direction.
func (d Direction) Delta() (dx, dy int) {
	if d < North || d > West {
		return 0, 0
	}
	return directionDeltas[d][0], directionDeltas[d][1]
}
