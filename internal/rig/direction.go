package rig

import "fmt"

// Direction is a compass or diagonal viewing direction.
type Direction int

const (
	North Direction = iota
	East
	South
	West
	NorthEast
	SouthEast
	SouthWest
	NorthWest
)

var directionTokens = [...]string{
	North:     "north",
	East:      "east",
	South:     "south",
	West:      "west",
	NorthEast: "ne",
	SouthEast: "se",
	SouthWest: "sw",
	NorthWest: "nw",
}

// String returns the lowercase token used in output file names.
func (d Direction) String() string {
	if d < North || d > NorthWest {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionTokens[d]
}

// MarshalText encodes the direction as its token.
func (d Direction) MarshalText() ([]byte, error) {
	if d < North || d > NorthWest {
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction token.
func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection returns the direction for a token such as "north" or "ne".
func ParseDirection(s string) (Direction, error) {
	for i, tok := range directionTokens {
		if tok == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Bearing is the clockwise angle from north, degrees.
func (d Direction) Bearing() float64 {
	switch d {
	case North:
		return 0
	case NorthEast:
		return 45
	case East:
		return 90
	case SouthEast:
		return 135
	case South:
		return 180
	case SouthWest:
		return 225
	case West:
		return 270
	case NorthWest:
		return 315
	default:
		return 0
	}
}

// CellKind classifies a grid cell for direction selection.
type CellKind int

const (
	Interior CellKind = iota
	Corner
)

func (k CellKind) String() string {
	if k == Corner {
		return "corner"
	}
	return "interior"
}

var (
	cardinalDirections = []Direction{North, East, South, West}
	diagonalDirections = []Direction{NorthEast, SouthEast, SouthWest, NorthWest}
)

// Classify reports whether cell is one of the configured corners.
func Classify(cell GridPosition, corners []GridPosition) CellKind {
	for _, c := range corners {
		if c == cell {
			return Corner
		}
	}
	return Interior
}

// DirectionsFor returns the viewing directions for a cell kind in canonical
// order. Corners look along the diagonals; every other cell looks along the
// cardinals. The returned slice is a fresh copy.
func DirectionsFor(kind CellKind) []Direction {
	src := cardinalDirections
	if kind == Corner {
		src = diagonalDirections
	}
	out := make([]Direction, len(src))
	copy(out, src)
	return out
}
