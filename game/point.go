// Package game defines the shared grid primitives used by both engines.
//
// These types are UI-agnostic and deterministic. Coordinates follow the
// convention that (0,0) is bottom-left with Y increasing upward; renderers
// that draw top-to-bottom flip Y themselves.
package game

// Point is a board coordinate.
type Point struct {
	X int
	Y int
}

// Add returns p shifted by the unit vector of d.
func (p Point) Add(d Dir) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// In reports whether p lies inside a width x height grid.
func (p Point) In(width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// Dir is one of the four axis-aligned unit headings.
type Dir uint8

const (
	DirUp Dir = iota
	DirDown
	DirLeft
	DirRight
)

// Delta returns the (dx, dy) offset for one step in this direction.
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, 1
	case DirDown:
		return 0, -1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the reverse heading on the same axis.
func (d Dir) Opposite() Dir {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return d
	}
}

func (d Dir) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDir maps the wire names used by the HTTP API back to a Dir.
func ParseDir(s string) (Dir, bool) {
	switch s {
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	default:
		return DirUp, false
	}
}
