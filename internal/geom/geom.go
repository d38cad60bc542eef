// Package geom holds the integer grid primitives shared by the rasterizer,
// the bots and the solver: positions, relative offsets, the four bot
// orientations and poses (position plus orientation).
package geom

import "fmt"

// Pos is an absolute cell coordinate. X grows to the right, Y grows upwards.
type Pos struct {
	X int
	Y int
}

// Offset is a relative displacement between two cells.
type Offset struct {
	DX int
	DY int
}

// Add returns the position displaced by o.
func (p Pos) Add(o Offset) Pos {
	return Pos{X: p.X + o.DX, Y: p.Y + o.DY}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Neg returns the offset pointing the other way.
func (o Offset) Neg() Offset {
	return Offset{DX: -o.DX, DY: -o.DY}
}

func (o Offset) String() string {
	return fmt.Sprintf("(%d,%d)", o.DX, o.DY)
}

// Turn rotates o into the frame of a bot facing angle a.
func (o Offset) Turn(a Angle) Offset {
	switch a {
	case A90:
		return Offset{DX: o.DY, DY: -o.DX}
	case A180:
		return Offset{DX: -o.DX, DY: -o.DY}
	case A270:
		return Offset{DX: -o.DY, DY: o.DX}
	default:
		return o
	}
}

// Angle is one of the four orientations a bot can face.
type Angle int

const (
	A0 Angle = iota
	A90
	A180
	A270
)

// Clockwise returns the orientation after a clockwise quarter turn.
func (a Angle) Clockwise() Angle {
	return (a + 1) % 4
}

// CounterClockwise returns the orientation after a counter-clockwise quarter turn.
func (a Angle) CounterClockwise() Angle {
	return (a + 3) % 4
}

func (a Angle) String() string {
	switch a {
	case A0:
		return "0"
	case A90:
		return "90"
	case A180:
		return "180"
	case A270:
		return "270"
	default:
		return fmt.Sprintf("Angle(%d)", int(a))
	}
}

// Unit offsets in the order the rasterizer and the distance search expand them.
var (
	Right = Offset{DX: 1, DY: 0}
	Up    = Offset{DX: 0, DY: 1}
	Left  = Offset{DX: -1, DY: 0}
	Down  = Offset{DX: 0, DY: -1}
)

// Neighbours4 lists the four axis neighbours: right, up, left, down.
var Neighbours4 = [4]Offset{Right, Up, Left, Down}

// Pose is a bot's position together with its orientation.
type Pose struct {
	Pos   Pos
	Angle Angle
}

// Reach returns the absolute cell a body-local offset lands on from this pose.
func (p Pose) Reach(o Offset) Pos {
	return p.Pos.Add(o.Turn(p.Angle))
}

// Manhattan returns |dx|+|dy| between two positions.
func Manhattan(a, b Pos) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
