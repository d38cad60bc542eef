package bot

import (
	"github.com/hayatoito/icfp2019/internal/geom"
	"github.com/zyedidia/generic/mapset"
)

// Grid is the view of the arena a bot needs to move, drill and paint.
// *arena.Map implements it.
type Grid interface {
	InRange(p geom.Pos) bool
	IsOpen(p geom.Pos) bool
	IsFree(p geom.Pos) bool
	IsWall(p geom.Pos) bool
	DrillAt(p geom.Pos)
	Mark(p geom.Pos) bool
}

// Manipulator is an arm at a fixed body-local offset. Its line of sight is
// computed once at construction.
type Manipulator struct {
	Offset geom.Offset
	reach  []geom.Offset
}

// NewManipulator builds an arm for a body-local offset.
func NewManipulator(o geom.Offset) Manipulator {
	return Manipulator{Offset: o, reach: Plot(o)}
}

// DefaultManipulators is the arm set every bot starts with: its own cell and
// a three-cell column in front of it.
func DefaultManipulators() []Manipulator {
	return []Manipulator{
		NewManipulator(geom.Offset{DX: 0, DY: 0}),
		NewManipulator(geom.Offset{DX: 1, DY: 0}),
		NewManipulator(geom.Offset{DX: 1, DY: 1}),
		NewManipulator(geom.Offset{DX: 1, DY: -1}),
	}
}

// Reach returns the cells between the body and the arm tip, both included.
func (m Manipulator) Reach() []geom.Offset {
	return m.reach
}

// Target returns the absolute cell the arm tip covers from pose p.
func (m Manipulator) Target(p geom.Pose) geom.Pos {
	return p.Reach(m.Offset)
}

// CanMark reports whether the arm would paint its target from pose p: the
// target must be Open and nothing on the line of sight may be a wall.
func (m Manipulator) CanMark(p geom.Pose, g Grid) bool {
	if !g.IsOpen(p.Reach(m.Offset)) {
		return false
	}
	for _, r := range m.reach {
		if g.IsWall(p.Reach(r)) {
			return false
		}
	}
	return true
}

// Plot returns the digital line from (0,0) to o, both ends included.
//
// The stepper walks the major axis and advances the minor axis whenever the
// error term crosses zero. When it does so strictly inside a step the
// intermediate axis-only cell is emitted too, so consecutive cells are always
// orthogonal or diagonal neighbours.
func Plot(o geom.Offset) []geom.Offset {
	ax, ay := abs(o.DX), abs(o.DY)
	steep := ax < ay

	dx, dy := ax, ay
	if steep {
		dx, dy = ay, ax
	}

	plot := make([]geom.Offset, 0, dx+dy+1)
	d := dy - dx
	y := 0
	for x := 0; x <= dx; x++ {
		plot = append(plot, geom.Offset{DX: x, DY: y})
		if d >= 0 {
			y++
			if d > 0 {
				plot = append(plot, geom.Offset{DX: x, DY: y})
			}
			d -= 2 * dx
		}
		d += 2 * dy
	}

	for i, p := range plot {
		if steep {
			p = geom.Offset{DX: p.DY, DY: p.DX}
		}
		if o.DX < 0 {
			p.DX = -p.DX
		}
		if o.DY < 0 {
			p.DY = -p.DY
		}
		plot[i] = p
	}
	return plot
}

// MarkCount is the number of arms that would paint something from pose p.
func MarkCount(p geom.Pose, manipulators []Manipulator, g Grid) int {
	n := 0
	for _, m := range manipulators {
		if m.CanMark(p, g) {
			n++
		}
	}
	return n
}

// AdjacentOpenCount counts the Open cells 4-adjacent to any arm tip at pose
// p, excluding the tips themselves.
func AdjacentOpenCount(p geom.Pose, manipulators []Manipulator, g Grid) int {
	tips := mapset.New[geom.Pos]()
	open := mapset.New[geom.Pos]()
	for _, m := range manipulators {
		tip := m.Target(p)
		tips.Put(tip)
		for _, d := range geom.Neighbours4 {
			adj := tip.Add(d)
			if g.IsOpen(adj) {
				open.Put(adj)
			}
		}
	}

	n := 0
	open.Each(func(pos geom.Pos) {
		if !tips.Has(pos) {
			n++
		}
	})
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
