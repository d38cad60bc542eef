package arena

import (
	"fmt"
	"strings"

	"github.com/hayatoito/icfp2019/internal/geom"
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"
)

// Cell is the state of one grid square.
type Cell int

const (
	Wall Cell = iota
	Open
	Marked
)

// Map is the rasterized arena. Cells are indexed [x][y]; everything outside
// the boundary fill is Wall.
type Map struct {
	ID        int
	MaxX      int
	MaxY      int
	Start     geom.Pos
	Boosters  []Booster
	OpenCount int

	cells [][]Cell
}

// New rasterizes a task. The grid spans [0,maxX) x [0,maxY) where the maxima
// are taken over the boundary vertices.
func New(task *Task) (*Map, error) {
	if len(task.Boundary) < 2 {
		return nil, &ParseError{Field: "boundary", Reason: "boundary needs at least 2 vertices"}
	}

	maxX, maxY := task.Boundary[0].X, task.Boundary[0].Y
	for _, p := range task.Boundary[1:] {
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	m := &Map{
		ID:       task.ID,
		MaxX:     maxX,
		MaxY:     maxY,
		Start:    task.Start,
		Boosters: task.Boosters,
		cells:    make([][]Cell, maxX),
	}
	for x := range m.cells {
		m.cells[x] = make([]Cell, maxY)
	}

	interior, err := fillPolygon(task.Boundary)
	if err != nil {
		return nil, err
	}
	if err := m.paint(interior, Open); err != nil {
		return nil, err
	}

	for _, obstacle := range task.Obstacles {
		filled, err := fillPolygon(obstacle)
		if err != nil {
			return nil, err
		}
		if err := m.paint(filled, Wall); err != nil {
			return nil, err
		}
	}

	if !m.InRange(task.Start) {
		return nil, &ParseError{Field: "position", Input: task.Start.String(), Reason: "start position is outside the arena"}
	}

	m.OpenCount = m.CountOpen()
	return m, nil
}

func (m *Map) paint(cells mapset.Set[geom.Pos], c Cell) error {
	var outside []geom.Pos
	cells.Each(func(p geom.Pos) {
		if !m.InRange(p) {
			outside = append(outside, p)
			return
		}
		m.cells[p.X][p.Y] = c
	})
	if len(outside) > 0 {
		return &ParseError{Field: "polygon", Input: outside[0].String(), Reason: fmt.Sprintf("%d filled cells fall outside the boundary extent", len(outside))}
	}
	return nil
}

// fillPolygon returns every cell inside a closed axis-aligned polygon.
//
// Each unit step along an edge seeds one interior cell and one wall cell on
// either side of the edge; the direction of travel decides which side is
// inside. A multi-source BFS then grows from the interior seeds and never
// enters a seeded wall.
func fillPolygon(tour []geom.Pos) (mapset.Set[geom.Pos], error) {
	visited := mapset.New[geom.Pos]()
	filled := mapset.New[geom.Pos]()
	q := queue.New[geom.Pos]()

	if len(tour) == 0 {
		return filled, nil
	}

	minX, minY := tour[0].X, tour[0].Y
	maxX, maxY := tour[0].X, tour[0].Y
	for i := range tour {
		start := tour[i]
		end := tour[(i+1)%len(tour)]
		minX, maxX = min(minX, start.X), max(maxX, start.X)
		minY, maxY = min(minY, start.Y), max(maxY, start.Y)

		borders, err := edgeBorders(start, end)
		if err != nil {
			return filled, err
		}
		for _, b := range borders {
			visited.Put(b.wall)
			visited.Put(b.interior)
			filled.Put(b.interior)
			q.Enqueue(b.interior)
		}
	}

	for !q.Empty() {
		current := q.Dequeue()
		for _, d := range geom.Neighbours4 {
			next := current.Add(d)
			if visited.Has(next) {
				continue
			}
			if next.X < minX || next.X >= maxX || next.Y < minY || next.Y >= maxY {
				return filled, &ParseError{Field: "polygon", Input: next.String(), Reason: "polygon is not closed or has inconsistent winding"}
			}
			visited.Put(next)
			filled.Put(next)
			q.Enqueue(next)
		}
	}
	return filled, nil
}

type border struct {
	interior geom.Pos
	wall     geom.Pos
}

func edgeBorders(start, end geom.Pos) ([]border, error) {
	var borders []border
	switch {
	case start.X == end.X && start.Y < end.Y: // up
		x := start.X
		for y := start.Y; y < end.Y; y++ {
			borders = append(borders, border{interior: geom.Pos{X: x - 1, Y: y}, wall: geom.Pos{X: x, Y: y}})
		}
	case start.X == end.X && start.Y > end.Y: // down
		x := start.X
		for y := end.Y; y < start.Y; y++ {
			borders = append(borders, border{interior: geom.Pos{X: x, Y: y}, wall: geom.Pos{X: x - 1, Y: y}})
		}
	case start.Y == end.Y && start.X < end.X: // right
		y := start.Y
		for x := start.X; x < end.X; x++ {
			borders = append(borders, border{interior: geom.Pos{X: x, Y: y}, wall: geom.Pos{X: x, Y: y - 1}})
		}
	case start.Y == end.Y && start.X > end.X: // left
		y := start.Y
		for x := end.X; x < start.X; x++ {
			borders = append(borders, border{interior: geom.Pos{X: x, Y: y - 1}, wall: geom.Pos{X: x, Y: y}})
		}
	case start == end:
		return nil, &ParseError{Field: "polygon", Input: start.String(), Reason: "zero-length edge"}
	default:
		return nil, &ParseError{Field: "polygon", Input: fmt.Sprintf("%v-%v", start, end), Reason: "edge is not axis-aligned"}
	}
	return borders, nil
}

// InRange reports whether p lies on the grid.
func (m *Map) InRange(p geom.Pos) bool {
	return 0 <= p.X && p.X < m.MaxX && 0 <= p.Y && p.Y < m.MaxY
}

// At returns the cell at p. Positions off the grid read as Wall.
func (m *Map) At(p geom.Pos) Cell {
	if !m.InRange(p) {
		return Wall
	}
	return m.cells[p.X][p.Y]
}

// IsOpen reports whether p is an unmarked traversable cell.
func (m *Map) IsOpen(p geom.Pos) bool {
	return m.InRange(p) && m.cells[p.X][p.Y] == Open
}

// IsFree reports whether a bot may stand on p.
func (m *Map) IsFree(p geom.Pos) bool {
	return m.InRange(p) && m.cells[p.X][p.Y] != Wall
}

// IsWall reports whether p is an in-range wall. Off-grid positions are not
// walls for line-of-sight purposes.
func (m *Map) IsWall(p geom.Pos) bool {
	return m.InRange(p) && m.cells[p.X][p.Y] == Wall
}

// DrillAt turns an in-range wall into a traversable cell. The drilled cell
// does not count towards OpenCount.
func (m *Map) DrillAt(p geom.Pos) {
	if !m.IsWall(p) {
		panic(fmt.Sprintf("arena: drill at %v which is not a wall", p))
	}
	m.cells[p.X][p.Y] = Marked
}

// Mark paints an Open cell. It returns true if the cell was Open before.
func (m *Map) Mark(p geom.Pos) bool {
	if !m.IsOpen(p) {
		return false
	}
	m.cells[p.X][p.Y] = Marked
	m.OpenCount--
	return true
}

// CountOpen recounts the Open cells from scratch.
func (m *Map) CountOpen() int {
	n := 0
	for x := range m.cells {
		for _, c := range m.cells[x] {
			if c == Open {
				n++
			}
		}
	}
	return n
}

// Dump renders the map with the highest row first: '#' wall, '.' open,
// '-' marked, 'O' start and booster letters on top.
func (m *Map) Dump() string {
	rect := make([][]byte, m.MaxX)
	for x := range rect {
		rect[x] = make([]byte, m.MaxY)
		for y := range rect[x] {
			switch m.cells[x][y] {
			case Wall:
				rect[x][y] = '#'
			case Open:
				rect[x][y] = '.'
			case Marked:
				rect[x][y] = '-'
			}
		}
	}

	if m.InRange(m.Start) {
		rect[m.Start.X][m.Start.Y] = 'O'
	}
	for _, b := range m.Boosters {
		if m.InRange(b.Pos) {
			rect[b.Pos.X][b.Pos.Y] = b.Kind.Letter()[0]
		}
	}

	rows := make([]string, 0, m.MaxY)
	for y := m.MaxY - 1; y >= 0; y-- {
		var sb strings.Builder
		for x := 0; x < m.MaxX; x++ {
			sb.WriteByte(rect[x][y])
		}
		rows = append(rows, sb.String())
	}
	return strings.Join(rows, "\n")
}
