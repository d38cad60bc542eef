package arena

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hayatoito/icfp2019/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolygon(t *testing.T) {
	poly, err := ParsePolygon("(0,0),(10,0),(10,10),(0,10)")
	require.NoError(t, err)
	assert.Equal(t, []geom.Pos{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}, poly)

	empty, err := ParsePolygon("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParsePos(t *testing.T) {
	p, err := ParsePos("(0,1)")
	require.NoError(t, err)
	assert.Equal(t, geom.Pos{X: 0, Y: 1}, p)

	_, err = ParsePos("0,1")
	assert.True(t, IsParseError(err))
}

func TestParseBooster(t *testing.T) {
	b, err := ParseBooster("F(4,2)")
	require.NoError(t, err)
	assert.Equal(t, Booster{Pos: geom.Pos{X: 4, Y: 2}, Kind: SpeedBoost}, b)

	_, err = ParseBooster("Q(4,2)")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "unknown booster kind")
}

func TestParse(t *testing.T) {
	task, err := Parse(7, "(0,0),(6,0),(6,4),(0,4)#(0,0)#(4,2),(6,2);(0,1)#F(4,2);B(0,1);L(1,1);X(2,2);R(3,3);C(5,3)\n")
	require.NoError(t, err)

	assert.Equal(t, 7, task.ID)
	assert.Len(t, task.Boundary, 4)
	assert.Equal(t, geom.Pos{X: 0, Y: 0}, task.Start)
	assert.Equal(t, [][]geom.Pos{{{X: 4, Y: 2}, {X: 6, Y: 2}}, {{X: 0, Y: 1}}}, task.Obstacles)

	kinds := make([]BoosterKind, 0, len(task.Boosters))
	for _, b := range task.Boosters {
		kinds = append(kinds, b.Kind)
	}
	assert.Equal(t, []BoosterKind{SpeedBoost, ManipulatorExtension, Drill, Mystery, Teleport, Cloning}, kinds)
}

func TestParse_EmptyOptionalFields(t *testing.T) {
	task, err := Parse(1, "(0,0),(4,0),(4,4),(0,4)#(1,1)##")
	require.NoError(t, err)
	assert.Empty(t, task.Obstacles)
	assert.Empty(t, task.Boosters)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "wrong field count", input: "(0,0),(4,0)#(1,1)#", want: "expected 4"},
		{name: "empty boundary", input: "#(1,1)##", want: "at least 2 vertices"},
		{name: "bad number", input: "(0,0),(x,0),(4,4)#(1,1)##", want: "invalid x coordinate"},
		{name: "bad start", input: "(0,0),(4,0),(4,4),(0,4)#1,1##", want: "must be (x,y)"},
		{name: "bad booster", input: "(0,0),(4,0),(4,4),(0,4)#(1,1)##Z(1,1)", want: "unknown booster kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := Parse(1, tt.input)
			assert.Nil(t, task)
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prob-001.desc")
	require.NoError(t, os.WriteFile(path, []byte("(0,0),(4,0),(4,4),(0,4)#(0,0)##"), 0644))

	task, err := ReadFile(1, path)
	require.NoError(t, err)
	assert.Equal(t, 1, task.ID)

	_, err = ReadFile(2, filepath.Join(t.TempDir(), "missing.desc"))
	require.Error(t, err)
	assert.False(t, IsParseError(err))
	assert.Contains(t, err.Error(), "failed to read arena 2")
}

func mustMap(t *testing.T, desc string) *Map {
	t.Helper()
	task, err := Parse(1, desc)
	require.NoError(t, err)
	m, err := New(task)
	require.NoError(t, err)
	return m
}

func TestNew_Square(t *testing.T) {
	m := mustMap(t, "(0,0),(4,0),(4,4),(0,4)#(0,0)##")

	assert.Equal(t, 4, m.MaxX)
	assert.Equal(t, 4, m.MaxY)
	assert.Equal(t, 16, m.OpenCount)
	assert.Equal(t, 16, m.CountOpen())
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			assert.Equal(t, Open, m.At(geom.Pos{X: x, Y: y}))
		}
	}
}

func TestNew_ObstacleSubtracts(t *testing.T) {
	m := mustMap(t, "(0,0),(6,0),(6,4),(0,4)#(0,0)#(2,1),(4,1),(4,3),(2,3)#")

	assert.Equal(t, 20, m.OpenCount)
	assert.True(t, m.IsWall(geom.Pos{X: 2, Y: 1}))
	assert.True(t, m.IsWall(geom.Pos{X: 3, Y: 2}))
	assert.True(t, m.IsOpen(geom.Pos{X: 1, Y: 1}))
	assert.True(t, m.IsOpen(geom.Pos{X: 4, Y: 2}))
}

func TestNew_LShapeDump(t *testing.T) {
	m := mustMap(t, "(0,0),(3,0),(3,1),(1,1),(1,3),(0,3)#(0,0)##B(0,2)")

	assert.Equal(t, 5, m.OpenCount)
	assert.Equal(t, "B##\n.##\nO..", m.Dump())
}

func TestNew_RejectsBadPolygons(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{name: "diagonal edge", desc: "(0,0),(4,0),(4,4),(1,3)#(0,0)##", want: "not axis-aligned"},
		{name: "clockwise winding leaks", desc: "(0,0),(0,4),(4,4),(4,0)#(1,1)##", want: "not closed"},
		{name: "start outside", desc: "(0,0),(4,0),(4,4),(0,4)#(9,9)##", want: "outside the arena"},
		{name: "obstacle outside boundary", desc: "(0,0),(4,0),(4,4),(0,4)#(0,0)#(5,5),(7,5),(7,7),(5,7)#", want: "outside the boundary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := Parse(1, tt.desc)
			require.NoError(t, err)

			m, err := New(task)
			assert.Nil(t, m)
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMarkAndDrill(t *testing.T) {
	m := mustMap(t, "(0,0),(4,0),(4,4),(0,4)#(0,0)#(1,1),(2,1),(2,2),(1,2)#")
	require.Equal(t, 15, m.OpenCount)

	p := geom.Pos{X: 0, Y: 0}
	assert.True(t, m.Mark(p))
	assert.False(t, m.Mark(p), "second mark of the same cell must not count")
	assert.Equal(t, 14, m.OpenCount)
	assert.Equal(t, m.CountOpen(), m.OpenCount)

	// Off-grid and wall cells are ignored.
	assert.False(t, m.Mark(geom.Pos{X: -1, Y: 0}))
	assert.False(t, m.Mark(geom.Pos{X: 1, Y: 1}))

	wall := geom.Pos{X: 1, Y: 1}
	m.DrillAt(wall)
	assert.True(t, m.IsFree(wall))
	assert.False(t, m.IsOpen(wall))
	assert.Equal(t, 14, m.OpenCount, "drilling never changes the open count")

	assert.Panics(t, func() { m.DrillAt(wall) })
}

func TestOffGridSemantics(t *testing.T) {
	m := mustMap(t, "(0,0),(2,0),(2,2),(0,2)#(0,0)##")
	off := geom.Pos{X: 2, Y: 0}

	assert.False(t, m.InRange(off))
	assert.False(t, m.IsWall(off), "off-grid cells never block line of sight")
	assert.False(t, m.IsFree(off))
	assert.False(t, m.IsOpen(off))
	assert.Equal(t, Wall, m.At(off))
}

func TestBoosterKindLetters(t *testing.T) {
	for _, c := range []byte("BFLXRC") {
		kind, ok := ParseBoosterKind(c)
		require.True(t, ok)
		assert.Equal(t, string(c), kind.Letter())
	}
	_, ok := ParseBoosterKind('Z')
	assert.False(t, ok)
}
