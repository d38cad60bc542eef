// Package arena parses arena descriptions and rasterizes them into a cell grid.
//
// An arena description is four '#'-separated fields:
//
//	boundary#start#obstacles#boosters
//
// where boundary is a polygon "(x,y),(x,y),...", start is a single "(x,y)",
// obstacles are ';'-separated polygons and boosters are ';'-separated tokens
// of a kind letter followed by a position, e.g. "B(3,4)".
package arena

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hayatoito/icfp2019/internal/geom"
)

// BoosterKind identifies an ability pickup.
type BoosterKind int

const (
	ManipulatorExtension BoosterKind = iota
	SpeedBoost
	Drill
	Mystery
	Teleport // parsed but never consumed by the solver
	Cloning
)

// ParseBoosterKind maps a kind letter (B, F, L, X, R, C) to its kind.
func ParseBoosterKind(c byte) (BoosterKind, bool) {
	switch c {
	case 'B':
		return ManipulatorExtension, true
	case 'F':
		return SpeedBoost, true
	case 'L':
		return Drill, true
	case 'X':
		return Mystery, true
	case 'R':
		return Teleport, true
	case 'C':
		return Cloning, true
	}
	return 0, false
}

// Letter returns the one-letter code used in arena descriptions and map dumps.
func (k BoosterKind) Letter() string {
	switch k {
	case ManipulatorExtension:
		return "B"
	case SpeedBoost:
		return "F"
	case Drill:
		return "L"
	case Mystery:
		return "X"
	case Teleport:
		return "R"
	case Cloning:
		return "C"
	}
	return "?"
}

func (k BoosterKind) String() string {
	switch k {
	case ManipulatorExtension:
		return "ManipulatorExtension"
	case SpeedBoost:
		return "SpeedBoost"
	case Drill:
		return "Drill"
	case Mystery:
		return "Mystery"
	case Teleport:
		return "Teleport"
	case Cloning:
		return "Cloning"
	}
	return fmt.Sprintf("BoosterKind(%d)", int(k))
}

// Booster is a pickup lying on the arena.
type Booster struct {
	Pos  geom.Pos
	Kind BoosterKind
}

// Task is a parsed arena description.
type Task struct {
	ID        int
	Boundary  []geom.Pos
	Start     geom.Pos
	Obstacles [][]geom.Pos
	Boosters  []Booster
}

// ReadFile reads and parses the arena description at path.
func ReadFile(id int, path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read arena %d: %w", id, err)
	}
	return Parse(id, string(data))
}

// Parse parses an arena description. Surrounding whitespace is ignored.
func Parse(id int, s string) (*Task, error) {
	fields := strings.Split(strings.TrimSpace(s), "#")
	if len(fields) != 4 {
		return nil, &ParseError{Field: "description", Input: s, Reason: fmt.Sprintf("expected 4 '#'-separated fields, got %d", len(fields))}
	}

	boundary, err := ParsePolygon(fields[0])
	if err != nil {
		return nil, err
	}
	if len(boundary) < 2 {
		return nil, &ParseError{Field: "boundary", Input: fields[0], Reason: "boundary needs at least 2 vertices"}
	}

	start, err := ParsePos(fields[1])
	if err != nil {
		return nil, err
	}

	obstacles, err := parseObstacles(fields[2])
	if err != nil {
		return nil, err
	}

	boosters, err := parseBoosters(fields[3])
	if err != nil {
		return nil, err
	}

	return &Task{
		ID:        id,
		Boundary:  boundary,
		Start:     start,
		Obstacles: obstacles,
		Boosters:  boosters,
	}, nil
}

// ParsePolygon parses "(x,y),(x,y),..." into its vertices. An empty string is
// an empty polygon.
func ParsePolygon(s string) ([]geom.Pos, error) {
	if s == "" {
		return nil, nil
	}
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, &ParseError{Field: "polygon", Input: s, Reason: "must be a list of (x,y) points"}
	}

	parts := strings.Split(s[1:len(s)-1], "),(")
	points := make([]geom.Pos, 0, len(parts))
	for _, part := range parts {
		p, err := parseXY(part)
		if err != nil {
			return nil, &ParseError{Field: "polygon", Input: s, Reason: err.Error()}
		}
		points = append(points, p)
	}
	return points, nil
}

// ParsePos parses a single "(x,y)".
func ParsePos(s string) (geom.Pos, error) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return geom.Pos{}, &ParseError{Field: "position", Input: s, Reason: "must be (x,y)"}
	}
	p, err := parseXY(s[1 : len(s)-1])
	if err != nil {
		return geom.Pos{}, &ParseError{Field: "position", Input: s, Reason: err.Error()}
	}
	return p, nil
}

func parseXY(s string) (geom.Pos, error) {
	xy := strings.Split(s, ",")
	if len(xy) != 2 {
		return geom.Pos{}, fmt.Errorf("point %q must have exactly two coordinates", s)
	}
	x, err := strconv.Atoi(xy[0])
	if err != nil {
		return geom.Pos{}, fmt.Errorf("invalid x coordinate %q", xy[0])
	}
	y, err := strconv.Atoi(xy[1])
	if err != nil {
		return geom.Pos{}, fmt.Errorf("invalid y coordinate %q", xy[1])
	}
	return geom.Pos{X: x, Y: y}, nil
}

func parseObstacles(s string) ([][]geom.Pos, error) {
	if s == "" {
		return nil, nil
	}
	var obstacles [][]geom.Pos
	for _, part := range strings.Split(s, ";") {
		poly, err := ParsePolygon(part)
		if err != nil {
			return nil, err
		}
		obstacles = append(obstacles, poly)
	}
	return obstacles, nil
}

func parseBoosters(s string) ([]Booster, error) {
	if s == "" {
		return nil, nil
	}
	var boosters []Booster
	for _, token := range strings.Split(s, ";") {
		b, err := ParseBooster(token)
		if err != nil {
			return nil, err
		}
		boosters = append(boosters, b)
	}
	return boosters, nil
}

// ParseBooster parses a single booster token such as "F(4,2)".
func ParseBooster(s string) (Booster, error) {
	if s == "" {
		return Booster{}, &ParseError{Field: "booster", Input: s, Reason: "empty booster token"}
	}
	kind, ok := ParseBoosterKind(s[0])
	if !ok {
		return Booster{}, &ParseError{Field: "booster", Input: s, Reason: fmt.Sprintf("unknown booster kind %q", s[0])}
	}
	pos, err := ParsePos(s[1:])
	if err != nil {
		return Booster{}, &ParseError{Field: "booster", Input: s, Reason: err.Error()}
	}
	return Booster{Pos: pos, Kind: kind}, nil
}
