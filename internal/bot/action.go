package bot

import (
	"fmt"
	"strings"

	"github.com/hayatoito/icfp2019/internal/geom"
)

// ActionKind enumerates everything a bot can do in one turn.
type ActionKind int

const (
	MoveUp ActionKind = iota
	MoveDown
	MoveLeft
	MoveRight
	DoNothing
	TurnClockwise
	TurnCounterClockwise
	ExtendManipulator
	AttachSpeedBoost
	AttachDrill
	Clone
)

// Action is one turn of a bot. Offset is only meaningful for ExtendManipulator.
type Action struct {
	Kind   ActionKind
	Offset geom.Offset
}

// Shorthands for the argument-less actions.
var (
	Up        = Action{Kind: MoveUp}
	Down      = Action{Kind: MoveDown}
	Left      = Action{Kind: MoveLeft}
	Right     = Action{Kind: MoveRight}
	Wait      = Action{Kind: DoNothing}
	TurnCW    = Action{Kind: TurnClockwise}
	TurnCCW   = Action{Kind: TurnCounterClockwise}
	UseSpeed  = Action{Kind: AttachSpeedBoost}
	UseDrill  = Action{Kind: AttachDrill}
	CloneSelf = Action{Kind: Clone}
)

// Extend builds an ExtendManipulator action for a body-local offset.
func Extend(o geom.Offset) Action {
	return Action{Kind: ExtendManipulator, Offset: o}
}

// IsMove reports whether the action changes the bot's cell.
func (a Action) IsMove() bool {
	switch a.Kind {
	case MoveUp, MoveDown, MoveLeft, MoveRight:
		return true
	}
	return false
}

// String renders the action in solution-file notation.
func (a Action) String() string {
	switch a.Kind {
	case MoveUp:
		return "W"
	case MoveDown:
		return "S"
	case MoveLeft:
		return "A"
	case MoveRight:
		return "D"
	case DoNothing:
		return "Z"
	case TurnClockwise:
		return "E"
	case TurnCounterClockwise:
		return "Q"
	case ExtendManipulator:
		return "B" + a.Offset.String()
	case AttachSpeedBoost:
		return "F"
	case AttachDrill:
		return "L"
	case Clone:
		return "C"
	}
	panic(fmt.Sprintf("bot: unknown action kind %d", int(a.Kind)))
}

// FormatLog concatenates actions in solution-file notation.
func FormatLog(actions []Action) string {
	var sb strings.Builder
	for _, a := range actions {
		sb.WriteString(a.String())
	}
	return sb.String()
}

// Step returns the pose after a move or turn. Any other action is a caller bug.
func Step(p geom.Pose, a Action) geom.Pose {
	switch a.Kind {
	case MoveUp:
		return geom.Pose{Pos: p.Pos.Add(geom.Up), Angle: p.Angle}
	case MoveDown:
		return geom.Pose{Pos: p.Pos.Add(geom.Down), Angle: p.Angle}
	case MoveLeft:
		return geom.Pose{Pos: p.Pos.Add(geom.Left), Angle: p.Angle}
	case MoveRight:
		return geom.Pose{Pos: p.Pos.Add(geom.Right), Angle: p.Angle}
	case TurnClockwise:
		return geom.Pose{Pos: p.Pos, Angle: p.Angle.Clockwise()}
	case TurnCounterClockwise:
		return geom.Pose{Pos: p.Pos, Angle: p.Angle.CounterClockwise()}
	}
	panic(fmt.Sprintf("bot: %s is not a move or turn", a))
}
