// Package bot models a single painting bot: its pose, arms, ability timers,
// pending order and action log, and how one action changes them.
package bot

import (
	"fmt"

	"github.com/hayatoito/icfp2019/internal/geom"
)

const (
	// SpeedBoostTicks is how many turns one speed boost lasts.
	SpeedBoostTicks = 50
	// DrillTicks is how many turns one drill lasts.
	DrillTicks = 30
)

// Bot is one agent on the arena.
type Bot struct {
	Pose         geom.Pose
	Manipulators []Manipulator
	SpeedTimer   int
	DrillTimer   int
	Order        Order
	Log          []Action
}

// New places a fresh bot facing 0 degrees with the default arms.
func New(pos geom.Pos) *Bot {
	return &Bot{
		Pose:         geom.Pose{Pos: pos, Angle: geom.A0},
		Manipulators: DefaultManipulators(),
	}
}

// NextManipulatorOffset picks where the next arm goes: alternately above and
// below the front column, growing outwards.
func (b *Bot) NextManipulatorOffset() geom.Offset {
	half := len(b.Manipulators) / 2
	if len(b.Manipulators)%2 == 0 {
		return geom.Offset{DX: 1, DY: half}
	}
	return geom.Offset{DX: 1, DY: -half}
}

// Apply performs one action. secondHalf marks the extra step a speed boost
// grants after a move: it is not logged and it stops silently at obstacles
// instead of treating them as a bug.
//
// Moving into a cell that is neither free nor drillable on the first half is
// an invariant violation and panics.
func (b *Bot) Apply(a Action, g Grid, secondHalf bool) {
	switch a.Kind {
	case MoveUp, MoveDown, MoveLeft, MoveRight:
		next := Step(b.Pose, a)
		switch {
		case secondHalf && b.DrillTimer > 0:
			if g.InRange(next.Pos) && g.IsWall(next.Pos) {
				g.DrillAt(next.Pos)
				b.Pose = next
			}
		case secondHalf:
			if g.IsFree(next.Pos) {
				b.Pose = next
			}
		default:
			if b.DrillTimer > 0 && g.IsWall(next.Pos) {
				g.DrillAt(next.Pos)
			}
			if !g.IsFree(next.Pos) {
				panic(fmt.Sprintf("bot: move %s from %v into blocked cell %v", a, b.Pose.Pos, next.Pos))
			}
			b.Pose = next
		}
	case TurnClockwise, TurnCounterClockwise:
		b.Pose = Step(b.Pose, a)
	case DoNothing, Clone:
	case ExtendManipulator:
		b.Manipulators = append(b.Manipulators, NewManipulator(a.Offset))
	case AttachSpeedBoost:
		b.SpeedTimer += SpeedBoostTicks
	case AttachDrill:
		b.DrillTimer += DrillTicks
	default:
		panic(fmt.Sprintf("bot: unknown action kind %d", int(a.Kind)))
	}

	// A second half only walks; it never completes a perform reached by the
	// first half.
	if !secondHalf || b.Order.IsMoving() {
		b.Order = b.Order.Advance(b.Pose.Pos)
	}

	if secondHalf {
		return
	}
	if a.Kind == ExtendManipulator {
		// Arms are stored body-local; the log wants them in arena axes.
		b.Log = append(b.Log, Extend(a.Offset.Turn(b.Pose.Angle)))
		return
	}
	b.Log = append(b.Log, a)
}

// MarkAll paints every Open cell an arm can currently reach and returns how
// many cells changed.
func (b *Bot) MarkAll(g Grid) int {
	var targets []geom.Pos
	for _, m := range b.Manipulators {
		if m.CanMark(b.Pose, g) {
			targets = append(targets, m.Target(b.Pose))
		}
	}
	n := 0
	for _, p := range targets {
		if g.Mark(p) {
			n++
		}
	}
	return n
}

// Record returns the bot's log in solution-file notation.
func (b *Bot) Record() string {
	return FormatLog(b.Log)
}
