package bot

import (
	"fmt"

	"github.com/hayatoito/icfp2019/internal/geom"
)

// OrderKind is the state of a bot's deferred multi-step task.
type OrderKind int

const (
	OrderNone OrderKind = iota

	MoveToManipulatorPickup
	PerformManipulatorExtension

	MoveToClonePickup
	AwaitMysteryTarget
	MoveToMysteryTarget
	PerformClone

	MoveToSpeedPickup
	PerformSpeedBoost

	MoveToDrillPickup
	PerformDrill
)

// Order is a task a bot has committed to. Target is set for the MoveTo states.
// The zero Order is idle.
type Order struct {
	Kind   OrderKind
	Target geom.Pos
}

// NoOrder is the idle state.
var NoOrder = Order{}

// MoveTo builds a MoveTo order for target.
func MoveTo(kind OrderKind, target geom.Pos) Order {
	return Order{Kind: kind, Target: target}
}

// Idle reports whether no task is pending.
func (o Order) Idle() bool {
	return o.Kind == OrderNone
}

// IsMoving reports whether the order is walking towards Target.
func (o Order) IsMoving() bool {
	switch o.Kind {
	case MoveToManipulatorPickup, MoveToClonePickup, MoveToMysteryTarget, MoveToSpeedPickup, MoveToDrillPickup:
		return true
	}
	return false
}

// Advance returns the order that follows once the bot has applied an action
// and stands at pos. MoveTo states switch to their next stage on arrival;
// Perform states complete after the action that performed them.
func (o Order) Advance(pos geom.Pos) Order {
	switch o.Kind {
	case OrderNone:
		return o
	case MoveToManipulatorPickup:
		if pos == o.Target {
			return Order{Kind: PerformManipulatorExtension}
		}
	case MoveToClonePickup:
		if pos == o.Target {
			return Order{Kind: AwaitMysteryTarget}
		}
	case MoveToMysteryTarget:
		if pos == o.Target {
			return Order{Kind: PerformClone}
		}
	case MoveToSpeedPickup:
		if pos == o.Target {
			return Order{Kind: PerformSpeedBoost}
		}
	case MoveToDrillPickup:
		if pos == o.Target {
			return Order{Kind: PerformDrill}
		}
	case PerformManipulatorExtension, PerformClone, PerformSpeedBoost, PerformDrill:
		return NoOrder
	case AwaitMysteryTarget:
		// Reached mid-turn by a boosted move; the next turn picks a target.
		return o
	default:
		panic(fmt.Sprintf("bot: unknown order kind %d", int(o.Kind)))
	}
	return o
}

func (o Order) String() string {
	switch o.Kind {
	case OrderNone:
		return "None"
	case MoveToManipulatorPickup:
		return "MoveToManipulatorPickup" + o.Target.String()
	case PerformManipulatorExtension:
		return "PerformManipulatorExtension"
	case MoveToClonePickup:
		return "MoveToClonePickup" + o.Target.String()
	case AwaitMysteryTarget:
		return "AwaitMysteryTarget"
	case MoveToMysteryTarget:
		return "MoveToMysteryTarget" + o.Target.String()
	case PerformClone:
		return "PerformClone"
	case MoveToSpeedPickup:
		return "MoveToSpeedPickup" + o.Target.String()
	case PerformSpeedBoost:
		return "PerformSpeedBoost"
	case MoveToDrillPickup:
		return "MoveToDrillPickup" + o.Target.String()
	case PerformDrill:
		return "PerformDrill"
	}
	return fmt.Sprintf("Order(%d)", int(o.Kind))
}
