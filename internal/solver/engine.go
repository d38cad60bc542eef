// Package solver drives a team of bots over a rasterized arena until every
// open cell is painted.
//
// Each round the engine first hands clone-related orders to idle bots that are
// closer to the target, then lets every bot act once in index order. A bot
// with an order follows it; an idle bot claims a nearby speed boost, then any
// manipulator extension or clone pickup, and otherwise walks to the nearest
// pose from which it can paint.
package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/hayatoito/icfp2019/internal/arena"
	"github.com/hayatoito/icfp2019/internal/bot"
	"github.com/hayatoito/icfp2019/internal/geom"
	"github.com/zyedidia/generic/mapset"
)

// Options tune the greedy policy and the solution label.
type Options struct {
	// Label is embedded in solution filenames.
	Label string
	// NearHorizon is the maximum path length at which NearKinds are claimed.
	NearHorizon int
	// NearKinds are only worth a detour when close by.
	NearKinds []arena.BoosterKind
	// FarKinds are claimed at any distance.
	FarKinds []arena.BoosterKind
	// Verbose enables per-turn tracing.
	Verbose bool
}

// DefaultOptions returns the policy used for contest submissions.
func DefaultOptions() Options {
	return Options{
		Label:       "ai-drill",
		NearHorizon: 5,
		NearKinds:   []arena.BoosterKind{arena.SpeedBoost},
		FarKinds:    []arena.BoosterKind{arena.ManipulatorExtension, arena.Cloning},
	}
}

// Engine owns all mutable state of one solve.
type Engine struct {
	grid    *arena.Map
	bots    []*bot.Bot
	pool    map[geom.Pos]arena.BoosterKind
	mystery mapset.Set[geom.Pos]
	opts    Options
	rounds  int
}

// New prepares an engine with a single bot at the arena's start cell.
func New(m *arena.Map, opts Options) *Engine {
	e := &Engine{
		grid:    m,
		bots:    []*bot.Bot{bot.New(m.Start)},
		pool:    make(map[geom.Pos]arena.BoosterKind),
		mystery: mapset.New[geom.Pos](),
		opts:    opts,
	}
	for _, b := range m.Boosters {
		if b.Kind == arena.Mystery {
			e.mystery.Put(b.Pos)
			continue
		}
		e.pool[b.Pos] = b.Kind
	}
	return e
}

// Bots returns the current team in index order.
func (e *Engine) Bots() []*bot.Bot {
	return e.bots
}

// Map returns the arena being painted.
func (e *Engine) Map() *arena.Map {
	return e.grid
}

// Solve runs rounds until no Open cell remains. The context is checked between
// rounds.
func (e *Engine) Solve(ctx context.Context) error {
	start := time.Now()
	e.bots[0].MarkAll(e.grid)

	for e.grid.OpenCount > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("solve of arena %d interrupted: %w", e.grid.ID, err)
		}

		e.rebalance()

		if e.opts.Verbose {
			log.Printf("[Solver] arena=%d round=%d open=%d bots=%d", e.grid.ID, e.rounds, e.grid.OpenCount, len(e.bots))
		}

		// Bots cloned during this round act from the next one.
		n := len(e.bots)
		for i := 0; i < n; i++ {
			if e.grid.OpenCount == 0 {
				break
			}
			if err := e.turn(i); err != nil {
				return err
			}
		}
		e.rounds++
	}

	e.logEvent("solve_completed", map[string]interface{}{
		"arena":       e.grid.ID,
		"bots":        len(e.bots),
		"rounds":      e.rounds,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// turn selects and applies one action for bot i.
func (e *Engine) turn(i int) error {
	b := e.bots[i]

	action, err := e.nextAction(i)
	if err != nil {
		return err
	}

	if e.opts.Verbose {
		log.Printf("[Solver] turn=%d bot=%d pos=%v order=%s speed=%d drill=%d action=%s",
			len(b.Log), i, b.Pose.Pos, b.Order, b.SpeedTimer, b.DrillTimer, action)
	}

	// Timers tick only if they were running before this action.
	hadSpeed := b.SpeedTimer > 0
	hadDrill := b.DrillTimer > 0

	b.Apply(action, e.grid, false)
	b.MarkAll(e.grid)
	if hadSpeed && action.IsMove() {
		b.Apply(action, e.grid, true)
		b.MarkAll(e.grid)
	}

	if hadSpeed {
		b.SpeedTimer--
	}
	if hadDrill {
		b.DrillTimer--
	}

	if action.Kind == bot.Clone {
		e.bots = append(e.bots, bot.New(b.Pose.Pos))
		e.logEvent("bot_cloned", map[string]interface{}{
			"arena": e.grid.ID,
			"bot":   i,
			"pos":   b.Pose.Pos.String(),
			"team":  len(e.bots),
		})
	}
	return nil
}

// nextAction picks what bot i does this turn, possibly taking a new order.
func (e *Engine) nextAction(i int) (bot.Action, error) {
	b := e.bots[i]
	if !b.Order.Idle() {
		return e.orderAction(i)
	}

	if t, idx, err := e.findBoosterNear(b); err == nil {
		if a, ok := e.takeOrder(b, t, idx); ok {
			return a, nil
		}
	}
	if t, idx, err := e.findBooster(b, e.opts.FarKinds); err == nil {
		if a, ok := e.takeOrder(b, t, idx); ok {
			return a, nil
		}
	}

	t, idx, err := e.findMarkMove(b)
	if err == nil {
		return t.firstAction(idx), nil
	}
	// A boosted bot can overshoot every paintable pose; waiting lets the
	// boost run out.
	if b.SpeedTimer > 0 {
		return bot.Wait, nil
	}
	return bot.Action{}, e.stuck(i, "no paintable pose is reachable")
}

// takeOrder claims the booster at the search result and starts walking to it.
func (e *Engine) takeOrder(b *bot.Bot, t *tree, idx int) (bot.Action, bool) {
	target := t.nodes[idx].pose.Pos
	kind, err := e.claim(target)
	if err != nil {
		return bot.Action{}, false
	}
	b.Order = bot.MoveTo(pickupOrder(kind), target)
	return t.firstAction(idx), true
}

func pickupOrder(kind arena.BoosterKind) bot.OrderKind {
	switch kind {
	case arena.ManipulatorExtension:
		return bot.MoveToManipulatorPickup
	case arena.SpeedBoost:
		return bot.MoveToSpeedPickup
	case arena.Drill:
		return bot.MoveToDrillPickup
	case arena.Cloning:
		return bot.MoveToClonePickup
	}
	panic(fmt.Sprintf("solver: no order for booster %s", kind))
}

// orderAction returns the next action for a bot that holds an order.
func (e *Engine) orderAction(i int) (bot.Action, error) {
	b := e.bots[i]
	switch b.Order.Kind {
	case bot.MoveToManipulatorPickup, bot.MoveToClonePickup, bot.MoveToMysteryTarget,
		bot.MoveToSpeedPickup, bot.MoveToDrillPickup:
		target := b.Order.Target
		t, idx, err := e.findMoveTo(b, func(p geom.Pos) bool { return p == target })
		if err != nil {
			return bot.Action{}, e.stuck(i, fmt.Sprintf("cannot reach order target %v", target))
		}
		return t.firstAction(idx), nil
	case bot.PerformManipulatorExtension:
		return bot.Extend(b.NextManipulatorOffset()), nil
	case bot.AwaitMysteryTarget:
		t, idx, err := e.findMoveTo(b, e.mystery.Has)
		if err != nil {
			return bot.Action{}, e.stuck(i, "no mystery cell is reachable")
		}
		b.Order = bot.MoveTo(bot.MoveToMysteryTarget, t.nodes[idx].pose.Pos)
		return t.firstAction(idx), nil
	case bot.PerformClone:
		return bot.CloneSelf, nil
	case bot.PerformSpeedBoost:
		return bot.UseSpeed, nil
	case bot.PerformDrill:
		return bot.UseDrill, nil
	}
	panic(fmt.Sprintf("solver: unhandled order %s", b.Order))
}

// findBooster searches for the nearest pooled booster of one of kinds.
func (e *Engine) findBooster(b *bot.Bot, kinds []arena.BoosterKind) (*tree, int, error) {
	if !e.hasAny(kinds) {
		return nil, 0, ErrBoosterUnavailable
	}
	return e.findMoveTo(b, func(p geom.Pos) bool {
		kind, ok := e.pool[p]
		return ok && slices.Contains(kinds, kind)
	})
}

// findBoosterNear is findBooster limited to the near horizon.
func (e *Engine) findBoosterNear(b *bot.Bot) (*tree, int, error) {
	t, idx, err := e.findBooster(b, e.opts.NearKinds)
	if err != nil {
		return nil, 0, err
	}
	if t.nodes[idx].depth > e.opts.NearHorizon {
		return nil, 0, errUnreachable
	}
	return t, idx, nil
}

func (e *Engine) hasAny(kinds []arena.BoosterKind) bool {
	for _, kind := range e.pool {
		if slices.Contains(kinds, kind) {
			return true
		}
	}
	return false
}

// claim removes a booster from the pool. A cell can be claimed only once.
func (e *Engine) claim(p geom.Pos) (arena.BoosterKind, error) {
	kind, ok := e.pool[p]
	if !ok {
		return 0, ErrBoosterUnavailable
	}
	delete(e.pool, p)
	return kind, nil
}

// rebalance moves clone-related orders to idle bots that are closer to the
// target. Distances ignore walls.
func (e *Engine) rebalance() {
	for a := range e.bots {
		for b := range e.bots {
			e.swapOrder(a, b)
		}
	}
}

func (e *Engine) swapOrder(a, b int) {
	from, to := e.bots[a], e.bots[b]
	if !to.Order.Idle() {
		return
	}
	switch from.Order.Kind {
	case bot.MoveToMysteryTarget, bot.MoveToClonePickup:
	default:
		return
	}
	target := from.Order.Target
	if distance(from.Pose.Pos, target) > distance(to.Pose.Pos, target) {
		to.Order = from.Order
		from.Order = bot.NoOrder
		if e.opts.Verbose {
			log.Printf("[Solver] order %s handed from bot %d to bot %d", to.Order, a, b)
		}
	}
}

func (e *Engine) stuck(i int, reason string) error {
	b := e.bots[i]
	return &StuckError{
		ArenaID: e.grid.ID,
		Bot:     i,
		Pos:     b.Pose.Pos,
		Turn:    len(b.Log),
		Reason:  reason,
	}
}

// logEvent logs a structured event in JSON format.
func (e *Engine) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "solver"
	data["event_type"] = eventType

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Solver] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
