package solver

import (
	"errors"

	"github.com/hayatoito/icfp2019/internal/bot"
	"github.com/hayatoito/icfp2019/internal/geom"
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"
)

var errUnreachable = errors.New("no reachable goal")

// moveActions is the expansion order for goal searches.
var moveActions = [...]bot.Action{bot.Up, bot.Down, bot.Left, bot.Right}

// coverActions is the expansion order for the coverage search, keyed by the
// bot's angle: forward first, then back, then the two sides, then turns.
var coverActions = [4][6]bot.Action{
	geom.A0:   {bot.Up, bot.Down, bot.Right, bot.Left, bot.TurnCW, bot.TurnCCW},
	geom.A90:  {bot.Right, bot.Left, bot.Down, bot.Up, bot.TurnCW, bot.TurnCCW},
	geom.A180: {bot.Down, bot.Up, bot.Left, bot.Right, bot.TurnCW, bot.TurnCCW},
	geom.A270: {bot.Left, bot.Right, bot.Up, bot.Down, bot.TurnCW, bot.TurnCCW},
}

// node is one search state. Nodes live in a flat slice and link to their
// parent by index; the root has prev -1.
type node struct {
	pose   geom.Pose
	prev   int
	action bot.Action
	depth  int
	marks  int
	adj    int
}

type tree struct {
	nodes []node
}

func newTree(root geom.Pose) *tree {
	return &tree{nodes: []node{{pose: root, prev: -1}}}
}

func (t *tree) add(n node) int {
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// firstAction walks back to the root and returns the action taken from it.
func (t *tree) firstAction(i int) bot.Action {
	for t.nodes[i].prev != 0 {
		i = t.nodes[i].prev
	}
	return t.nodes[i].action
}

// expand returns the pose reached by taking a from pose at search depth. A
// bot still holding a drill at that depth may enter walls, and one still
// boosted covers two cells when the second one is enterable.
func (e *Engine) expand(b *bot.Bot, pose geom.Pose, a bot.Action, depth int) (geom.Pose, bool) {
	canDrill := b.DrillTimer > depth
	canSpeed := b.SpeedTimer > depth

	next := bot.Step(pose, a)
	if !e.grid.InRange(next.Pos) {
		return next, false
	}
	if !canDrill && !e.grid.IsFree(next.Pos) {
		return next, false
	}
	if canSpeed && a.IsMove() {
		further := bot.Step(next, a)
		if e.grid.InRange(further.Pos) && (e.grid.IsFree(further.Pos) || canDrill) {
			return further, true
		}
	}
	return next, true
}

// findMoveTo runs a breadth-first search for the nearest cell matching goal.
// The goal is tested on each generated node before the visited check, so the
// start cell itself only matches after leaving and coming back.
func (e *Engine) findMoveTo(b *bot.Bot, goal func(geom.Pos) bool) (*tree, int, error) {
	t := newTree(b.Pose)
	visited := mapset.New[geom.Pose]()
	visited.Put(b.Pose)

	q := queue.New[int]()
	q.Enqueue(0)
	for !q.Empty() {
		cur := q.Dequeue()
		from := t.nodes[cur]
		for _, a := range moveActions {
			pose, ok := e.expand(b, from.pose, a, from.depth)
			if !ok {
				continue
			}
			idx := t.add(node{pose: pose, prev: cur, action: a, depth: from.depth + 1})
			if goal(pose.Pos) {
				return t, idx, nil
			}
			if !visited.Has(pose) {
				visited.Put(pose)
				q.Enqueue(idx)
			}
		}
	}
	return nil, 0, errUnreachable
}

// findMarkMove looks for the shallowest pose from which at least one arm
// paints something. Among candidates at the same depth it prefers more arms
// painting, then more open cells next to the arm tips. Once a candidate is
// known no further nodes are enqueued, but the queue is drained so that
// siblings at the same depth can still compete.
func (e *Engine) findMarkMove(b *bot.Bot) (*tree, int, error) {
	t := newTree(b.Pose)
	visited := mapset.New[geom.Pose]()
	visited.Put(b.Pose)

	best := -1
	q := queue.New[int]()
	q.Enqueue(0)
	for !q.Empty() {
		cur := q.Dequeue()
		from := t.nodes[cur]
		for _, a := range coverActions[from.pose.Angle] {
			pose, ok := e.expand(b, from.pose, a, from.depth)
			if !ok {
				continue
			}
			n := node{pose: pose, prev: cur, action: a, depth: from.depth + 1}
			n.marks = bot.MarkCount(pose, b.Manipulators, e.grid)
			if n.marks > 0 {
				n.adj = bot.AdjacentOpenCount(pose, b.Manipulators, e.grid)
			}
			idx := t.add(n)

			if n.marks > 0 {
				if best < 0 || better(n, t.nodes[best]) {
					best = idx
				}
			}
			if best < 0 && !visited.Has(pose) {
				visited.Put(pose)
				q.Enqueue(idx)
			}
		}
	}
	if best < 0 {
		return nil, 0, errUnreachable
	}
	return t, best, nil
}

func better(n, best node) bool {
	if n.depth != best.depth {
		return false
	}
	return n.marks > best.marks || (n.marks == best.marks && n.adj > best.adj)
}

// distance is the length of a shortest 4-connected path between a and b on
// an unbounded grid with no walls, which is their Manhattan distance.
func distance(a, b geom.Pos) int {
	return geom.Manhattan(a, b)
}
