package solver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hayatoito/icfp2019/internal/arena"
	"github.com/hayatoito/icfp2019/internal/bot"
	"github.com/hayatoito/icfp2019/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEngine(t testing.TB, desc string) *Engine {
	t.Helper()
	task, err := arena.Parse(1, desc)
	require.NoError(t, err)
	m, err := arena.New(task)
	require.NoError(t, err)
	return New(m, DefaultOptions())
}

func TestSolve_Square(t *testing.T) {
	e := mustEngine(t, "(0,0),(4,0),(4,4),(0,4)#(0,0)##")

	require.NoError(t, e.Solve(context.Background()))

	assert.Equal(t, 0, e.Map().OpenCount)
	assert.Equal(t, 0, e.Map().CountOpen())
	require.Len(t, e.Bots(), 1)

	sol := e.Solution()
	assert.Equal(t, 1, sol.ID)
	assert.Equal(t, len(e.Bots()[0].Log), sol.Score)
	assert.Equal(t, e.Bots()[0].Record(), sol.Solution)
	assert.Equal(t, Filename(1, sol.Score, "ai-drill"), sol.Filename)
	assert.NotContains(t, sol.Solution, "#")
}

func TestSolve_ManipulatorPickup(t *testing.T) {
	e := mustEngine(t, "(0,0),(6,0),(6,1),(0,1)#(0,0)##B(3,0)")

	require.NoError(t, e.Solve(context.Background()))

	sol := e.Solution()
	assert.Equal(t, "DDDB(1,2)D", sol.Solution)
	assert.Equal(t, 5, sol.Score)
	assert.Equal(t, "prob-001-score-00000005-ai-drill.sol", sol.Filename)
	assert.Len(t, e.Bots()[0].Manipulators, 5)
	assert.Empty(t, e.pool)
}

func TestSolve_CloneGrowsTeam(t *testing.T) {
	e := mustEngine(t, "(0,0),(8,0),(8,1),(0,1)#(0,0)##C(2,0);X(4,0)")

	require.NoError(t, e.Solve(context.Background()))

	require.Len(t, e.Bots(), 2)
	assert.Equal(t, "DDDDCDD#D", e.Record())
	assert.Equal(t, 7, e.Score())

	clone := e.Bots()[1]
	assert.Len(t, clone.Manipulators, 4)
	assert.Zero(t, clone.SpeedTimer)
	assert.Zero(t, clone.DrillTimer)
	assert.True(t, clone.Order.Idle())
	assert.True(t, e.mystery.Has(geom.Pos{X: 4, Y: 0}), "mystery cells are never consumed")
}

func TestSolve_BoostedMoveReachesClonePickup(t *testing.T) {
	// The speed boost carries the bot onto C(8,0) on the first half of a
	// move; the second half must leave the clone order waiting for a target.
	e := mustEngine(t, "(0,0),(9,0),(9,3),(0,3)#(0,0)##F(1,0);C(8,0);X(4,2)")

	require.NoError(t, e.Solve(context.Background()))
	assert.Len(t, e.Bots(), 2)
	assert.Equal(t, 0, e.Map().OpenCount)
}

// playRound runs one round of the turn loop the way Solve does, calling
// after once per turn.
func playRound(e *Engine, after func(i int)) error {
	e.rebalance()
	n := len(e.bots)
	for i := 0; i < n; i++ {
		if e.grid.OpenCount == 0 {
			break
		}
		if err := e.turn(i); err != nil {
			return err
		}
		after(i)
	}
	return nil
}

func TestTurn_OpenCountTracksGrid(t *testing.T) {
	task, err := arena.Parse(1, "(0,0),(10,0),(10,8),(0,8)#(0,0)#"+
		"(3,2),(5,2),(5,6),(3,6);(7,0),(8,0),(8,5),(7,5)#"+
		"F(1,1);L(2,0);C(6,7);X(9,7);B(9,0)")
	require.NoError(t, err)
	m, err := arena.New(task)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.NearKinds = []arena.BoosterKind{arena.SpeedBoost, arena.Drill}
	e := New(m, opts)

	require.Equal(t, e.Map().CountOpen(), e.Map().OpenCount)
	e.bots[0].MarkAll(e.grid)
	last := e.Map().OpenCount
	require.Equal(t, e.Map().CountOpen(), last)

	sawSpeed, sawDrill := false, false
	for round := 0; e.grid.OpenCount > 0; round++ {
		require.Less(t, round, 1000, "solve did not converge")
		err := playRound(e, func(i int) {
			open := e.Map().OpenCount
			require.Equal(t, e.Map().CountOpen(), open, "round %d bot %d", round, i)
			require.LessOrEqual(t, open, last, "round %d bot %d", round, i)
			last = open
			sawSpeed = sawSpeed || e.bots[i].SpeedTimer > 0
			sawDrill = sawDrill || e.bots[i].DrillTimer > 0
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 0, e.Map().OpenCount)
	assert.Equal(t, 0, e.Map().CountOpen())
	assert.True(t, sawSpeed, "speed boost was never attached")
	assert.True(t, sawDrill, "drill was never attached")
	assert.Len(t, e.Bots(), 2)
}

func TestTurn_CloneStartsFresh(t *testing.T) {
	e := mustEngine(t, "(0,0),(8,0),(8,1),(0,1)#(0,0)##C(2,0);X(4,0)")
	e.bots[0].MarkAll(e.grid)

	for len(e.bots) == 1 {
		require.Less(t, len(e.bots[0].Log), 20, "clone never happened")
		require.NoError(t, e.turn(0))
	}

	parent, clone := e.bots[0], e.bots[1]
	assert.Equal(t, "DDDDC", parent.Record())
	assert.Empty(t, clone.Log)
	assert.Len(t, clone.Manipulators, 4)
	assert.Zero(t, clone.SpeedTimer)
	assert.Zero(t, clone.DrillTimer)
	assert.True(t, clone.Order.Idle())
	assert.Equal(t, parent.Pose.Pos, clone.Pose.Pos)
}

func TestSolve_EnclosedCellIsStuck(t *testing.T) {
	// A ring of walls around (2,2) in a 5x5 room.
	e := mustEngine(t, "(0,0),(5,0),(5,5),(0,5)#(0,0)#"+
		"(1,1),(4,1),(4,2),(1,2);(1,3),(4,3),(4,4),(1,4);(1,2),(2,2),(2,3),(1,3);(3,2),(4,2),(4,3),(3,3)#")
	require.Equal(t, 17, e.Map().OpenCount)

	err := e.Solve(context.Background())
	require.Error(t, err)
	assert.True(t, IsStuck(err))
	assert.Equal(t, 1, e.Map().OpenCount)
	assert.True(t, e.Map().IsOpen(geom.Pos{X: 2, Y: 2}))
}

func TestSolve_Cancelled(t *testing.T) {
	e := mustEngine(t, "(0,0),(4,0),(4,4),(0,4)#(0,0)##")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Solve(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNew_PoolExcludesMystery(t *testing.T) {
	e := mustEngine(t, "(0,0),(4,0),(4,4),(0,4)#(0,0)##B(1,1);X(2,2);F(3,3);R(0,3)")

	assert.Equal(t, map[geom.Pos]arena.BoosterKind{
		{X: 1, Y: 1}: arena.ManipulatorExtension,
		{X: 3, Y: 3}: arena.SpeedBoost,
		{X: 0, Y: 3}: arena.Teleport,
	}, e.pool)
	assert.Equal(t, 1, e.mystery.Size())
}

func TestClaim_Twice(t *testing.T) {
	e := mustEngine(t, "(0,0),(4,0),(4,4),(0,4)#(0,0)##B(1,1)")
	pos := geom.Pos{X: 1, Y: 1}

	kind, err := e.claim(pos)
	require.NoError(t, err)
	assert.Equal(t, arena.ManipulatorExtension, kind)

	_, err = e.claim(pos)
	assert.ErrorIs(t, err, ErrBoosterUnavailable)

	_, _, err = e.findBooster(e.bots[0], []arena.BoosterKind{arena.ManipulatorExtension})
	assert.ErrorIs(t, err, ErrBoosterUnavailable)
}

func TestFindBoosterNear_Horizon(t *testing.T) {
	e := mustEngine(t, "(0,0),(9,0),(9,1),(0,1)#(0,0)##F(7,0)")
	b := e.bots[0]

	_, _, err := e.findBoosterNear(b)
	assert.Error(t, err, "seven steps is beyond the horizon")

	tr, idx, err := e.findBooster(b, e.opts.NearKinds)
	require.NoError(t, err)
	assert.Equal(t, 7, tr.nodes[idx].depth)
	assert.Equal(t, bot.Right, tr.firstAction(idx))

	e.opts.NearHorizon = 7
	_, _, err = e.findBoosterNear(b)
	assert.NoError(t, err)
}

func TestFindMoveTo_SpeedCoversTwoCells(t *testing.T) {
	e := mustEngine(t, "(0,0),(9,0),(9,1),(0,1)#(0,0)##")
	b := e.bots[0]
	b.SpeedTimer = 2

	goal := geom.Pos{X: 5, Y: 0}
	tr, idx, err := e.findMoveTo(b, func(p geom.Pos) bool { return p == goal })
	require.NoError(t, err)
	// Two boosted steps reach (4,0), then one plain step.
	assert.Equal(t, 3, tr.nodes[idx].depth)
}

func TestFindMarkMove_PrefersMoreArms(t *testing.T) {
	e := mustEngine(t, "(0,0),(4,0),(4,4),(0,4)#(0,0)##")
	b := e.bots[0]
	b.MarkAll(e.grid)

	tr, idx, err := e.findMarkMove(b)
	require.NoError(t, err)
	best := tr.nodes[idx]
	assert.Equal(t, 1, best.depth)
	assert.Equal(t, 2, best.marks)
	assert.Equal(t, bot.Up, tr.firstAction(idx))
}

// Rebalancing compares distances on an empty plane, so a bot behind a wall
// can win a handoff even when its real path is longer. This is a known
// approximation of the policy.
func TestRebalance_DistanceIgnoresWalls(t *testing.T) {
	e := mustEngine(t, "(0,0),(5,0),(5,5),(0,5)#(0,0)#(2,0),(3,0),(3,4),(2,4)#")
	target := geom.Pos{X: 4, Y: 0}

	far := bot.New(geom.Pos{X: 4, Y: 4})
	far.Order = bot.MoveTo(bot.MoveToClonePickup, target)
	behindWall := bot.New(geom.Pos{X: 1, Y: 0})
	e.bots = []*bot.Bot{far, behindWall}

	e.rebalance()

	assert.True(t, far.Order.Idle())
	assert.Equal(t, bot.MoveTo(bot.MoveToClonePickup, target), behindWall.Order)
}

func TestRebalance_KeepsOrderWhenHolderIsCloser(t *testing.T) {
	e := mustEngine(t, "(0,0),(6,0),(6,6),(0,6)#(0,0)##")
	target := geom.Pos{X: 1, Y: 1}

	holder := bot.New(geom.Pos{X: 0, Y: 0})
	holder.Order = bot.MoveTo(bot.MoveToMysteryTarget, target)
	idle := bot.New(geom.Pos{X: 5, Y: 5})
	busy := bot.New(geom.Pos{X: 1, Y: 0})
	busy.Order = bot.MoveTo(bot.MoveToSpeedPickup, geom.Pos{X: 3, Y: 3})
	e.bots = []*bot.Bot{holder, idle, busy}

	e.rebalance()

	assert.Equal(t, bot.MoveToMysteryTarget, holder.Order.Kind)
	assert.True(t, idle.Order.Idle())
	assert.Equal(t, bot.MoveToSpeedPickup, busy.Order.Kind, "only clone orders are handed over")
}

func TestTurn_UnreachableOrderIsStuck(t *testing.T) {
	e := mustEngine(t, "(0,0),(4,0),(4,4),(0,4)#(0,0)#(2,2),(3,2),(3,3),(2,3)#")
	e.bots[0].Order = bot.MoveTo(bot.MoveToManipulatorPickup, geom.Pos{X: 2, Y: 2})

	err := e.turn(0)
	require.Error(t, err)
	assert.True(t, IsStuck(err))

	var stuck *StuckError
	require.True(t, errors.As(err, &stuck))
	assert.Equal(t, 0, stuck.Bot)
	assert.Contains(t, stuck.Error(), "cannot reach order target (2,2)")
}

func TestTurn_TimersTickOnlyWhenRunning(t *testing.T) {
	e := mustEngine(t, "(0,0),(8,0),(8,8),(0,8)#(0,0)##")
	b := e.bots[0]
	b.Order = bot.Order{Kind: bot.PerformSpeedBoost}

	require.NoError(t, e.turn(0))
	assert.Equal(t, bot.SpeedBoostTicks, b.SpeedTimer, "a boost attached this turn does not tick yet")

	require.NoError(t, e.turn(0))
	assert.Equal(t, bot.SpeedBoostTicks-1, b.SpeedTimer)
}

func TestSolve_Arena21(t *testing.T) {
	path := filepath.Join("testdata", "prob-021.desc")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("contest arena not available: %v", err)
	}

	task, err := arena.ReadFile(21, path)
	require.NoError(t, err)

	sol, err := Solve(context.Background(), task, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1313, sol.Score)
	assert.Equal(t, expectedArena21, sol.Solution)
}

func BenchmarkSolve(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("(0,0),(40,0),(40,40),(0,40)#(0,0)#")
	sb.WriteString("(5,5),(15,5),(15,15),(5,15);(20,20),(30,20),(30,35),(20,35)")
	sb.WriteString("#B(2,30);F(35,2);C(10,30);X(38,38)")
	task, err := arena.Parse(1, sb.String())
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Solve(context.Background(), task, DefaultOptions()); err != nil {
			b.Fatal(err)
		}
	}
}

const expectedArena21 = "DDDDDDDDDWWWWDDWWWWDDDDDDWWWWDDDDDDDDDWDDB(1,2)WWWWWAB(1,-2)AWWQWWWWWWWWWAWWWWWWSSAQAAAAAWAEWSSAAAQDDDDDSQDWDDDDSSSSAASSSSSSSSSSSSAAEAASQDDWDDWWWAAEWAAAAAAAAAAAAAAAWDDWEWSSSEWDDDWWDWAWWQWWWASQAASQDDDDDDDDDDDAAAESAAASSSSSDDDDWEWASSSSQSSSQSWWQWWWAAAAASSSSESSWWWWWWDDDDDDDDDDWWEWWWWDDDDDDEDEDSSSSSDDDDDDDDDDDDDDDDDDAAAWAWQWWWWWWAAQAAAASSQSSDWWAWASAAADDDSSSSSSSSSSSSSSSSSSSSSSDDFSSSSSAEWWAAWDWDDDDDDDWASSAAWWWDDAAAAAAWADWDDDDWEAAWWWWWDDDDDEDDDAAAAAAAAWWAAAAAAAQAAAASQSSSQDSSSSSSSSSSSSAFSSSAEAASWWADFDWDWWAAAWEDDWAAAAWDDWSAAASZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZWSQWDDSDSSAAASAAAAAAAAAAADDWDWWEWWWAQAWWWWEWWAWWWWWWWWWWWWWWWWAWWWWWQQSDDDDDDDWDDDQDDDDDDDDDDDDDDSDDDDDDDDDDDDDDDDDDWDDSSESWWWAAEAWWWSSAASSSQSSAWWWAWEAWWWSSAAAASSAAASQSDDSQDWDAAAASEASSWWAEWWWAAAAAAWWEWSSSSQSSWWWWAAAASAAASASQSAAAAAASEAWDDDDDDDWWAAWAWDDSAAAAAAAASAAAASSSASSSSSSSSSSSSDSSDSSASSDQDSDDQDAAASSSDDSSDDDDAAAASAAADDDSSSSDDDDDDSSSSESSSSSWWWEWDDDDAAAWAAAAADSSAASQSAAWWAASSWWDWWWSSSAAAWWWSSSDDDDDDDDWWDDDDWWWWDDDDWWWWDDDDDDDDDDDDSSSSDDAASSSSSSSSSAAAAAAAAAEWAAASQDWDDDDDDDDDDDWWWWWWWWWWWWWWWWDQDWWWSSSAAWWWWWWWWWWWWDWWWAAAWWWSSSSSSSSSSDDDDDDDDDWWWWWWWWWDDWWSSSDDDDDDDSASSSSSSSSSAAAAAASSSSSSSSSSSSSSSSSSSSSDDDDDDDDDSASSSWWWAAAASSSWWWAAAAAAESAASAAADDDWWWWWWWWWWWWWWWWWWWWWWWWAAAAAAAASSSSSSSSAAAAAAAAASSSSAAAAAAAAAAAWWWWWAAWWWWAWWWWWWWWWWWWWWWWW"
