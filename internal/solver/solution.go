package solver

import (
	"context"
	"fmt"
	"strings"

	"github.com/hayatoito/icfp2019/internal/arena"
)

// Solution is the outcome of one solve.
type Solution struct {
	ID       int    `json:"id"`
	Score    int    `json:"score"`
	Solution string `json:"solution"`
	Filename string `json:"filename"`
}

// Filename formats the name under which a solution is archived.
func Filename(id, score int, label string) string {
	return fmt.Sprintf("prob-%03d-score-%08d-%s.sol", id, score, label)
}

// Record joins every bot's log with '#', in bot order.
func (e *Engine) Record() string {
	logs := make([]string, len(e.bots))
	for i, b := range e.bots {
		logs[i] = b.Record()
	}
	return strings.Join(logs, "#")
}

// Score is the number of turns taken, which is the longest bot log.
func (e *Engine) Score() int {
	score := 0
	for _, b := range e.bots {
		score = max(score, len(b.Log))
	}
	return score
}

// Solution snapshots the current logs.
func (e *Engine) Solution() *Solution {
	score := e.Score()
	return &Solution{
		ID:       e.grid.ID,
		Score:    score,
		Solution: e.Record(),
		Filename: Filename(e.grid.ID, score, e.opts.Label),
	}
}

// Solve rasterizes a task and paints it.
func Solve(ctx context.Context, task *arena.Task, opts Options) (*Solution, error) {
	m, err := arena.New(task)
	if err != nil {
		return nil, fmt.Errorf("failed to build arena %d: %w", task.ID, err)
	}

	e := New(m, opts)
	if err := e.Solve(ctx); err != nil {
		return nil, err
	}
	return e.Solution(), nil
}
