// Package batch solves many arenas of a contest in parallel. Each arena is
// independent, so a fixed pool of workers pulls problem ids from a channel,
// writes the solution into the contest tree and records the outcome in the
// run's journal.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hayatoito/icfp2019/internal/arena"
	"github.com/hayatoito/icfp2019/internal/contest"
	"github.com/hayatoito/icfp2019/internal/journal"
	"github.com/hayatoito/icfp2019/internal/solver"
)

// Result is the outcome of one problem in a run.
type Result struct {
	ID       int
	Solution *solver.Solution // nil when Err is set
	Best     int              // best score before this run, 0 when none
	Marker   string           // "New!", "=" or ""
	Path     string           // file written for a test run
	Duration time.Duration
	Err      error
}

// Bots is the team size of the solution, 0 for a failed solve.
func (r Result) Bots() int {
	if r.Solution == nil {
		return 0
	}
	return strings.Count(r.Solution.Solution, "#") + 1
}

// Runner drives solves against one contest tree.
type Runner struct {
	Contest *contest.Contest
	Options solver.Options
	Workers int // <= 0 means runtime.NumCPU()

	// TestRun writes solutions under testrun/ instead of solution/ and lastrun/.
	TestRun bool

	// Journal, when set, receives one entry per solve.
	Journal *journal.Writer

	RunID string

	solve func(ctx context.Context, task *arena.Task, opts solver.Options) (*solver.Solution, error)
}

// NewRunner returns a runner with a fresh run id.
func NewRunner(c *contest.Contest, opts solver.Options, workers int) *Runner {
	return &Runner{
		Contest: c,
		Options: opts,
		Workers: workers,
		RunID:   uuid.New().String(),
		solve:   solver.Solve,
	}
}

func (r *Runner) workers(jobs int) int {
	n := r.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(1, min(n, jobs))
}

// RunAll solves every id and returns the results ordered by id. Individual
// failures are reported in their Result. When ctx is cancelled no further
// ids are dispatched; the results of the solves already started are returned
// together with the context error.
func (r *Runner) RunAll(ctx context.Context, ids []int) ([]Result, error) {
	ids = append([]int(nil), ids...)
	sort.Ints(ids)

	workers := r.workers(len(ids))
	log.Printf("[Batch] Run %s: solving %d problems with %d workers", r.RunID, len(ids), workers)
	r.logEvent("run_started", map[string]interface{}{
		"run_id":   r.RunID,
		"problems": len(ids),
		"workers":  workers,
	})

	jobs := make(chan int)
	results := make([]Result, len(ids))
	done := make([]bool, len(ids))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.Solve(ctx, ids[idx])
				done[idx] = true
			}
		}()
	}

	var cancelled error
dispatch:
	for idx := range ids {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	finished := make([]Result, 0, len(ids))
	failed := 0
	for idx, res := range results {
		if !done[idx] {
			continue
		}
		if res.Err != nil {
			failed++
		}
		finished = append(finished, res)
	}

	r.logEvent("run_completed", map[string]interface{}{
		"run_id":   r.RunID,
		"solved":   len(finished) - failed,
		"failed":   failed,
		"skipped":  len(ids) - len(finished),
		"canceled": cancelled != nil,
	})

	if cancelled != nil {
		return finished, fmt.Errorf("run %s interrupted after %d of %d problems: %w", r.RunID, len(finished), len(ids), cancelled)
	}
	return finished, nil
}

// Solve runs one problem end to end. A panic inside the solver is turned
// into a failed result so the rest of the batch carries on.
func (r *Runner) Solve(ctx context.Context, id int) (res Result) {
	res.ID = id
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			res.Solution = nil
			res.Err = fmt.Errorf("solver panicked on arena %d: %v", id, p)
		}
		res.Duration = time.Since(start)
		r.record(res)
	}()

	task, err := r.Contest.ReadTask(id)
	if err != nil {
		res.Err = err
		return res
	}

	solve := r.solve
	if solve == nil {
		solve = solver.Solve
	}
	sol, err := solve(ctx, task, r.Options)
	if err != nil {
		res.Err = err
		return res
	}

	best, bestErr := r.Contest.BestScore(id)
	if bestErr != nil && !errors.Is(bestErr, contest.ErrNoBest) {
		res.Err = bestErr
		return res
	}

	if r.TestRun {
		path, err := r.Contest.WriteTestRun(sol)
		if err != nil {
			res.Err = err
			return res
		}
		res.Path = path
	} else if err := r.Contest.WriteSolution(sol); err != nil {
		res.Err = err
		return res
	}

	res.Solution = sol
	res.Best = best
	res.Marker = contest.Compare(sol.Score, best, bestErr)
	return res
}

// record logs the outcome and appends it to the journal.
func (r *Runner) record(res Result) {
	entry := journal.Entry{
		RunID:      r.RunID,
		ProblemID:  res.ID,
		Best:       res.Best,
		Marker:     res.Marker,
		Bots:       res.Bots(),
		DurationMS: res.Duration.Milliseconds(),
		At:         time.Now().UTC(),
	}

	if res.Err != nil {
		entry.Error = res.Err.Error()
		log.Printf("[Batch] Problem %d failed: %v", res.ID, res.Err)
		r.logEvent("solve_failed", map[string]interface{}{
			"run_id":     r.RunID,
			"problem_id": res.ID,
			"error":      res.Err.Error(),
		})
	} else {
		entry.Score = res.Solution.Score
		r.logEvent("solve_finished", map[string]interface{}{
			"run_id":      r.RunID,
			"problem_id":  res.ID,
			"score":       res.Solution.Score,
			"marker":      res.Marker,
			"duration_ms": entry.DurationMS,
		})
	}

	if r.Journal == nil {
		return
	}
	if err := r.Journal.Write(entry); err != nil {
		log.Printf("[Batch] Failed to journal problem %d: %v", res.ID, err)
	}
}

// logEvent logs a structured event in JSON format.
func (r *Runner) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "batch"
	data["event_type"] = eventType

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Batch] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
