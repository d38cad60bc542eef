package commands

import (
	"fmt"
	"time"

	"github.com/hayatoito/icfp2019/internal/batch"
	"github.com/hayatoito/icfp2019/internal/journal"
	"github.com/hayatoito/icfp2019/internal/printer"
	"github.com/hayatoito/icfp2019/internal/solver"
	"github.com/spf13/cobra"
)

var (
	runID     int
	testRunID int
	runFirst  int
	runLast   int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve one problem",
	Long: `Solve one problem and write the result to solution/ and lastrun/.

The score is compared with best/prob-NNN.sol: "New!" marks an improvement
and "=" a tie.`,
	RunE: runRun,
}

var testRunCmd = &cobra.Command{
	Use:   "test-run",
	Short: "Solve one problem into testrun/",
	Long: `Solve one problem like 'run' but write the solution only to testrun/,
leaving lastrun/ untouched. Useful when experimenting with solver settings.`,
	RunE: runTestRun,
}

var runAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "Solve every problem in the configured range",
	Long: `Solve every problem in the configured range in parallel.

Workers default to one per CPU (batch.workers in wrappy.yml). Each solve is
recorded in the run journal; see 'wrappy history'. Ctrl-C stops dispatching
new problems and reports what finished.

Examples:
  wrappy run-all
  wrappy run-all --first 1 --last 50`,
	RunE: runRunAll,
}

func init() {
	runCmd.Flags().IntVar(&runID, "id", 0, "Problem id")
	_ = runCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(runCmd)

	testRunCmd.Flags().IntVar(&testRunID, "id", 0, "Problem id")
	_ = testRunCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(testRunCmd)

	runAllCmd.Flags().IntVar(&runFirst, "first", 0, "First problem id (default: contest.first_problem)")
	runAllCmd.Flags().IntVar(&runLast, "last", 0, "Last problem id (default: contest.last_problem)")
	rootCmd.AddCommand(runAllCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	return solveOne(runID, false)
}

func runTestRun(cmd *cobra.Command, args []string) error {
	return solveOne(testRunID, true)
}

func solveOne(id int, testRun bool) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if err := p.checkID(id); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	r, closeJournal, err := p.newRunner()
	if err != nil {
		return err
	}
	defer closeJournal()
	r.TestRun = testRun

	res := r.Solve(ctx, id)
	if res.Err != nil {
		return solveError(res)
	}

	printResult(res)
	if testRun {
		printer.Info("Wrote %s\n", res.Path)
	}
	return nil
}

func runRunAll(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	first, last := p.cfg.Contest.FirstProblem, p.cfg.Contest.LastProblem
	if runFirst > 0 {
		first = runFirst
	}
	if runLast > 0 {
		last = runLast
	}
	if first > last {
		return userError(
			"invalid problem range",
			fmt.Sprintf("--first %d is after --last %d.", first, last),
			nil,
		)
	}

	ids := make([]int, 0, last-first+1)
	for id := first; id <= last; id++ {
		ids = append(ids, id)
	}

	ctx, cancel := signalContext()
	defer cancel()

	r, closeJournal, err := p.newRunner()
	if err != nil {
		return err
	}
	defer closeJournal()

	printer.Step("Run %s: solving problems %d-%d\n", r.RunID[:8], first, last)
	start := time.Now()
	results, runErr := r.RunAll(ctx, ids)

	failed, improved := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			printer.Warning("prob-%03d: %v\n", res.ID, res.Err)
			continue
		}
		if res.Marker == "New!" {
			improved++
		}
		printResult(res)
	}

	printer.Println()
	summary := fmt.Sprintf("%d solved, %d failed, %d improved in %s",
		len(results)-failed, failed, improved, time.Since(start).Round(time.Millisecond))
	if runErr != nil {
		printer.Warning("Interrupted: %s\n", summary)
		return runErr
	}
	if failed > 0 {
		printer.Warning("%s\n", summary)
		return fmt.Errorf("%d of %d problems failed", failed, len(ids))
	}
	printer.Success("%s\n", summary)
	return nil
}

// newRunner builds a batch runner, opening the run journal when enabled.
// The returned func closes the journal.
func (p *project) newRunner() (*batch.Runner, func(), error) {
	r := batch.NewRunner(p.contest, p.cfg.SolverOptions(verbose), p.cfg.Batch.Workers)
	if !*p.cfg.Journal.Enabled {
		return r, func() {}, nil
	}

	w, err := journal.Open(p.journalDir, r.RunID)
	if err != nil {
		return nil, nil, err
	}
	r.Journal = w
	return r, func() {
		if err := w.Close(); err != nil {
			printer.Warning("Failed to close journal: %v\n", err)
		}
	}, nil
}

func printResult(res batch.Result) {
	best := "-"
	if res.Best > 0 {
		best = fmt.Sprintf("%d", res.Best)
	}
	printer.Printf("prob-%03d: score %-8d best %-8s bots %-3d %s %s\n",
		res.ID, res.Solution.Score, best, res.Bots(),
		res.Duration.Round(time.Millisecond), printer.Marker(res.Marker))
}

func solveError(res batch.Result) error {
	if solver.IsStuck(res.Err) {
		return userError(
			fmt.Sprintf("problem %d could not be finished", res.ID),
			res.Err.Error(),
			[]string{
				"The arena may contain open cells no bot can reach",
				fmt.Sprintf("Inspect it with: wrappy show --id %d", res.ID),
			},
		)
	}
	return userError(fmt.Sprintf("problem %d failed", res.ID), res.Err.Error(), nil)
}
