// Package contest manages the on-disk contest tree: problem descriptions,
// solutions from each run, the submitted set and the best known set.
//
// Layout under the root directory:
//
//	problem/prob-NNN.desc     arena descriptions
//	solution/<filename>       every solution ever produced, score in the name
//	lastrun/prob-NNN.sol      the most recent solution per problem
//	submit/prob-NNN.sol       the set chosen for submission
//	best/prob-NNN.sol         the best solution seen per problem
//	testrun/<filename>        experimental solutions
package contest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hayatoito/icfp2019/internal/arena"
	"github.com/hayatoito/icfp2019/internal/solver"
)

// Subdirectories of the contest root.
const (
	ProblemDir  = "problem"
	SolutionDir = "solution"
	LastRunDir  = "lastrun"
	SubmitDir   = "submit"
	BestDir     = "best"
	TestRunDir  = "testrun"
)

// Dirs lists every subdirectory Init creates.
var Dirs = []string{ProblemDir, SolutionDir, LastRunDir, SubmitDir, BestDir, TestRunDir}

// ErrNoBest is returned when a problem has no best solution yet.
var ErrNoBest = errors.New("no best file")

// pointRE matches the coordinate argument of a B(dx,dy) action.
var pointRE = regexp.MustCompile(`\(-?\d+,-?\d+\)`)

// Contest is a contest tree rooted at Root.
type Contest struct {
	Root string
}

// New returns the contest rooted at root. Nothing is touched on disk.
func New(root string) *Contest {
	return &Contest{Root: root}
}

// Init creates the directory tree.
func (c *Contest) Init() error {
	for _, d := range Dirs {
		if err := os.MkdirAll(filepath.Join(c.Root, d), 0o755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", d, err)
		}
	}
	return nil
}

// ProblemPath is the description file of problem id.
func (c *Contest) ProblemPath(id int) string {
	return filepath.Join(c.Root, ProblemDir, fmt.Sprintf("prob-%03d.desc", id))
}

// SolutionPath is the per-problem solution file in one of lastrun, submit or
// best.
func (c *Contest) SolutionPath(kind string, id int) string {
	return filepath.Join(c.Root, kind, fmt.Sprintf("prob-%03d.sol", id))
}

// ReadTask loads and parses problem id.
func (c *Contest) ReadTask(id int) (*arena.Task, error) {
	return arena.ReadFile(id, c.ProblemPath(id))
}

// WriteSolution archives sol under solution/ and makes it the last run.
func (c *Contest) WriteSolution(sol *solver.Solution) error {
	if err := writeFile(filepath.Join(c.Root, SolutionDir, sol.Filename), sol.Solution); err != nil {
		return err
	}
	return writeFile(c.SolutionPath(LastRunDir, sol.ID), sol.Solution)
}

// WriteTestRun stores sol under testrun/ and returns the path written.
func (c *Contest) WriteTestRun(sol *solver.Solution) (string, error) {
	path := filepath.Join(c.Root, TestRunDir, sol.Filename)
	return path, writeFile(path, sol.Solution)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write solution: %w", err)
	}
	return nil
}

// Score counts the turns of a solution text: the longest bot log, where each
// B(dx,dy) counts as one action.
func Score(solution string) int {
	stripped := pointRE.ReplaceAllString(strings.TrimSpace(solution), "")
	score := 0
	for _, log := range strings.Split(stripped, "#") {
		score = max(score, len(log))
	}
	return score
}

// ReadSolution loads a solution file. Filename is set to path.
func ReadSolution(id int, path string) (*solver.Solution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read solution %d: %w", id, err)
	}
	text := strings.TrimSpace(string(data))
	return &solver.Solution{
		ID:       id,
		Score:    Score(text),
		Solution: text,
		Filename: path,
	}, nil
}

// BestScore returns the score of best/prob-NNN.sol, or ErrNoBest.
func (c *Contest) BestScore(id int) (int, error) {
	path := c.SolutionPath(BestDir, id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, ErrNoBest
	}
	sol, err := ReadSolution(id, path)
	if err != nil {
		return 0, err
	}
	return sol.Score, nil
}

// Update describes one best file replaced by UpdateBest. Previous is 0 when
// there was no best before.
type Update struct {
	ID       int
	Score    int
	Previous int
}

// UpdateBest copies each submitted solution in [first,last] over the best one
// when there is no best yet or the submission is strictly shorter.
func (c *Contest) UpdateBest(first, last int) ([]Update, error) {
	var updates []Update
	for id := first; id <= last; id++ {
		submit, err := ReadSolution(id, c.SolutionPath(SubmitDir, id))
		if err != nil {
			return updates, err
		}

		best, err := c.BestScore(id)
		switch {
		case errors.Is(err, ErrNoBest):
			best = 0
		case err != nil:
			return updates, err
		case submit.Score >= best:
			continue
		}

		if err := writeFile(c.SolutionPath(BestDir, id), submit.Solution); err != nil {
			return updates, err
		}
		updates = append(updates, Update{ID: id, Score: submit.Score, Previous: best})
	}
	return updates, nil
}

// Compare returns the run summary marker for a fresh score against the best
// lookup result: "New!" for an improvement, "=" for a tie, "" otherwise or
// when there is no best.
func Compare(score, best int, bestErr error) string {
	if bestErr != nil {
		return ""
	}
	switch {
	case score < best:
		return "New!"
	case score == best:
		return "="
	}
	return ""
}
