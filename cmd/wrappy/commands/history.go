package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hayatoito/icfp2019/internal/journal"
	"github.com/hayatoito/icfp2019/internal/printer"
	"github.com/hayatoito/icfp2019/internal/resolver"
	"github.com/hayatoito/icfp2019/internal/timespec"
	"github.com/spf13/cobra"
)

var (
	historyOutputFormat string
	historySince        string
	historyUntil        string
)

var historyCmd = &cobra.Command{
	Use:   "history [RUN_ID]",
	Short: "Inspect past runs from the solve journal",
	Long: `Inspect the journal of past runs.

List Mode (no RUN_ID):
  One line per run: start time, problems solved and failed, improvements
  and total score.

Run Mode (with RUN_ID):
  One line per problem of that run. Supports short IDs (e.g. "1f0c7a"
  instead of the full UUID).

Time Filters:
  --since  - Show solves recorded after this time
  --until  - Show solves recorded before this time

Examples:
  wrappy history --since=2d
  wrappy history 1f0c7a
  wrappy history 1f0c7a --output=jsonl | jq 'select(.marker=="New!")'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Show solves after time (duration, Nd or RFC3339)")
	historyCmd.Flags().StringVar(&historyUntil, "until", "", "Show solves before time (duration, Nd or RFC3339)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyOutputFormat != "default" && historyOutputFormat != "jsonl" {
		return userError(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", historyOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	r, err := timespec.ParseRange(historySince, historyUntil, time.Now())
	if err != nil {
		return userError(
			"invalid time filter",
			err.Error(),
			[]string{"Use a duration (90m, 2h), a day count (3d) or RFC3339 (2019-06-21T12:00:00Z)"},
		)
	}

	p, err := loadProject()
	if err != nil {
		return err
	}

	entries, err := journal.ReadAll(p.journalDir)
	if err != nil {
		return userError("cannot read journal", err.Error(), nil)
	}

	runID := ""
	if len(args) > 0 {
		runID, err = journal.ResolveRunID(entries, args[0])
		if err != nil {
			if ambErr, ok := err.(*resolver.AmbiguousError); ok {
				return userError("ambiguous run ID", resolver.FormatAmbiguousError(ambErr), nil)
			}
			return userError(
				"run not found",
				err.Error(),
				[]string{"List runs with: wrappy history"},
			)
		}
	}

	entries = journal.Filter(entries, runID, r)

	if historyOutputFormat == "jsonl" {
		for _, e := range entries {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal journal entry to JSON: %w", err)
			}
			printer.Printf("%s\n", data)
		}
		return nil
	}

	if len(entries) == 0 {
		printer.Println("No runs found")
		return nil
	}

	if runID != "" {
		printEntries(entries)
		return nil
	}
	printSummaries(journal.Summarize(entries))
	return nil
}

func printSummaries(summaries []journal.RunSummary) {
	printer.Printf("%-10s %-20s %-8s %-8s %-8s %s\n", "RUN", "STARTED", "SOLVED", "FAILED", "NEW", "TOTAL")
	for _, s := range summaries {
		printer.Printf("%-10s %-20s %-8d %-8d %-8d %d\n",
			s.RunID[:min(8, len(s.RunID))],
			s.Started.Local().Format("2006-01-02 15:04:05"),
			s.Problems-s.Failed, s.Failed, s.Improved, s.TotalScore)
	}
}

func printEntries(entries []journal.Entry) {
	printer.Printf("%-8s %-8s %-8s %-5s %-10s %s\n", "ID", "SCORE", "BEST", "BOTS", "TIME", "")
	for _, e := range entries {
		if e.Failed() {
			printer.Printf("%03d      %s\n", e.ProblemID, e.Error)
			continue
		}
		best := "-"
		if e.Best > 0 {
			best = fmt.Sprint(e.Best)
		}
		printer.Printf("%03d      %-8d %-8s %-5d %-10s %s\n",
			e.ProblemID, e.Score, best, e.Bots,
			(time.Duration(e.DurationMS) * time.Millisecond).String(),
			printer.Marker(e.Marker))
	}
}
