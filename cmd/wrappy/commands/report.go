package commands

import (
	"fmt"

	"github.com/hayatoito/icfp2019/internal/contest"
	"github.com/hayatoito/icfp2019/internal/printer"
	"github.com/spf13/cobra"
)

var reportOutputFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compare lastrun and submit scores with the best set",
	Long: `Print the score of every lastrun/ and submit/ solution next to the best
known score. "(New!)" marks a solution that beats the best, "(*)" one that
ties it.

Output Formats:
  default - Human-readable table per kind
  jsonl   - Line-delimited JSON, one row per solution`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportOutputFormat != "default" && reportOutputFormat != "jsonl" {
		return userError(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", reportOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	p, err := loadProject()
	if err != nil {
		return err
	}

	rows, err := p.contest.Report([]string{contest.LastRunDir, contest.SubmitDir},
		p.cfg.Contest.FirstProblem, p.cfg.Contest.LastProblem)
	if err != nil {
		return userError(
			"report failed",
			err.Error(),
			[]string{"Every problem in the configured range needs a lastrun and a submit solution",
				"Narrow contest.first_problem/last_problem in wrappy.yml"},
		)
	}

	if reportOutputFormat == "jsonl" {
		return contest.FormatReportJSONL(printer.Out, rows)
	}
	contest.FormatReport(printer.Out, rows, printer.Marker)
	return nil
}
