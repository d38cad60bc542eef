package contest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ReportRow is one line of a score report.
type ReportRow struct {
	Kind   string `json:"kind"`
	ID     int    `json:"id"`
	Score  int    `json:"score"`
	Best   int    `json:"best"` // 0 when no best exists
	Marker string `json:"marker,omitempty"`
}

// Report scores the per-problem solutions of each kind in [first,last]
// against the best set. Markers are "(New!)" for an improvement and "(*)"
// for a tie.
func (c *Contest) Report(kinds []string, first, last int) ([]ReportRow, error) {
	var rows []ReportRow
	for _, kind := range kinds {
		for id := first; id <= last; id++ {
			sol, err := ReadSolution(id, c.SolutionPath(kind, id))
			if err != nil {
				return nil, err
			}

			row := ReportRow{Kind: kind, ID: id, Score: sol.Score}
			best, err := c.BestScore(id)
			if err == nil {
				row.Best = best
				switch {
				case sol.Score < best:
					row.Marker = "(New!)"
				case sol.Score == best:
					row.Marker = "(*)"
				}
			} else if !errors.Is(err, ErrNoBest) {
				return nil, err
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// FormatReport writes rows grouped by kind as aligned tables. marker renders
// the marker column so callers can color it.
func FormatReport(w io.Writer, rows []ReportRow, marker func(string) string) {
	if len(rows) == 0 {
		fmt.Fprintf(w, "No solutions found\n")
		return
	}
	if marker == nil {
		marker = func(s string) string { return s }
	}

	kind := ""
	for _, r := range rows {
		if r.Kind != kind {
			if kind != "" {
				fmt.Fprintln(w)
			}
			kind = r.Kind
			fmt.Fprintf(w, "%s:\n", kind)
			fmt.Fprintf(w, "%-5s %-8s %-8s %s\n", "ID", "SCORE", "BEST", "")
			fmt.Fprintf(w, "%-5s %-8s %-8s %s\n", "-----", "--------", "--------", "------")
		}
		fmt.Fprintf(w, "%03d   %-8d %-8d %s\n", r.ID, r.Score, r.Best, marker(r.Marker))
	}
}

// FormatReportJSONL writes one JSON object per row.
func FormatReportJSONL(w io.Writer, rows []ReportRow) error {
	for _, r := range rows {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal report row to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}
