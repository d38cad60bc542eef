package commands

import (
	"github.com/hayatoito/icfp2019/internal/printer"
	"github.com/spf13/cobra"
)

var updateBestCmd = &cobra.Command{
	Use:   "update-best",
	Short: "Promote submitted solutions that beat the best set",
	Long: `Copy submit/prob-NNN.sol over best/prob-NNN.sol for every problem in the
configured range where no best exists yet or the submission scores lower.
Ties keep the existing best.`,
	RunE: runUpdateBest,
}

func init() {
	rootCmd.AddCommand(updateBestCmd)
}

func runUpdateBest(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	updates, err := p.contest.UpdateBest(p.cfg.Contest.FirstProblem, p.cfg.Contest.LastProblem)
	for _, u := range updates {
		if u.Previous == 0 {
			printer.Printf("prob-%03d: %d (new)\n", u.ID, u.Score)
			continue
		}
		printer.Printf("prob-%03d: %d -> %d\n", u.ID, u.Previous, u.Score)
	}
	if err != nil {
		return userError("update-best stopped", err.Error(), nil)
	}

	printer.Success("%d best solutions updated\n", len(updates))
	return nil
}
