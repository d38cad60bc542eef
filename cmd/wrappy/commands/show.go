package commands

import (
	"github.com/hayatoito/icfp2019/internal/arena"
	"github.com/hayatoito/icfp2019/internal/printer"
	"github.com/spf13/cobra"
)

var showID int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a problem's rasterized arena",
	Long: `Rasterize a problem and print it with the highest row first.

Legend:
  #  wall        .  open cell     O  start
  B  manipulator extension        F  fast wheels
  L  drill       X  mystery point R  teleport    C  clone`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().IntVar(&showID, "id", 0, "Problem id")
	_ = showCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	task, err := p.contest.ReadTask(showID)
	if err != nil {
		return userError("cannot read problem", err.Error(), nil)
	}
	m, err := arena.New(task)
	if err != nil {
		return userError("cannot rasterize problem", err.Error(), nil)
	}

	printer.Info("prob-%03d: %dx%d, %d open cells, %d boosters\n\n", m.ID, m.MaxX, m.MaxY, m.OpenCount, len(m.Boosters))
	printer.Println(m.Dump())
	return nil
}
