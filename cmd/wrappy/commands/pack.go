package commands

import (
	"fmt"
	"path/filepath"

	"github.com/hayatoito/icfp2019/internal/contest"
	"github.com/hayatoito/icfp2019/internal/printer"
	"github.com/spf13/cobra"
)

var (
	packKind string
	packOut  string
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Zip a solution set for submission",
	Long: `Zip every prob-NNN.sol of one kind (submit, best or lastrun) in the
configured range into a single archive, files at the archive root.`,
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVar(&packKind, "kind", contest.SubmitDir, "Solution set: submit, best or lastrun")
	packCmd.Flags().StringVar(&packOut, "out", "", "Archive path (default: <contest>/<kind>.zip)")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	switch packKind {
	case contest.SubmitDir, contest.BestDir, contest.LastRunDir:
	default:
		return userError(
			"invalid solution set",
			fmt.Sprintf("Unknown kind: %s", packKind),
			[]string{"Valid kinds: submit, best, lastrun"},
		)
	}

	p, err := loadProject()
	if err != nil {
		return err
	}

	out := packOut
	if out == "" {
		out = filepath.Join(p.contest.Root, packKind+".zip")
	}

	n, err := p.contest.Pack(packKind, p.cfg.Contest.FirstProblem, p.cfg.Contest.LastProblem, out)
	if err != nil {
		return userError("pack failed", err.Error(), nil)
	}
	if n == 0 {
		printer.Warning("No %s solutions found; %s is empty\n", packKind, out)
		return nil
	}

	printer.Success("Packed %d solutions into %s\n", n, out)
	return nil
}
