package commands

import (
	"fmt"
	"path/filepath"

	"github.com/hayatoito/icfp2019/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new wrappy project",
	Long: `Initialize a new wrappy project with default configuration.

Creates:
  • wrappy.yml - Project configuration file
  • contest/ - problem, solution, lastrun, submit, best and testrun directories

The project is created in the directory of --config (the current directory
by default).

Use --force to overwrite an existing wrappy.yml. Solutions are never removed.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Force reinitialization (overwrites existing wrappy.yml)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := filepath.Dir(configPath)

	// Check for existing files (unless --force)
	if !forceInit {
		if err := scaffold.CheckExisting(dir); err != nil {
			return err
		}
	}

	if err := scaffold.Initialize(dir, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess()

	return nil
}
