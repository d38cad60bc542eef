package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hayatoito/icfp2019/internal/config"
	"github.com/hayatoito/icfp2019/internal/contest"
	"github.com/hayatoito/icfp2019/internal/printer"
	"github.com/hayatoito/icfp2019/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

var (
	verbose    bool
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wrappy",
	Short: "Wrappy - multi-bot arena painter",
	Long: `Wrappy computes action sequences for a team of bots that paint every open
cell of a polygonal arena, picking up boosters and cloning as it goes.

Problems live in a contest directory (see 'wrappy init'). Each run writes
solutions next to them, and 'report' and 'update-best' keep track of the
best known score per problem.`,
	Version: version,
	// Show help instead of silently succeeding without a subcommand
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Structured solver and batch logs are only shown with -v
		if verbose {
			log.SetOutput(os.Stderr)
		} else {
			log.SetOutput(io.Discard)
		}
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()
	if err != nil && !printed(err) {
		fmt.Fprintf(printer.ErrOut, "Error: %v\n", err)
	}
	return err
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show solver and batch logs, including per-round tracing")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to wrappy.yml")
}

// printedError marks errors whose details printer.Error already wrote.
type printedError struct{ err error }

func (e *printedError) Error() string { return e.err.Error() }
func (e *printedError) Unwrap() error { return e.err }

func userError(title, explanation string, suggestions []string) error {
	return &printedError{printer.Error(title, explanation, suggestions)}
}

func printed(err error) bool {
	_, ok := err.(*printedError)
	return ok
}

// project is the loaded configuration with its paths resolved against the
// directory holding the config file.
type project struct {
	cfg        *config.WrappyConfig
	contest    *contest.Contest
	journalDir string
}

func loadProject() (*project, error) {
	cfg, found, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, userError(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Fix %s, or recreate it with: wrappy init --force", configPath)},
		)
	}
	if !found {
		printer.Warning("No %s found, using default settings\n", configPath)
	}

	base := filepath.Dir(configPath)
	journalDir := cfg.JournalDir()
	if !filepath.IsAbs(journalDir) {
		journalDir = filepath.Join(base, journalDir)
	}
	return &project{
		cfg:        cfg,
		contest:    contest.New(scaffold.ContestRoot(base, cfg)),
		journalDir: journalDir,
	}, nil
}

// checkID rejects problem ids outside the configured range.
func (p *project) checkID(id int) error {
	first, last := p.cfg.Contest.FirstProblem, p.cfg.Contest.LastProblem
	if id < first || id > last {
		return userError(
			"problem id out of range",
			fmt.Sprintf("Problem %d is outside the configured range %d-%d.", id, first, last),
			[]string{"Pass --id with a problem in range, or widen contest.first_problem/last_problem"},
		)
	}
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
