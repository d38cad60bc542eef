package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hayatoito/icfp2019/internal/config"
	"github.com/hayatoito/icfp2019/internal/contest"
	"github.com/hayatoito/icfp2019/internal/printer"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize creates wrappy.yml and the contest tree under dir.
// If force is true an existing wrappy.yml is replaced. Existing contest
// files are never removed.
func Initialize(dir string, force bool) error {
	if force {
		if err := handleForce(dir); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles(dir)
	if err != nil {
		return err
	}

	if err := writeFiles(files); err != nil {
		return err
	}

	// The tree follows whatever contest.dir the written config names.
	cfg, err := validateCreatedFiles(dir)
	if err != nil {
		return err
	}

	c := contest.New(ContestRoot(dir, cfg))
	if err := c.Init(); err != nil {
		return err
	}

	readme, err := templatesFS.ReadFile("templates/problem-README.md.tmpl")
	if err != nil {
		return fmt.Errorf("failed to read problem README template: %w", err)
	}
	readmePath := filepath.Join(c.Root, contest.ProblemDir, "README.md")
	if _, err := os.Stat(readmePath); os.IsNotExist(err) {
		if err := os.WriteFile(readmePath, readme, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", readmePath, err)
		}
	}

	return nil
}

// ContestRoot resolves contest.dir relative to the project directory.
func ContestRoot(dir string, cfg *config.WrappyConfig) string {
	if filepath.IsAbs(cfg.Contest.Dir) {
		return cfg.Contest.Dir
	}
	return filepath.Join(dir, cfg.Contest.Dir)
}

// handleForce removes an existing wrappy.yml if --force was specified
func handleForce(dir string) error {
	path := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(path); err == nil {
		printer.Warning("Removing existing %s...\n", config.DefaultPath)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", config.DefaultPath, err)
		}
	}
	return nil
}

// getTemplateFiles reads all template files
func getTemplateFiles(dir string) ([]FileInfo, error) {
	wrappyYml, err := templatesFS.ReadFile("templates/wrappy.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read wrappy.yml template: %w", err)
	}

	return []FileInfo{{
		Path:        filepath.Join(dir, config.DefaultPath),
		Content:     wrappyYml,
		Permissions: 0644,
	}}, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.MkdirAll(filepath.Dir(file.Path), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(file.Path), err)
		}
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles loads the written wrappy.yml through the regular
// config path, schema included.
func validateCreatedFiles(dir string) (*config.WrappyConfig, error) {
	cfg, err := config.Load(filepath.Join(dir, config.DefaultPath))
	if err != nil {
		return nil, fmt.Errorf("created %s is invalid: %w", config.DefaultPath, err)
	}
	return cfg, nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	printer.Println()
	printer.Success("Initialized wrappy project\n")
	printer.Println("\nCreated:")
	printer.Println("  ✓ wrappy.yml")
	printer.Println("  ✓ contest/{problem,solution,lastrun,submit,best,testrun}/")
	printer.Println("\nNext steps:")
	printer.Println("  1. Copy the prob-NNN.desc files into contest/problem/")
	printer.Println("  2. Run 'wrappy run-all' to solve every problem")
	printer.Println("  3. Run 'wrappy report' to compare against the best set")
}
