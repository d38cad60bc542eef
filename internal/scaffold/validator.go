package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hayatoito/icfp2019/internal/config"
)

// CheckExisting returns an error if dir already holds a wrappy.yml.
// An existing contest tree is not a conflict: Initialize only adds to it.
func CheckExisting(dir string) error {
	path := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	return fmt.Errorf("project already initialized\n\nFound existing: %s\n\n"+
		"Use 'wrappy init --force' to reinitialize (this will overwrite %s; solutions are kept)",
		config.DefaultPath, config.DefaultPath)
}
