package contest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// Pack zips the per-problem solutions of kind in [first,last] into out, with
// the files at the archive root as the submission form expects. Missing
// problems are skipped. Returns the number of files packed.
func (c *Contest) Pack(kind string, first, last int, out string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", filepath.Dir(out), err)
	}
	f, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	n := 0
	for id := first; id <= last; id++ {
		path := c.SolutionPath(kind, id)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			_ = zw.Close()
			return n, fmt.Errorf("failed to read solution %d: %w", id, err)
		}

		w, err := zw.Create(filepath.Base(path))
		if err != nil {
			_ = zw.Close()
			return n, fmt.Errorf("failed to add %s: %w", filepath.Base(path), err)
		}
		if _, err := w.Write(data); err != nil {
			_ = zw.Close()
			return n, fmt.Errorf("failed to add %s: %w", filepath.Base(path), err)
		}
		n++
	}

	if err := zw.Close(); err != nil {
		return n, fmt.Errorf("failed to finish archive: %w", err)
	}
	return n, nil
}
