// Package journal records every solve of a batch run as zstd-compressed JSON
// lines, one file per run, and reads them back for the history command.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hayatoito/icfp2019/internal/resolver"
	"github.com/hayatoito/icfp2019/internal/timespec"
	"github.com/klauspost/compress/zstd"
)

const (
	filePrefix = "run-"
	fileSuffix = ".jsonl.zst"
)

// Entry is the outcome of one solve within a run.
type Entry struct {
	RunID      string    `json:"run_id"`
	ProblemID  int       `json:"problem_id"`
	Score      int       `json:"score,omitempty"`
	Best       int       `json:"best,omitempty"` // 0 when no prior best exists
	Marker     string    `json:"marker,omitempty"`
	Bots       int       `json:"bots,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

// Failed reports whether the solve did not produce a solution.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Path returns the journal file for a run.
func Path(dir, runID string) string {
	return filepath.Join(dir, filePrefix+runID+fileSuffix)
}

// Writer appends entries to one run's journal. It is safe for concurrent use.
type Writer struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Open creates the journal file for runID under dir.
func Open(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	path := Path(dir, runID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create journal encoder: %w", err)
	}
	return &Writer{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// Path is the file being written.
func (w *Writer) Path() string {
	return w.path
}

// Write appends one entry.
func (w *Writer) Write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		return fmt.Errorf("journal %s is closed", filepath.Base(w.path))
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}

// Close flushes and finalizes the compressed stream. Closing twice is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		return nil
	}
	var firstErr error
	if err := w.w.Flush(); err != nil {
		firstErr = err
	}
	if err := w.enc.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	w.w, w.enc, w.f = nil, nil, nil
	if firstErr != nil {
		return fmt.Errorf("failed to close journal: %w", firstErr)
	}
	return nil
}

// ReadFile decodes one journal file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal decoder: %w", err)
	}
	defer dec.Close()

	var entries []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// ReadAll decodes every journal under dir, oldest entry first. A missing
// directory yields no entries.
func ReadAll(dir string) ([]Entry, error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}

	var entries []Entry
	for _, de := range names {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		part, err := ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		entries = append(entries, part...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.Before(entries[j].At)
	})
	return entries, nil
}

// ResolveRunID expands a run-id prefix against the runs present in entries.
func ResolveRunID(entries []Entry, prefix string) (string, error) {
	return resolver.Resolve(prefix, RunIDs(entries))
}

// RunIDs lists the distinct run ids in order of first appearance.
func RunIDs(entries []Entry) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if !seen[e.RunID] {
			seen[e.RunID] = true
			ids = append(ids, e.RunID)
		}
	}
	return ids
}

// Filter keeps entries of runID (all runs when empty) that fall inside r.
func Filter(entries []Entry, runID string, r timespec.Range) []Entry {
	var out []Entry
	for _, e := range entries {
		if runID != "" && e.RunID != runID {
			continue
		}
		if !r.Contains(e.At) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// RunSummary aggregates one run.
type RunSummary struct {
	RunID      string
	Started    time.Time
	Problems   int
	Failed     int
	Improved   int
	TotalScore int
}

// Summarize groups entries by run, in order of first appearance.
func Summarize(entries []Entry) []RunSummary {
	index := make(map[string]int)
	var out []RunSummary
	for _, e := range entries {
		i, ok := index[e.RunID]
		if !ok {
			i = len(out)
			index[e.RunID] = i
			out = append(out, RunSummary{RunID: e.RunID, Started: e.At})
		}
		s := &out[i]
		s.Problems++
		if e.At.Before(s.Started) {
			s.Started = e.At
		}
		if e.Failed() {
			s.Failed++
			continue
		}
		s.TotalScore += e.Score
		if e.Marker == "New!" {
			s.Improved++
		}
	}
	return out
}
