// Package timespec parses the --since/--until values accepted by history
// commands.
package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse turns a time specification into an absolute time.
// Supports three formats:
//   - Go duration format: "1h", "30m", "1h30m", "2h45m30s"
//   - Whole days: "2d"
//   - RFC3339 timestamps: "2019-06-21T13:00:00Z"
//
// Durations and days are relative to now and point into the past, so "1h"
// means one hour before now.
func Parse(spec string, now time.Time) (time.Time, error) {
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}

	if days, ok := strings.CutSuffix(spec, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return now.AddDate(0, 0, -n), nil
		}
	}

	if d, err := time.ParseDuration(spec); err == nil {
		return now.Add(-d), nil
	}

	return time.Time{}, fmt.Errorf("invalid time specification: %s (use duration like '1h30m', days like '2d' or RFC3339 like '2019-06-21T13:00:00Z')", spec)
}

// Range is a half-open time window. A zero bound is unbounded.
type Range struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t lies in [Since, Until).
func (r Range) Contains(t time.Time) bool {
	if !r.Since.IsZero() && t.Before(r.Since) {
		return false
	}
	if !r.Until.IsZero() && !t.Before(r.Until) {
		return false
	}
	return true
}

// ParseRange parses both --since and --until flags into a time range.
// Validates that since < until if both are specified.
func ParseRange(since, until string, now time.Time) (Range, error) {
	var r Range
	var err error

	if since != "" {
		r.Since, err = Parse(since, now)
		if err != nil {
			return Range{}, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		r.Until, err = Parse(until, now)
		if err != nil {
			return Range{}, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if !r.Since.IsZero() && !r.Until.IsZero() && !r.Since.Before(r.Until) {
		return Range{}, fmt.Errorf("--since must be before --until")
	}

	return r, nil
}
