// Package resolver expands short run-id prefixes into full ids.
package resolver

import (
	"fmt"
	"sort"
	"strings"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
// Set to 6 characters to balance usability with collision avoidance.
const MinShortIDLength = 6

// Resolve finds the single id in known that starts with shortID.
//
// The function handles three cases:
// 1. Input is already a full UUID (36 chars, 4 hyphens) - must be present in known
// 2. Input is too short (< 6 chars) - returns validation error
// 3. Input is a short prefix - scans for matches and returns unique result
func Resolve(shortID string, known []string) (string, error) {
	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		for _, id := range known {
			if id == shortID {
				return shortID, nil
			}
		}
		return "", &NotFoundError{ShortID: shortID}
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	seen := make(map[string]bool)
	var matches []string
	for _, id := range known {
		if strings.HasPrefix(id, shortID) && !seen[id] {
			seen[id] = true
			matches = append(matches, id)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no runs matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no runs found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple runs matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d runs", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous short IDs.
// Lists all matching ids (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: ambiguous short ID '%s' matches %d runs:\n", err.ShortID, len(err.Matches))

	displayCount := min(len(err.Matches), 10)
	for _, id := range err.Matches[:displayCount] {
		fmt.Fprintf(&sb, "  %s\n", id)
	}
	if len(err.Matches) > 10 {
		fmt.Fprintf(&sb, "  ...and %d more\n", len(err.Matches)-10)
	}

	sb.WriteString("\nUse a longer prefix to uniquely identify the run.")
	return sb.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
