package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/agenda/pkg/store"
)

// MinShortIDLength is the minimum length of a snapshot id prefix.
const MinShortIDLength = 6

// Lister lists saved snapshots, newest first. Implemented by *store.Client.
type Lister interface {
	ListSnapshots(ctx context.Context) ([]store.SnapshotInfo, error)
}

// ResolveSnapshotID expands a snapshot id prefix to the full id.
// A full UUID is returned as-is once it is found in the history.
func ResolveSnapshotID(ctx context.Context, lister Lister, shortID string) (string, error) {
	full := len(shortID) == 36 && strings.Count(shortID, "-") == 4
	if !full && len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	infos, err := lister.ListSnapshots(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to search for snapshot: %w", err)
	}

	var matches []string
	for _, info := range infos {
		if info.ID == shortID {
			return info.ID, nil
		}
		if !full && strings.HasPrefix(info.ID, shortID) {
			matches = append(matches, info.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no snapshot matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no snapshots found matching '%s'", e.ShortID)
}

// AmbiguousError indicates several snapshots matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string // Newest first
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d snapshots", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError lists up to 10 matching ids for the user.
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Short ID '%s' matches %d snapshots:\n", err.ShortID, len(err.Matches))

	shown := err.Matches
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, id := range shown {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	if len(err.Matches) > 10 {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-10)
	}

	return b.String()
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
