// Package cache holds the built tables and validation report of the most
// recently used snapshot. Building is explicit: nothing is computed until Get
// is called, and Invalidate drops the entry.
package cache

import (
	"fmt"
	"sync"

	"github.com/dyluth/agenda/pkg/schedule"
)

// Entry is everything derived from one snapshot.
type Entry struct {
	SnapshotID string
	Snapshot   *schedule.Snapshot
	Tables     []schedule.DayTable
	BuildErr   error // Joined per-day layout errors; Tables still holds every day
	Report     schedule.Report
}

// Tables caches one Entry keyed by snapshot id. Safe for concurrent use.
type Tables struct {
	mu     sync.RWMutex
	entry  *Entry
	builds int
}

// New returns an empty cache.
func New() *Tables {
	return &Tables{}
}

// Get returns the entry for id, calling load and building it if the cached
// entry is for a different snapshot or the cache is empty. Concurrent callers
// asking for the same id build it once.
func (t *Tables) Get(id string, load func() (*schedule.Snapshot, error)) (*Entry, error) {
	t.mu.RLock()
	entry := t.entry
	t.mu.RUnlock()
	if entry != nil && entry.SnapshotID == id {
		return entry, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entry != nil && t.entry.SnapshotID == id {
		return t.entry, nil
	}

	snap, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	entry = Build(id, snap)
	t.entry = entry
	t.builds++
	return entry, nil
}

// Current returns the cached entry, if any.
func (t *Tables) Current() (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entry, t.entry != nil
}

// Invalidate drops the cached entry. The watcher calls it when the
// conference no longer has a current snapshot.
func (t *Tables) Invalidate() {
	t.mu.Lock()
	t.entry = nil
	t.mu.Unlock()
}

// Builds returns how many entries have been built.
func (t *Tables) Builds() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.builds
}

// Build derives an entry from a snapshot without caching it.
func Build(id string, snap *schedule.Snapshot) *Entry {
	tables, err := snap.BuildSchedule()
	return &Entry{
		SnapshotID: id,
		Snapshot:   snap,
		Tables:     tables,
		BuildErr:   err,
		Report:     snap.Validate(),
	}
}
