package store

import "fmt"

// Redis key pattern helpers
//
// All keys and Pub/Sub channels are namespaced by conference name so several
// conferences can share one Redis server.
//
// Key pattern: agenda:{conference}:{entity}[:{id}]
// Channel pattern: agenda:{conference}:{event_type}_events

// SnapshotKey returns the Redis key for a stored snapshot hash.
// Pattern: agenda:{conference}:snapshot:{snapshot_id}
func SnapshotKey(conference, snapshotID string) string {
	return fmt.Sprintf("agenda:%s:snapshot:%s", conference, snapshotID)
}

// CurrentKey returns the Redis key holding the id of the current snapshot.
// Pattern: agenda:{conference}:current
func CurrentKey(conference string) string {
	return fmt.Sprintf("agenda:%s:current", conference)
}

// HistoryKey returns the Redis key for the ZSET of saved snapshot ids, scored
// by save time in milliseconds.
// Pattern: agenda:{conference}:history
func HistoryKey(conference string) string {
	return fmt.Sprintf("agenda:%s:history", conference)
}

// SnapshotEventsChannel returns the Pub/Sub channel name for snapshot events.
// Pattern: agenda:{conference}:snapshot_events
func SnapshotEventsChannel(conference string) string {
	return fmt.Sprintf("agenda:%s:snapshot_events", conference)
}
