package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dyluth/agenda/pkg/schedule"
)

// Serialization helpers for converting snapshots to and from Redis hashes.
//
// Scalar fields are stored as plain hash fields; each entity list is
// JSON-encoded into a single field.

// SnapshotInfo describes a stored snapshot without its contents.
type SnapshotInfo struct {
	ID        string `json:"id"`
	SavedAtMs int64  `json:"saved_at_ms"`
}

// DataToHash converts schedule data to a Redis hash.
func DataToHash(info SnapshotInfo, data schedule.Data) (map[string]interface{}, error) {
	hash := map[string]interface{}{
		"id":          info.ID,
		"saved_at_ms": info.SavedAtMs,
	}

	fields := []struct {
		name  string
		value interface{}
	}{
		{"days", data.Days},
		{"venues", data.Venues},
		{"slots", data.Slots},
		{"items", data.Items},
		{"talks", data.Talks},
		{"pages", data.Pages},
	}
	for _, f := range fields {
		encoded, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", f.name, err)
		}
		hash[f.name] = string(encoded)
	}

	return hash, nil
}

// HashToData converts a Redis hash back to schedule data.
func HashToData(hash map[string]string) (SnapshotInfo, schedule.Data, error) {
	var data schedule.Data

	savedAtMs, err := strconv.ParseInt(hash["saved_at_ms"], 10, 64)
	if err != nil {
		return SnapshotInfo{}, data, fmt.Errorf("invalid saved_at_ms field: %w", err)
	}
	info := SnapshotInfo{ID: hash["id"], SavedAtMs: savedAtMs}

	fields := []struct {
		name   string
		target interface{}
	}{
		{"days", &data.Days},
		{"venues", &data.Venues},
		{"slots", &data.Slots},
		{"items", &data.Items},
		{"talks", &data.Talks},
		{"pages", &data.Pages},
	}
	for _, f := range fields {
		raw := hash[f.name]
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), f.target); err != nil {
			return SnapshotInfo{}, data, fmt.Errorf("failed to unmarshal %s: %w", f.name, err)
		}
	}

	return info, data, nil
}

// SnapshotEvent is published after every successful save.
type SnapshotEvent struct {
	SnapshotID string `json:"snapshot_id"`
	Conference string `json:"conference"`
	SavedAtMs  int64  `json:"saved_at_ms"`
}
