package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dyluth/agenda/internal/cache"
	"github.com/dyluth/agenda/internal/config"
	"github.com/dyluth/agenda/internal/loader"
	"github.com/dyluth/agenda/internal/printer"
	"github.com/dyluth/agenda/internal/resolver"
	"github.com/dyluth/agenda/pkg/schedule"
	"github.com/dyluth/agenda/pkg/store"
)

// loadConfig reads --config, printing a formatted error on failure.
func loadConfig() (*config.AgendaConfig, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, printer.Error(
				"agenda.yml not found",
				fmt.Sprintf("No configuration at %s.", cfgFile),
				[]string{"Create one:\n  agenda init", "Point at an existing file:\n  agenda --config path/to/agenda.yml"},
			)
		}
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Fix %s and try again", cfgFile)},
		)
	}
	return cfg, nil
}

// configRelative resolves a path from agenda.yml against the config's directory.
func configRelative(path string) string {
	if path == "" || path == "-" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(cfgFile), path)
}

func newStoreClient(cfg *config.AgendaConfig) (*store.Client, error) {
	client, err := store.NewClientFromURL(cfg.RedisURL, cfg.Conference)
	if err != nil {
		return nil, printer.Error(
			"invalid Redis URL",
			err.Error(),
			[]string{fmt.Sprintf("Set redis_url in %s or %s in the environment", cfgFile, config.RedisURLEnv)},
		)
	}
	return client, nil
}

// loadEntry builds tables and the report for the snapshot in file or, when
// file is empty, for a stored snapshot: the one named by the snapshotID prefix,
// or the current one.
func loadEntry(ctx context.Context, cfg *config.AgendaConfig, file, snapshotID string) (*cache.Entry, error) {
	if file != "" {
		snap, err := loader.LoadFile(file)
		if err != nil {
			return nil, snapshotError(file, err)
		}
		return cache.Build("", snap), nil
	}

	client, err := newStoreClient(cfg)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if snapshotID != "" {
		return loadByID(ctx, cfg, client, snapshotID)
	}

	snap, id, err := client.LoadSnapshot(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, printer.Error(
				"no snapshot saved",
				fmt.Sprintf("Conference '%s' has no schedule in Redis yet.", cfg.Conference),
				[]string{fmt.Sprintf("Import one:\n  agenda import %s", cfg.Snapshot), "Read a file directly:\n  agenda table --file schedule.yml"},
			)
		}
		return nil, printer.ErrorWithContext(
			"failed to load snapshot",
			err.Error(),
			map[string]string{"Redis": cfg.RedisURL, "Conference": cfg.Conference},
			[]string{"Check that Redis is running and reachable"},
		)
	}

	return cache.Build(id, snap), nil
}

func loadByID(ctx context.Context, cfg *config.AgendaConfig, client *store.Client, shortID string) (*cache.Entry, error) {
	id, err := resolver.ResolveSnapshotID(ctx, client, shortID)
	if err != nil {
		var ambiguous *resolver.AmbiguousError
		switch {
		case errors.As(err, &ambiguous):
			return nil, printer.Error("ambiguous snapshot id", resolver.FormatAmbiguousError(ambiguous),
				[]string{"Use a longer prefix"})
		case resolver.IsNotFoundError(err):
			return nil, printer.Error("snapshot not found", err.Error(),
				[]string{"List saved snapshots:\n  agenda history"})
		default:
			return nil, printer.Error("invalid snapshot id", err.Error(), nil)
		}
	}

	snap, err := client.LoadSnapshotByID(ctx, id)
	if err != nil {
		return nil, printer.ErrorWithContext("failed to load snapshot", err.Error(),
			map[string]string{"Snapshot": id, "Conference": cfg.Conference}, nil)
	}
	return cache.Build(id, snap), nil
}

// snapshotError explains a snapshot that could not be loaded from a file.
func snapshotError(file string, err error) error {
	details := map[string]string{"File": file}
	if slots := schedule.OffendingSlots(err); len(slots) > 0 {
		details["Slots"] = strings.Join(slots, ", ")
	}

	switch {
	case schedule.IsReference(err):
		return printer.ErrorWithContext("dangling reference", err.Error(), details,
			[]string{"Define the referenced entity, or remove the reference"})
	case schedule.IsCycle(err):
		return printer.ErrorWithContext("slot cycle", err.Error(), details,
			[]string{"Give the first slot of each day a start time instead of a previous slot"})
	case schedule.IsMalformedSlot(err):
		return printer.ErrorWithContext("malformed slot", err.Error(), details,
			[]string{"Each slot needs exactly one of start or previous, and must end after it starts"})
	default:
		return printer.ErrorWithContext("failed to load schedule", err.Error(), details, nil)
	}
}

// dayErrors reports days whose slots could not be resolved.
func dayErrors(tables []schedule.DayTable) {
	for _, table := range tables {
		if table.Err == nil {
			continue
		}
		msg := fmt.Sprintf("Day %s cannot be laid out: %v", table.Day.ID, table.Err)
		if slots := schedule.OffendingSlots(table.Err); len(slots) > 0 {
			msg += fmt.Sprintf(" (slots: %s)", strings.Join(slots, ", "))
		}
		printer.Warning("%s\n", msg)
	}
}
