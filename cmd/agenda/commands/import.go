package commands

import (
	"context"

	"github.com/dyluth/agenda/internal/loader"
	"github.com/dyluth/agenda/internal/printer"
	"github.com/spf13/cobra"
)

var (
	importAllowFindings bool
)

var importCmd = &cobra.Command{
	Use:   "import [FILE]",
	Short: "Save a schedule file to Redis as the current snapshot",
	Long: `Load a YAML schedule, check it, and save it to Redis as a new immutable
snapshot. The snapshot becomes current and watchers are notified.

FILE defaults to the snapshot path in agenda.yml.

A schedule with dangling references or broken slot chains is never saved.
Validation findings are reported; with strict: true in agenda.yml they block
the import unless --allow-findings is given.

Examples:
  agenda import
  agenda import schedule.yml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importAllowFindings, "allow-findings", false, "Save even if strict mode would reject the findings")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file := configRelative(cfg.Snapshot)
	if len(args) == 1 {
		file = args[0]
	}

	printer.Step("Loading %s\n", file)
	snap, err := loader.LoadFile(file)
	if err != nil {
		return snapshotError(file, err)
	}

	tables, _ := snap.BuildSchedule()
	dayErrors(tables)

	report := snap.Validate()
	if !report.Clean() {
		printer.Warning("%s found; run 'agenda validate --file %s' for details\n", printer.Plural(report.Findings(), "problem"), file)
		if cfg.Strict && !importAllowFindings {
			return printer.Error(
				"import rejected",
				"Strict mode is enabled and the schedule has validation findings.",
				[]string{"Fix the findings and import again", "Save anyway:\n  agenda import --allow-findings"},
			)
		}
	}

	client, err := newStoreClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := client.SaveSnapshot(ctx, snap)
	if err != nil {
		return printer.ErrorWithContext(
			"failed to save snapshot",
			err.Error(),
			map[string]string{"Redis": cfg.RedisURL, "Conference": cfg.Conference},
			[]string{"Check that Redis is running and reachable"},
		)
	}

	printer.Success("Saved snapshot %s for conference '%s'\n", id, cfg.Conference)
	return nil
}
