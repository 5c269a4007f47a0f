package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/agenda/internal/printer"
	"github.com/dyluth/agenda/internal/render"
	"github.com/dyluth/agenda/internal/timespec"
	"github.com/dyluth/agenda/pkg/schedule"
	"github.com/spf13/cobra"
)

var (
	tableFile         string
	tableSnapshot     string
	tableDay          string
	tableOutputFormat string
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Show the schedule as one grid per day",
	Long: `Show each conference day as a grid with a row per time slot and a
column per venue open that day.

An item running over several consecutive slots spans several rows; empty
venues are merged into a neighbouring item. Cells covered from the row
above show '|', cells covered from the left show '<'.

Output Formats:
  default - Text tables
  json    - The built tables as JSON

Day specifications (--day):
  d2            a day id
  2013-09-22    a date
  2             the second day
  first, last

Examples:
  agenda table
  agenda table --file schedule.yml --day first
  agenda table --output=json`,
	Args: cobra.NoArgs,
	RunE: runTable,
}

func init() {
	tableCmd.Flags().StringVarP(&tableFile, "file", "f", "", "Read the schedule from a YAML file instead of Redis")
	tableCmd.Flags().StringVarP(&tableSnapshot, "snapshot", "s", "", "Use a saved snapshot (id or unique prefix) instead of the current one")
	tableCmd.Flags().StringVarP(&tableDay, "day", "d", "", "Show a single day")
	tableCmd.Flags().StringVarP(&tableOutputFormat, "output", "o", "default", "Output format (default or json)")
	rootCmd.AddCommand(tableCmd)
}

func runTable(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if tableOutputFormat != "default" && tableOutputFormat != "json" {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", tableOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entry, err := loadEntry(ctx, cfg, tableFile, tableSnapshot)
	if err != nil {
		return err
	}

	tables := entry.Tables
	if tableDay != "" {
		day, err := timespec.ParseDay(tableDay, entry.Snapshot.Days())
		if err != nil {
			return printer.Error(
				"invalid --day",
				err.Error(),
				[]string{"Use a day id, a date like 2013-09-22, a number, 'first' or 'last'"},
			)
		}
		tables = []schedule.DayTable{tableFor(tables, day.ID)}
	}

	out := cmd.OutOrStdout()
	if tableOutputFormat == "json" {
		return render.FormatScheduleJSON(out, cfg.Conference, entry.SnapshotID, tables)
	}

	if _, err := render.FormatSchedule(out, entry.Snapshot, tables, cfg.Conference); err != nil {
		return fmt.Errorf("failed to render schedule: %w", err)
	}
	return nil
}

func tableFor(tables []schedule.DayTable, dayID string) schedule.DayTable {
	for _, t := range tables {
		if t.Day.ID == dayID {
			return t
		}
	}
	return schedule.DayTable{}
}
