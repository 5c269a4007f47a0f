package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dyluth/agenda/internal/ics"
	"github.com/dyluth/agenda/internal/loader"
	"github.com/dyluth/agenda/internal/printer"
	"github.com/spf13/cobra"
)

var (
	exportFile     string
	exportSnapshot string
	exportOut      string
	exportFormat   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the schedule as an iCalendar feed or YAML",
	Long: `Export the schedule.

Formats:
  ics  - One event per grid cell, in the time zone from agenda.yml
  yaml - The snapshot as a schedule file, suitable for 'agenda import'

--out defaults to export.output in agenda.yml for ics, and to stdout for yaml.
Use --out - to write to stdout.

Examples:
  agenda export
  agenda export --out - | less
  agenda export --format yaml --out backup.yml`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "Read the schedule from a YAML file instead of Redis")
	exportCmd.Flags().StringVarP(&exportSnapshot, "snapshot", "s", "", "Use a saved snapshot (id or unique prefix) instead of the current one")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output path, or - for stdout")
	exportCmd.Flags().StringVar(&exportFormat, "format", "ics", "Export format (ics or yaml)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if exportFormat != "ics" && exportFormat != "yaml" {
		return printer.Error(
			"invalid export format",
			fmt.Sprintf("Unknown format: %s", exportFormat),
			[]string{"Valid formats: ics, yaml"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entry, err := loadEntry(ctx, cfg, exportFile, exportSnapshot)
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		path = "-"
		if exportFormat == "ics" {
			path = configRelative(cfg.Export.Output)
		}
	}

	write := func(w io.Writer) error {
		if exportFormat == "yaml" {
			return loader.Encode(w, entry.Snapshot)
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		return ics.Export(w, entry.Snapshot, entry.Tables, ics.Options{
			Conference:   cfg.Conference,
			CalendarName: cfg.Export.CalendarName,
			Location:     loc,
		})
	}

	if path == "-" {
		return write(cmd.OutOrStdout())
	}

	if exportFormat == "ics" {
		dayErrors(entry.Tables)
	}

	f, err := os.Create(path)
	if err != nil {
		return printer.Error("failed to create output file", err.Error(), nil)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	printer.Success("Exported %s to %s\n", exportFormat, path)
	return nil
}
