package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/agenda/internal/printer"
	"github.com/dyluth/agenda/internal/render"
	"github.com/spf13/cobra"
)

var (
	validateFile         string
	validateSnapshot     string
	validateOutputFormat string
	validateStrict       bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the schedule for conflicts and invalid items",
	Long: `Run every schedule check and report what it finds:

  • overlapping slots on the same day
  • clashes: two items in the same venue and slot
  • invalid items: missing or unaccepted talks, missing pages, no content
  • duplicate items: one talk or page scheduled twice
  • venues used on days they are closed
  • items split across non-consecutive slots

Exits non-zero on findings with --strict, or with strict: true in agenda.yml.

Output Formats:
  default - Human-readable report
  json    - Report as JSON

Examples:
  agenda validate
  agenda validate --file schedule.yml --strict`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Read the schedule from a YAML file instead of Redis")
	validateCmd.Flags().StringVarP(&validateSnapshot, "snapshot", "s", "", "Use a saved snapshot (id or unique prefix) instead of the current one")
	validateCmd.Flags().StringVarP(&validateOutputFormat, "output", "o", "default", "Output format (default or json)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Exit non-zero if anything is found")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if validateOutputFormat != "default" && validateOutputFormat != "json" {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", validateOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entry, err := loadEntry(ctx, cfg, validateFile, validateSnapshot)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report := entry.Report
	if validateOutputFormat == "json" {
		if err := render.FormatReportJSON(out, cfg.Conference, entry.SnapshotID, report); err != nil {
			return err
		}
	} else {
		render.FormatReport(out, entry.Snapshot, report)
	}

	if !report.Clean() && (validateStrict || cfg.Strict) {
		// The report is the explanation; nothing more to print
		return fmt.Errorf("%s found", printer.Plural(report.Findings(), "problem"))
	}
	return nil
}
