package commands

import (
	"fmt"
	"path/filepath"

	"github.com/dyluth/agenda/internal/printer"
	"github.com/dyluth/agenda/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample agenda.yml and schedule.yml",
	Long: `Create a sample configuration and a two-day sample schedule.

Creates, next to --config:
  • agenda.yml   - conference name, Redis URL, time zone and watch schedule
  • schedule.yml - days, venues, slots, talks, pages and schedule items

Use --force to overwrite existing files.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite existing agenda.yml and schedule.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := filepath.Dir(cfgFile)

	if !forceInit {
		if err := scaffold.CheckExisting(dir); err != nil {
			return printer.Error("project already initialized", err.Error(), nil)
		}
	}

	if err := scaffold.Initialize(dir, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	printer.Success("Created %s and %s in %s\n", scaffold.ConfigFile, scaffold.ScheduleFile, dir)
	printer.Info("\nNext steps:\n")
	for i, step := range scaffold.NextSteps() {
		printer.Info("  %d. %s\n", i+1, step)
	}
	return nil
}
