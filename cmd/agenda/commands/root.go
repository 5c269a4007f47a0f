package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Agenda - conference schedule grids and checks",
	Long: `Agenda lays out a conference schedule as one table per day, with a row
per time slot and a column per venue, and checks the schedule for
overlapping slots, clashes, invalid or duplicate items and venues used
on days they are closed.

Schedules are written as YAML and saved to Redis as immutable snapshots.`,
	Version: version,
	// Show help instead of silently succeeding on "agenda --day 1"
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Errors are printed in colour by the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "agenda.yml", "Path to agenda.yml")
}
