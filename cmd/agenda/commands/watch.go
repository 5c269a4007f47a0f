package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/agenda/internal/cache"
	"github.com/dyluth/agenda/internal/printer"
	"github.com/dyluth/agenda/internal/render"
	"github.com/dyluth/agenda/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchNoSchedule bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Revalidate the schedule whenever it changes",
	Long: `Watch the conference in Redis and revalidate the current snapshot:

  • once on startup
  • every time 'agenda import' saves a new snapshot
  • on the revalidate cron schedule in agenda.yml

Findings are printed as they appear. Stop with Ctrl+C.

Examples:
  agenda watch
  agenda watch --no-schedule`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoSchedule, "no-schedule", false, "Only revalidate when a snapshot is saved")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newStoreClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.Ping(ctx); err != nil {
		return printer.ErrorWithContext(
			"Redis unreachable",
			err.Error(),
			map[string]string{"Redis": cfg.RedisURL},
			[]string{"Check that Redis is running and reachable"},
		)
	}

	spec := cfg.Revalidate
	if watchNoSchedule {
		spec = ""
	}

	out := cmd.OutOrStdout()
	w, err := watch.New(client, cache.New(), spec, func(r watch.Result) {
		switch {
		case r.Entry == nil:
			printer.Info("No snapshot saved yet for conference '%s'\n", cfg.Conference)
		case r.Entry.Report.Clean():
			printer.Success("Snapshot %s (%s): no problems found\n", r.SnapshotID, r.Trigger)
		default:
			printer.Warning("Snapshot %s (%s): %s found\n", r.SnapshotID, r.Trigger,
				printer.Plural(r.Entry.Report.Findings(), "problem"))
			render.FormatReport(out, r.Entry.Snapshot, r.Entry.Report)
			fmt.Fprintln(out)
		}
	})
	if err != nil {
		return printer.Error("invalid revalidate schedule", err.Error(),
			[]string{fmt.Sprintf("Fix revalidate in %s", cfgFile)})
	}

	printer.Step("Watching conference '%s' (Ctrl+C to stop)\n", cfg.Conference)
	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "watch stopped: %v\n", err)
		return err
	}
	return nil
}
