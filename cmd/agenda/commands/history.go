package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/agenda/internal/printer"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved snapshots, newest first",
	Long: `List every snapshot saved for the conference, newest first.
The current snapshot is marked with '*'.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newStoreClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	infos, err := client.ListSnapshots(ctx)
	if err != nil {
		return printer.ErrorWithContext("failed to list snapshots", err.Error(),
			map[string]string{"Redis": cfg.RedisURL, "Conference": cfg.Conference}, nil)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintf(out, "No snapshots saved for conference '%s'\n", cfg.Conference)
		return nil
	}

	// Empty when history exists but the pointer was removed by hand
	current, _ := client.CurrentID(ctx)

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		mark := ""
		if info.ID == current {
			mark = "*"
		}
		saved := time.UnixMilli(info.SavedAtMs).Format(time.RFC3339)
		rows = append(rows, []string{mark, info.ID, saved})
	}

	tw := tablewriter.NewWriter(out)
	tw.Header("", "SNAPSHOT", "SAVED AT")
	if err := tw.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	if err := tw.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
