package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/readfold/readfold/internal/core/domain"
)

var (
	watch  bool
	dryRun bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise saved items into the notebook",
	Long: `Fetches items saved or updated since the last sync and files each
one into the notebook. Safe to re-run at any time: items already synced
are skipped.

With --watch, keeps running and repeats the sync on the configured
interval (frequency_minutes).`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and sync on the configured interval")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch and route items without writing anything")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncer == nil {
		return errors.New("sync service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if watch {
		return runWatch(cmd, ctx)
	}

	target := syncer
	if dryRun {
		target = dryRunSyncer()
		cmd.Println("Dry run: nothing will be written.")
	}

	cmd.Println("Synchronising...")
	report := target.Sync(ctx)
	printReport(cmd, report)
	if !report.Success {
		return errors.New("sync finished with errors")
	}
	return nil
}

func runWatch(cmd *cobra.Command, ctx context.Context) error {
	if syncScheduler == nil {
		return errors.New("scheduler not configured")
	}
	minutes := stateStore.Settings().FrequencyMinutes
	if minutes <= 0 {
		return errors.New("frequency_minutes is not set; configure it with: readfold settings set frequency_minutes <n>")
	}

	interval := time.Duration(minutes) * time.Minute
	cmd.Printf("Watching: syncing every %v. Press Ctrl+C to stop.\n", interval)
	if err := syncScheduler.Start(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printReport(cmd *cobra.Command, report *domain.SyncReport) {
	cmd.Printf("Created: %d  Skipped: %d  Errors: %d\n", report.Created, report.Skipped, len(report.Errors))
	for _, msg := range report.Errors {
		cmd.Printf("  error: %s\n", msg)
	}
}
