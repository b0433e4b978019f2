package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/justsurfingit/prep-pilot/internal/repos"
	"github.com/justsurfingit/prep-pilot/internal/services"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	runDryRun    bool
	runLimit     int
	runUntilDone bool
	runJSON      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Migrate legacy interview prep payloads",
	Long: `Fetch applications with interview prep, convert the legacy ones and
write them back.

  prep-migrate run                       # preview one batch (dry run)
  prep-migrate run --dry-run=false       # commit one batch
  prep-migrate run --dry-run=false --until-done
                                         # commit every batch until the table is exhausted`,
	RunE: runMigration,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", true, "classify and convert without writing")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "records per batch (default from MIGRATION_DEFAULT_LIMIT)")
	runCmd.Flags().BoolVar(&runUntilDone, "until-done", false, "keep fetching batches until every record was visited")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the single-batch report as JSON")
	rootCmd.AddCommand(runCmd)
}

func runMigration(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, db, log, err := openDB()
	if err != nil {
		return err
	}
	defer log.Sync()

	svc := services.NewMigrationService(
		repos.NewApplicationRepo(db, log, cfg.ApplicationsTable),
		log,
		services.MigrationConfig{DefaultLimit: cfg.MigrationDefaultLimit, MaxLimit: cfg.MigrationMaxLimit},
	)

	if runDryRun {
		fmt.Println("Dry run mode - no changes will be made")
	}

	if !runUntilDone {
		var report *services.MigrationReport
		report, err = svc.Run(ctx, services.MigrationOptions{DryRun: runDryRun, Limit: runLimit})
		if err != nil {
			err = errors.Wrap(err, "migration failed")
			return err
		}
		if runJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"success": true, "dryRun": runDryRun, "results": report})
		}
		printDetails(report)
		printSummary(report)
		return nil
	}

	total, err := svc.RunAll(ctx, runDryRun, runLimit, func(batch int, r *services.MigrationReport) {
		fmt.Printf("batch %d: fetched=%d migrated=%d skipped=%d errors=%d\n",
			batch, r.Total, r.Migrated, r.Skipped, len(r.Errors))
	})
	if err != nil {
		err = errors.Wrap(err, "migration stopped")
		return err
	}
	printSummary(total)
	return nil
}

func printDetails(r *services.MigrationReport) {
	for _, d := range r.Details {
		switch {
		case d.Error != "":
			fmt.Printf("  %s  %-13s %s\n", d.ID, d.Status, d.Error)
		case d.Reason != "":
			fmt.Printf("  %s  %-13s %s\n", d.ID, d.Status, d.Reason)
		case d.QuestionsCount != nil:
			fmt.Printf("  %s  %-13s %d questions\n", d.ID, d.Status, *d.QuestionsCount)
		default:
			fmt.Printf("  %s  %s\n", d.ID, d.Status)
		}
	}
}

func printSummary(r *services.MigrationReport) {
	fmt.Printf("\nfetched=%d migrated=%d skipped=%d errors=%d\n", r.Total, r.Migrated, r.Skipped, len(r.Errors))
	for _, e := range r.Errors {
		fmt.Printf("  error: %s\n", e)
	}
}
