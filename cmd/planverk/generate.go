package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mnordin/planverk/internal/db"
	"github.com/mnordin/planverk/internal/schedule"
	"github.com/mnordin/planverk/internal/store"
)

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate the production schedule",
		Long:  "Runs one scheduling pass over all schedulable orders and reliable predictions, replaces the stored schedule and prints a summary.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, configPath, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "planverk.yaml", "path to Planverk config file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the schedule without saving it")
	return cmd
}

func runGenerate(cmd *cobra.Command, configPath string, dryRun bool) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}

	in, err := store.Snapshot(gormDB)
	if err != nil {
		return err
	}
	in.Now = time.Now()

	result, err := schedule.Generate(in)
	if err != nil {
		return err
	}
	metrics := schedule.CalculateMetrics(result.Blocks, in.Machines, in.Settings, in.Now)

	// First blocks carry the batch size, so counting them counts items.
	items := 0
	for _, b := range result.Blocks {
		if b.BatchSize > 0 {
			items++
		}
	}
	fmt.Fprintf(out, "Scheduled %d demand items into %d blocks on %d machines\n",
		items, len(result.Blocks), metrics.MachinesUsed)
	fmt.Fprintf(out, "  OEE:        %.1f%%\n", metrics.TotalOEE)
	fmt.Fprintf(out, "  Production: %.1f h (+%.1f h setup)\n", metrics.TotalProductionHours, metrics.TotalSetupHours)
	fmt.Fprintf(out, "  Revenue:    %.0f SEK\n", metrics.EstimatedRevenue)
	for _, diag := range result.Skipped {
		fmt.Fprintf(out, "  Skipped %s %s: %s\n", diag.Source, diag.DemandID, diag.Reason)
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run; schedule not saved.")
		return nil
	}

	if err := store.ReplaceBlocks(gormDB, result.Blocks); err != nil {
		return err
	}
	if err := store.SaveMetrics(gormDB, metrics); err != nil {
		return err
	}
	statuses := schedule.AllOrderStatuses(in.Orders, in.PredictedOrders, result.Blocks,
		schedule.ReliabilityThreshold(in.Settings), in.Now)
	if err := store.ApplyStatuses(gormDB, statuses); err != nil {
		return err
	}
	fmt.Fprintln(out, "Schedule saved.")
	return nil
}
