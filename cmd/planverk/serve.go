package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/mnordin/planverk/internal/config"
	"github.com/mnordin/planverk/internal/db"
	"github.com/mnordin/planverk/internal/notify"
	"github.com/mnordin/planverk/internal/server"
	"github.com/mnordin/planverk/internal/store"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Planverk API server",
		Long:  "Connects to the database, migrates tables, starts the periodic status resync and serves the HTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "planverk.yaml", "path to Planverk config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	if err := db.EnsureSettings(gormDB); err != nil {
		return err
	}

	notifier := notify.New(cfg.Slack.Token, cfg.Slack.Channel)
	if notifier != nil {
		fmt.Fprintf(out, "Slack notifications enabled for #%s\n", cfg.Slack.Channel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Periodic status resync keeps order statuses current as blocks
	// complete, without requiring a generation run.
	if cfg.Resync.Cron != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.Resync.Cron, func() {
			if err := store.RefreshStatuses(gormDB); err != nil {
				log.Printf("resync: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("resync: bad cron expression %q: %w", cfg.Resync.Cron, err)
		}
		c.Start()
		defer c.Stop()
		fmt.Fprintf(out, "Status resync scheduled (%s)\n", cfg.Resync.Cron)
	}

	return server.Start(ctx, server.StartOpts{
		DB:       gormDB,
		Config:   cfg,
		Notifier: notifier,
		Out:      out,
	})
}

// loadConfig reads the config file, falling back to the local-dev
// defaults when it does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}
