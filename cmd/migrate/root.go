package main

import (
	"os"

	"github.com/justsurfingit/prep-pilot/internal/config"
	"github.com/justsurfingit/prep-pilot/internal/database"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "prep-migrate",
	Short: "Operator tools for interview preparation data",
	Long: `prep-migrate converts stored interview preparation payloads from the
phase-keyed legacy format to the current question-based format, directly
against the database.

It also manages the admin role and the Gmail token used for report emails.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB loads configuration and connects with the schema migrated.
func openDB() (cfg config.Config, db *gorm.DB, log *logger.Logger, err error) {
	cfg, _ = config.Load()
	log, err = logger.New(cfg.LogMode)
	if err != nil {
		err = errors.Wrap(err, "failed to build logger")
		return cfg, nil, nil, err
	}
	db, err = database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		err = errors.Wrap(err, "failed to connect to database")
		return cfg, nil, log, err
	}
	return cfg, db, log, nil
}
