package main

import (
	"context"
	"os"

	"github.com/justsurfingit/prep-pilot/internal/auth"
	"github.com/justsurfingit/prep-pilot/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var gmailAuthCmd = &cobra.Command{
	Use:   "gmail-auth",
	Short: "Authorize the Gmail account used for migration report emails",
	Long: `Opens the OAuth consent flow for GMAIL_CREDENTIALS_FILE and stores the
resulting token in GMAIL_TOKEN_FILE. The API server reads that token at startup.`,
	RunE: runGmailAuth,
}

func init() {
	rootCmd.AddCommand(gmailAuthCmd)
}

func runGmailAuth(cmd *cobra.Command, args []string) (err error) {
	cfg, _ := config.Load()
	if cfg.GmailCredentialsFile == "" || cfg.GmailTokenFile == "" {
		return errors.New("GMAIL_CREDENTIALS_FILE and GMAIL_TOKEN_FILE must be set")
	}
	oauthConfig, err := auth.GmailConfig(cfg.GmailCredentialsFile)
	if err != nil {
		return err
	}
	err = auth.AuthorizeInteractive(context.Background(), oauthConfig, cfg.GmailTokenFile, os.Stdin, os.Stdout)
	if err != nil {
		err = errors.Wrap(err, "gmail authorization failed")
		return err
	}
	return nil
}
