package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/justsurfingit/prep-pilot/internal/repos"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin <user-id>",
	Short: "Grant the admin role to a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrantAdmin,
}

func init() {
	rootCmd.AddCommand(grantAdminCmd)
}

func runGrantAdmin(cmd *cobra.Command, args []string) (err error) {
	userID, err := uuid.Parse(args[0])
	if err != nil {
		err = errors.Wrap(err, "invalid user id")
		return err
	}
	cfg, db, log, err := openDB()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err = repos.NewRoleRepo(db, log).Grant(context.Background(), userID, cfg.AdminRole); err != nil {
		err = errors.Wrap(err, "failed to grant role")
		return err
	}
	fmt.Printf("Granted %q to %s\n", cfg.AdminRole, userID)
	return nil
}
