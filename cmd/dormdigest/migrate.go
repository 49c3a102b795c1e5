package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dormdigest/internal/repository/mysql"
	"dormdigest/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables, indexes and foreign keys",
	Long: `Bring the schema up to date and exit. Safe to run against an
already initialized store; existing rows are never touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := mysql.Migrate(db, log); err != nil {
			return err
		}
		log.Info("migration finished")
		return nil
	},
}

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin <email>",
	Short: "Promote a user to site administrator",
	Long: `Promote the user with the given email to ADMIN, creating the user
when missing. Used to bootstrap the first administrator.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := mysql.Migrate(db, log); err != nil {
			return err
		}
		user, err := service.NewUserService(db, log).GrantAdmin(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d (%s) is now %s\n", user.ID, user.Email, user.Privilege)
		return nil
	},
}
