package main

import (
	"errors"
	"fmt"

	"github.com/VladKovDev/cryptocart/internal/app"
	"github.com/VladKovDev/cryptocart/internal/repository/postgres"
	"github.com/spf13/cobra"
)

var migrateOrders bool

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		Long: `Create the options table used for gateway settings.

With --orders the order tables are created as well. Use this only when no
shop schema exists, e.g. for local development.

Examples:
  cryptocart migrate
  cryptocart migrate --orders`,
		RunE: runMigrate,
	}

	cmd.Flags().BoolVar(&migrateOrders, "orders", false, "also create the order tables")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := app.Bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.DB == nil {
		return errors.New("migrate requires storage.driver=postgres")
	}

	if err := postgres.Migrate(ctx, a.DB.Pool, migrateOrders); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
	return nil
}
