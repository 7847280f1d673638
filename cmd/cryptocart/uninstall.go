package main

import (
	"fmt"

	"github.com/VladKovDev/cryptocart/internal/app"
	"github.com/spf13/cobra"
)

func uninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the gateway settings and the enabled-gateways record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := app.Bootstrap(ctx, configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Uninstall(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "CryptoCart options removed")
			return nil
		},
	}
}
