package main

import (
	"github.com/VladKovDev/cryptocart/internal/app"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the IPN webhook, checkout endpoints and admin pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), configPath)
		},
	}
}
