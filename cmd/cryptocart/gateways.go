package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/VladKovDev/cryptocart/internal/app"
	"github.com/spf13/cobra"
)

func gatewaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateways",
		Short: "List, enable or disable crypto payment gateways",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show registered gateways and whether they are enabled",
		RunE:  runGatewaysList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "enable [name]",
		Short: "Enable a gateway by its short name",
		Args:  cobra.ExactArgs(1),
		RunE:  toggleGateway(true),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "disable [name]",
		Short: "Disable a gateway by its short name",
		Args:  cobra.ExactArgs(1),
		RunE:  toggleGateway(false),
	})

	return cmd
}

func runGatewaysList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := app.Bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.Menu.EnabledGateways(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tENABLED\tTITLE")
	for _, g := range a.Registry.Registered() {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", g.Name(), g.ID(), rec.Contains(g.Name()), g.MethodTitle())
	}
	return w.Flush()
}

func toggleGateway(enabled bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := app.Bootstrap(ctx, configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Menu.SetGatewayEnabled(ctx, args[0], enabled); err != nil {
			return err
		}

		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Gateway %s %s\n", args[0], state)
		return nil
	}
}
