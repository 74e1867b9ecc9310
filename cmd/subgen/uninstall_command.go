package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUninstallCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <component> [component...]",
		Short: "Remove a previously installed component",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.componentsManager()
			if err != nil {
				return err
			}
			for _, id := range args {
				id = strings.TrimSpace(id)
				if err := mgr.Uninstall(id); err != nil {
					return fmt.Errorf("uninstall %q: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "uninstalled %s\n", id)
			}
			return nil
		},
	}
}
