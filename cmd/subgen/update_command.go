package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update [component...]",
		Short: "Re-download installed components to their latest known artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.componentsManager()
			if err != nil {
				return err
			}

			ids := args
			if len(ids) == 0 {
				installed, err := mgr.ListInstalled()
				if err != nil {
					return err
				}
				for id := range installed {
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing installed")
				return nil
			}

			for _, id := range ids {
				bar := progressbar.DefaultBytes(-1, fmt.Sprintf("updating %s", id))
				err := mgr.Update(cmd.Context(), id, func(downloaded, total int64) {
					if total > 0 {
						bar.ChangeMax64(total)
					}
					_ = bar.Set64(downloaded)
				})
				bar.Close()
				if err != nil {
					return fmt.Errorf("update %q: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", id)
			}
			return nil
		},
	}
}
