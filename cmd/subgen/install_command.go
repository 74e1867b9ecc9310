package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"subgen/internal/components"
)

func newInstallCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "install <component> [component...]",
		Short: "Download and install a recognizer engine, model, or ffmpeg",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mgr, err := ctx.componentsManager()
			if err != nil {
				return err
			}
			return installAll(cmd, mgr, args, cfg.Advanced.DownloadConcurrency)
		},
	}
}

// installAll installs every id concurrently, bounded by limit the way
// spec.md §5 requires for component downloads. The errgroup.SetLimit shape
// is the same one Vulpecula1660-scribe2srt-cli's processConcurrent uses for
// bounded parallel chunk uploads.
func installAll(cmd *cobra.Command, mgr *components.Manager, ids []string, limit int) error {
	if limit <= 0 {
		limit = 1
	}

	var out sync.Mutex
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(limit)

	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		g.Go(func() error {
			bar := progressbar.DefaultBytes(-1, fmt.Sprintf("installing %s", id))
			err := mgr.Install(gctx, id, func(downloaded, total int64) {
				if total > 0 {
					bar.ChangeMax64(total)
				}
				_ = bar.Set64(downloaded)
			})
			bar.Close()

			out.Lock()
			defer out.Unlock()
			if err != nil {
				return fmt.Errorf("install %q: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", id)
			return nil
		})
	}

	return g.Wait()
}

// listAvailableComponents returns every component the manager's registry
// knows about.
func listAvailableComponents(mgr *components.Manager) []components.Component {
	return mgr.ListAvailable()
}
