// Package index implements the one-shot rebuild command: inverted index
// followed by PageRank.
package index

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/minisearch/internal/bootstrap"
)

// Command returns the index command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the inverted index and recompute PageRank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")

			app, err := bootstrap.New(cfgFile, debug)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return app.Rebuilder.Run(ctx)
		},
	}
}
