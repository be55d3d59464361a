// Package httpd implements the serve command: the long-running HTTP server
// exposing search and the admin triggers.
package httpd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/minisearch/internal/api"
	"github.com/jonesrussell/minisearch/internal/bootstrap"
)

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Run the HTTP server",
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

			return run(ctx, app)
		},
	}
}

// run serves HTTP until the context is cancelled. Background crawl and
// rebuild tasks share the same lifetime context, so SIGINT stops them too.
func run(ctx context.Context, app *bootstrap.App) error {
	handler := api.NewHandler(
		ctx,
		app.Ranker,
		app.Crawls,
		app.Rebuilder,
		app.Store,
		app.Metrics,
		app.Log,
	)

	server := api.NewServer(app.Config.Server, handler, app.Metrics, app.Log)

	return server.Run(ctx)
}
