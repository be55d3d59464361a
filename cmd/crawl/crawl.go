// Package crawl implements the one-shot crawl command.
package crawl

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/minisearch/internal/bootstrap"
	"github.com/jonesrussell/minisearch/internal/crawler"
)

// Command returns the crawl command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Run a crawl session from the seed URLs",
		Long: `Runs a crawl session synchronously and exits when the frontier drains
or the page cap is reached. Positional arguments override the configured
seed URLs.`,
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

			cfg := bootstrap.CrawlerConfig(app.Config)
			if len(args) > 0 {
				cfg.SeedURLs = args
			}

			session := crawler.NewSession(cfg, app.Store, app.Log, app.Metrics)
			stats := session.Run(ctx)

			app.Log.Info("crawl complete",
				"pages_crawled", stats.PagesCrawled,
				"urls_seen", stats.URLsSeen,
			)

			return nil
		},
	}

	return cmd
}
