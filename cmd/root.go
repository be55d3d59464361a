// Package cmd implements the command-line interface for minisearch.
package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/minisearch/cmd/crawl"
	"github.com/jonesrussell/minisearch/cmd/httpd"
	"github.com/jonesrussell/minisearch/cmd/index"
	"github.com/jonesrussell/minisearch/cmd/search"
)

// version is set via -ldflags at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "minisearch",
	Short: "A self-contained web search engine",
	Long: `minisearch crawls a bounded region of the web from seed URLs,
builds an inverted index and PageRank over the crawled corpus,
and serves ranked keyword queries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to viper.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.Version = version

	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(index.Command())
	rootCmd.AddCommand(search.Command())
}
