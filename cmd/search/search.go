// Package search implements the one-shot query command.
package search

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/minisearch/internal/bootstrap"
)

// snippetColumnWidth caps the snippet column in the terminal table.
const snippetColumnWidth = 60

// Command returns the search command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Run a keyword query against the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")

			app, err := bootstrap.New(cfgFile, debug)
			if err != nil {
				return err
			}
			defer app.Close()

			query := strings.Join(args, " ")

			results, err := app.Ranker.Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}

			if len(results) == 0 {
				fmt.Printf("No results for %q\n", query)
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"#", "Score", "PageRank", "Title", "URL", "Snippet"})
			t.SetColumnConfigs([]table.ColumnConfig{
				{Name: "Snippet", WidthMax: snippetColumnWidth},
			})

			for i, res := range results {
				t.AppendRow(table.Row{
					i + 1,
					fmt.Sprintf("%.4f", res.Score),
					fmt.Sprintf("%.4f", res.PageRank),
					res.Title,
					res.URL,
					res.Snippet,
				})
			}

			t.Render()

			return nil
		},
	}
}
