package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/excerpt"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index",
		Long: `Search ranks every document containing at least one query word by the
summed frequency of those words.

Examples:
  textsearch search rabbit
  textsearch search "king queen" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			setupLogging(cmd, cfg)
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			result, err := a.resolver().Search(cmd.Context(), query)
			if err != nil && !errors.Is(err, apperrors.ErrStorageRead) {
				return err
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: search failed, showing no results:", err)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			if len(result.Documents) == 0 {
				fmt.Fprintf(out, "No results for %q\n", query)
				return nil
			}
			for i, sd := range result.Documents {
				fmt.Fprintf(out, "%d. %s (%s) score=%d\n", i+1, sd.Document.Title, sd.Document.Author, sd.Score)
				fmt.Fprintf(out, "   %s\n", excerpt.Build(sd.Document.Content, query, cfg.Search.ExcerptLength))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
