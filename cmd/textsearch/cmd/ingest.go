package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/ingestion/corpus"
)

func newIngestCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a corpus into the index",
		Long: `Ingest creates each document and writes its index records. Without
--file the built-in corpus of five public-domain excerpts is used; otherwise
the file must contain "documents: [{title, author, content}]".

A document that cannot be stored is skipped; the rest are still ingested.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Indexer.CorpusFile
			}
			setupLogging(cmd, cfg)

			docs, err := corpus.Load(file)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.engine().IngestAll(cmd.Context(), docs)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTERMS\tINDEXED\tFAILED")
			for _, r := range summary.Reports {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", r.Document.ID, r.Document.Title, r.Terms, r.Indexed, r.Failed)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d ingested, %d skipped\n", len(summary.Reports), summary.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML corpus file (default: built-in corpus)")
	return cmd
}
