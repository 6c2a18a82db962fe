package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qanoonhq/qanoon/internal/config"
	"github.com/qanoonhq/qanoon/internal/ingest"
)

func newIngestCmd() *cobra.Command {
	var (
		inputDir       string
		roles          []string
		seedRestricted bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build the corpus and search indexes from extracted documents",
		Long: `Ingest reads page-structured document files (one JSON file per
document) and rebuilds every search artifact: the chunk corpus, the
metadata database, the BM25 index, and the dense vector index.

Examples:
  qanoon ingest --input ./extracted
  qanoon ingest --input ./extracted --roles legal,admin
  qanoon ingest --input ./extracted --seed-restricted`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			embedder := newEmbedder(cfg)
			defer embedder.Close()

			pipeline := ingest.NewPipeline(cfg, embedder, slog.Default())
			n, err := pipeline.Run(cmd.Context(), ingest.Options{
				InputDir:       inputDir,
				Roles:          roles,
				SeedRestricted: seedRestricted,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d chunks into %s\n", n, cfg.Paths.DataDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "docs", "Directory of extracted document JSON files")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "Roles allowed to read the ingested chunks (default: all)")
	cmd.Flags().BoolVar(&seedRestricted, "seed-restricted", false, "Add the demo restricted document set")

	return cmd
}
