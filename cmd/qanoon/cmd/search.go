package cmd

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qanoonhq/qanoon/internal/access"
	"github.com/qanoonhq/qanoon/internal/config"
	"github.com/qanoonhq/qanoon/internal/search"
	"github.com/qanoonhq/qanoon/internal/ui"
)

// searchOptions holds the CLI flags for search.
type searchOptions struct {
	roles   []string
	topK    int
	alpha   float64
	format  string
	noColor bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Ask a question against the ingested corpus",
		Long: `Search runs one query through the full pipeline: hybrid BM25 and
dense ranking, role filtering, and highlighted cited excerpts.

Examples:
  qanoon search "ما هي شروط الترخيص؟"
  qanoon search --roles legal "الوثائق المقيدة"
  qanoon search --format json "التعويض عن الضرر النووي"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			engine, embedder, err := buildEngine(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer embedder.Close()
			defer closeSnapshot(engine.Snapshot())

			req := search.NewRequest(query, opts.roles)
			req.TopK = cfg.Search.TopK
			req.Alpha = cfg.Search.Alpha
			req.LexicalK = cfg.Search.LexicalK
			req.VectorK = cfg.Search.VectorK
			if cmd.Flags().Changed("topk") {
				req.TopK = opts.topK
			}
			if cmd.Flags().Changed("alpha") {
				req.Alpha = opts.alpha
			}

			resp, err := engine.Search(cmd.Context(), req)
			if err != nil {
				return err
			}

			if opts.format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			ui.NewRenderer(cmd.OutOrStdout(), opts.noColor).Render(resp)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.roles, "roles", []string{access.RoleStaff}, "Requester roles")
	cmd.Flags().IntVarP(&opts.topK, "topk", "n", search.DefaultTopK, "Maximum number of results")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", search.DefaultAlpha, "Dense weight in fusion, 0..1")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}
