package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qanoonhq/qanoon/internal/config"
	"github.com/qanoonhq/qanoon/internal/search"
	"github.com/qanoonhq/qanoon/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the question answering API over HTTP",
		Long: `Serve starts the HTTP API: POST /login for session tokens,
POST /ask for authenticated questions, GET /healthz for probes.

With watching enabled (the default) the corpus reloads automatically
after an ingest run touches the data directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()

	engine, embedder, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer embedder.Close()
	defer closeSnapshot(engine.Snapshot())

	srv := server.New(cfg, engine, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Watch {
		watcher := server.NewWatcher(engine, cfg.Paths.DataDir, func() (*search.Snapshot, error) {
			return loadSnapshot(cfg, embedder.Dimensions())
		}, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("watcher_stopped", slog.String("error", err.Error()))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting_down")
		return srv.Shutdown()
	}
}
