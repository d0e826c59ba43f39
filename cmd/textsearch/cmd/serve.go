package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	ingesthandler "github.com/Adithya-Monish-Kumar-K/textsearch/internal/ingestion/handler"
	searchhandler "github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/tracing"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search and ingestion HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			setupLogging(cmd, cfg)

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "API port (overrides server.port)")
	return cmd
}

// routes builds the API handler with its middleware chain.
func (a *app) routes() http.Handler {
	search := searchhandler.New(a.resolver(), a.store, a.cfg.Search.ExcerptLength)
	ingest := ingesthandler.New(a.engine())

	checker := health.NewChecker()
	checker.Register("store", health.PingCheck(a.store.Ping, false))
	if a.redis != nil {
		checker.Register("redis", health.PingCheck(a.redis.Ping, true))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", search.Search)
	mux.HandleFunc("GET /api/v1/documents", search.ListDocuments)
	mux.HandleFunc("POST /api/v1/documents", ingest.Ingest)
	mux.HandleFunc("POST /api/v1/documents/{id}/reindex", ingest.Reindex)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	return middleware.Chain(mux,
		middleware.RequestID,
		tracing.Middleware(a.cfg.Tracing.Enabled),
		middleware.Metrics(a.metrics),
		middleware.Timeout(a.cfg.Server.WriteTimeout),
	)
}

// runServe runs the API server and, when enabled, the metrics server until
// ctx is cancelled or either server fails.
func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg
	servers := []*http.Server{{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout + time.Second,
	}}
	if cfg.Metrics.Enabled {
		servers = append(servers, metrics.NewServer(cfg.Metrics.Port, a.registry))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			slog.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutting down %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	err := g.Wait()
	slog.Info("textsearch stopped")
	return err
}
