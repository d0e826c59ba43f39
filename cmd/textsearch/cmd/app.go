package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/searcher/resolver"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store/memory"
	pgstore "github.com/Adithya-Monish-Kumar-K/textsearch/internal/store/postgres"
	"github.com/Adithya-Monish-Kumar-K/textsearch/internal/store/sqlite"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/filelock"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/metrics"
	pkgpostgres "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/redis"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg       *config.Config
	store     store.Store
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	redis     *pkgredis.Client
	collector *analytics.Collector
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, registry: metrics.NewRegistry()}
	a.metrics = metrics.New(a.registry)

	s, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = s
	a.closers = append(a.closers, s.Close)

	if cfg.Redis.Enabled {
		rc, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.redis = rc
		a.closers = append(a.closers, rc.Close)
		slog.Info("ingestion lock enabled", "addr", cfg.Redis.Addr, "key", cfg.Redis.LockKey)
	}

	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		a.collector = analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		a.collector.Start(context.WithoutCancel(ctx))
		a.closers = append(a.closers, func() error {
			a.collector.Close()
			return producer.Close()
		})
		slog.Info("analytics enabled", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		client, err := pkgpostgres.New(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s := pgstore.New(client, cfg.Store.QueryTimeout)
		if err := s.Migrate(ctx); err != nil {
			client.Close()
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.Store.SQLitePath, cfg.Store.QueryTimeout)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *app) engine() *indexer.Engine {
	opts := []indexer.Option{indexer.WithMetrics(a.metrics)}
	switch {
	case a.redis != nil:
		opts = append(opts, indexer.WithLocker(a.redis.NewLock(a.cfg.Redis.LockKey, a.cfg.Redis.LockTTL)))
	case a.cfg.Store.Driver == config.DriverSQLite:
		opts = append(opts, indexer.WithLocker(filelock.New(a.cfg.Store.SQLitePath+".lock")))
	}
	if a.collector != nil {
		opts = append(opts, indexer.WithTracker(a.collector))
	}
	return indexer.NewEngine(a.store, opts...)
}

func (a *app) resolver() *resolver.Resolver {
	p := parser.New(tokenizer.Options{
		AlphaOnly:     a.cfg.Search.QueryAlphaOnly,
		DropStopwords: a.cfg.Search.QueryDropStopwords,
	})
	opts := []resolver.Option{resolver.WithParser(p), resolver.WithMetrics(a.metrics)}
	if a.collector != nil {
		opts = append(opts, resolver.WithTracker(a.collector))
	}
	return resolver.New(a.store, opts...)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
