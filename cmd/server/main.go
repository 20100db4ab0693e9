// Command server runs the document registry HTTP service.
//
// main wires config, storage, events, observability and the router, then
// supervises the server and the event worker until a shutdown signal.
// Business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"quire/internal/event"
	"quire/internal/kv"
	"quire/internal/platform/config"
	"quire/internal/platform/httpserver"
	"quire/internal/platform/logger"
	"quire/internal/platform/metrics"
	platformredis "quire/internal/platform/redis"
	"quire/internal/platform/tracing"
	"quire/internal/registry/handler"
	registrymetrics "quire/internal/registry/metrics"
	"quire/internal/registry/service"
	"quire/internal/registry/store"
	transport "quire/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, err := tracing.NewProvider(ctx, cfg.Trace)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", "error", err.Error())
		}
	}()

	kvStore, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer kvStore.Close()

	publisher, err := newPublisher(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init event publisher: %w", err)
	}
	recorder := event.NewRecorder(publisher, log, 0)

	registry := service.New(
		store.New(kvStore),
		recorder,
		registrymetrics.New(),
		tracer.Tracer(),
		log,
	)

	router := transport.NewRouter(handler.New(registry, log), kvStore, log, metrics.New())
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting quire", "addr", cfg.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		return recorder.Run(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func openStore(cfg config.Config, log *slog.Logger) (kv.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("memory store selected, documents will not survive restart")
		return kv.NewMemoryStore(), nil
	case config.StoreSQLite:
		return kv.NewSQLiteStore(cfg.SQLitePath)
	case config.StoreRedis:
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("redis store selected but QUIRE_REDIS_URL is empty")
		}
		return kv.NewRedisStore(client.Client, cfg.Redis.KeyPrefix), nil
	case config.StorePostgres:
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("postgres store selected but QUIRE_POSTGRES_URL is empty")
		}
		return kv.NewPostgresStore(cfg.Postgres.URL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

func newPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (event.Publisher, error) {
	if cfg.Kafka.Brokers == "" {
		return event.NewLogPublisher(log), nil
	}
	return event.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
}
