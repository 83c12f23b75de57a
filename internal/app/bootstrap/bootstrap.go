package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	assetledger "assetledger/contexts/tokenization/asset-ledger"
	postgresadapter "assetledger/contexts/tokenization/asset-ledger/adapters/postgres"
	workerapp "assetledger/contexts/tokenization/asset-ledger/application/workers"
	"assetledger/internal/platform/config"
	"assetledger/internal/platform/db"
	"assetledger/internal/platform/httpserver"
	"assetledger/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	// Without a DSN the ledger runs against the in-memory store. That path
	// keeps the outbox inside the process, so the relay worker cannot drain it.
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		module := assetledger.NewInMemoryModule(logger)
		server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
		return &APIApp{server: server, logger: logger}, nil
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := postgresadapter.Migrate(pg.DB); err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := assetledger.NewModule(assetledger.Dependencies{
		Registry:       repo,
		Holdings:       repo,
		Idempotency:    repo,
		Clock:          postgresadapter.SystemClock{},
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			Topic:     "asset.events",
			BatchSize: 100,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"relay_enabled", w.relayEnabled,
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
