package assetledger

import (
	"log/slog"
	"time"

	httpadapter "assetledger/contexts/tokenization/asset-ledger/adapters/http"
	"assetledger/contexts/tokenization/asset-ledger/adapters/memory"
	"assetledger/contexts/tokenization/asset-ledger/application"
	"assetledger/contexts/tokenization/asset-ledger/ports"
)

// Module is the composition surface for the asset ledger.
// Runtime wiring should consume Handler; Store is exposed for tests/inspection.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Registry       ports.AssetRegistry
	Holdings       ports.HolderLedger
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// NewModule wires the ledger service against explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Registry:       deps.Registry,
		Holdings:       deps.Holdings,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}

	handler := httpadapter.Handler{
		Service: service,
		Logger:  deps.Logger,
	}

	return Module{Handler: handler}
}

// NewInMemoryModule wires the ledger against the in-memory store. Used by
// tests and as the developer bootstrap path when no database is configured.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Registry:       store,
		Holdings:       store,
		Idempotency:    store,
		Clock:          store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
