package ports

import (
	"context"
	"time"

	"assetledger/contexts/tokenization/asset-ledger/domain/entities"
	contractsv1 "assetledger/contracts/gen/events/v1"
)

type EventEnvelope = contractsv1.Envelope

// CreateAssetInput carries the creation parameters before validation. Role
// addresses left empty become unassigned slots.
type CreateAssetInput struct {
	AssetName     string
	UnitName      string
	URL           string
	MetadataHash  []byte
	Total         uint64
	Decimals      uint8
	DefaultFrozen bool
	Manager       string
	Reserve       string
	Freeze        string
	Clawback      string
}

// RolePatch is a partial role reconfiguration. Nil fields are left unchanged;
// a present field with Assigned=false clears the slot permanently.
type RolePatch struct {
	Manager  *entities.RoleAddress
	Reserve  *entities.RoleAddress
	Freeze   *entities.RoleAddress
	Clawback *entities.RoleAddress
}

func (p RolePatch) IsEmpty() bool {
	return p.Manager == nil && p.Reserve == nil && p.Freeze == nil && p.Clawback == nil
}

// TransferInput is an ordinary holder-initiated transfer; the sender is the
// authenticated caller.
type TransferInput struct {
	AssetID uint64
	To      string
	Amount  uint64
}

// RevokeInput is a clawback-initiated forced transfer out of From.
type RevokeInput struct {
	AssetID uint64
	From    string
	To      string
	Amount  uint64
}

type FreezeInput struct {
	AssetID uint64
	Account string
	Frozen  bool
}

// MoveInput is a balance movement between two holdings of one asset. With
// Clawback set the frozen flags on both holdings are ignored.
type MoveInput struct {
	AssetID     uint64
	From        string
	To          string
	Amount      uint64
	Clawback    bool
	InitiatedBy string
}

type MoveResult struct {
	FromBalance uint64
	ToBalance   uint64
}

// AssetRegistry owns asset records and identifier allocation. Identifiers are
// assigned by a monotonic allocator and never reused, even after destruction.
// Every mutating command is atomic: record change, holding side effects and
// the outbox event commit together or not at all.
type AssetRegistry interface {
	// CreateAsset allocates a fresh identifier, persists the record and seeds
	// the creator's holding with the full supply (frozen per DefaultFrozen).
	CreateAsset(ctx context.Context, record entities.AssetRecord) (entities.AssetRecord, error)

	// GetAsset returns the record for assetID, including destroyed records
	// (flagged via Destroyed) for historical lookups.
	GetAsset(ctx context.Context, assetID uint64) (entities.AssetRecord, error)

	// Reconfigure applies patch to the asset's role slots. A patch touching a
	// slot that is already cleared fails the whole command.
	Reconfigure(ctx context.Context, assetID uint64, patch RolePatch, changedBy string) (entities.AssetRecord, error)

	// MarkDestroyed retires the asset after verifying the full supply sits in
	// the creator's or reserve's holding, and removes that final holding.
	MarkDestroyed(ctx context.Context, assetID uint64, destroyer string) error
}

// HolderLedger owns the (asset, account) balance book and enforces per-asset
// supply conservation on every mutating command.
type HolderLedger interface {
	OptIn(ctx context.Context, assetID uint64, account string) (entities.Holding, error)
	OptOut(ctx context.Context, assetID uint64, account string) error
	Move(ctx context.Context, input MoveInput) (MoveResult, error)
	SetFrozen(ctx context.Context, assetID uint64, account string, frozen bool, changedBy string) (entities.Holding, error)

	GetHolding(ctx context.Context, assetID uint64, account string) (entities.Holding, error)
	ListHoldingsByAsset(ctx context.Context, assetID uint64) ([]entities.Holding, error)
	ListHoldingsByAccount(ctx context.Context, account string) ([]entities.Holding, error)
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}
