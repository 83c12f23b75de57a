package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"assetledger/contexts/tokenization/asset-ledger/domain/entities"
	domainerrors "assetledger/contexts/tokenization/asset-ledger/domain/errors"
	"assetledger/contexts/tokenization/asset-ledger/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

const allocatorRowID = 1

// Repository is the Postgres registry and holder ledger. Every mutating
// command runs in one transaction that locks the asset row first, so
// operations against the same asset serialize; the conservation re-check and
// the outbox event commit inside the same transaction.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the ledger tables. Called once at bootstrap.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&assetModel{},
		&holdingModel{},
		&allocatorModel{},
		&outboxModel{},
		&idempotencyModel{},
	)
}

func (r *Repository) CreateAsset(ctx context.Context, record entities.AssetRecord) (entities.AssetRecord, error) {
	now := record.CreatedAt.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
		record.CreatedAt = now
		record.UpdatedAt = now
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alloc allocatorModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("allocator_id = ?", allocatorRowID).
			First(&alloc).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			alloc = allocatorModel{AllocatorID: allocatorRowID, NextAssetID: 1}
			if err := tx.Create(&alloc).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		record.AssetID = alloc.NextAssetID
		if err := tx.Model(&allocatorModel{}).
			Where("allocator_id = ?", allocatorRowID).
			Update("next_asset_id", alloc.NextAssetID+1).
			Error; err != nil {
			return err
		}

		row := assetModelFromEntity(record)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		holding := holdingModel{
			AssetID:   record.AssetID,
			Account:   record.Creator,
			Balance:   record.Total,
			Frozen:    record.DefaultFrozen,
			OptedInAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&holding).Error; err != nil {
			return err
		}

		if err := assertConservation(tx, record.AssetID, record.Total); err != nil {
			return err
		}
		return appendOutbox(tx, ports.EventTypeAssetCreated, record.AssetID, now, map[string]any{
			"asset_id":   record.AssetID,
			"asset_name": record.AssetName,
			"creator":    record.Creator,
			"total":      record.Total,
		})
	})
	if err != nil {
		return entities.AssetRecord{}, err
	}
	return record, nil
}

func (r *Repository) GetAsset(ctx context.Context, assetID uint64) (entities.AssetRecord, error) {
	var row assetModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AssetRecord{}, domainerrors.ErrAssetNotFound
		}
		return entities.AssetRecord{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) Reconfigure(
	ctx context.Context,
	assetID uint64,
	patch ports.RolePatch,
	changedBy string,
) (entities.AssetRecord, error) {
	var out entities.AssetRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockAsset(tx, assetID)
		if err != nil {
			return err
		}

		record := row.toEntity()
		if err := applyRolePatch(&record, patch); err != nil {
			return err
		}
		now := time.Now().UTC()
		record.UpdatedAt = now

		if err := tx.Model(&assetModel{}).
			Where("asset_id = ?", assetID).
			Updates(map[string]any{
				"manager_address":   record.Manager.Address,
				"manager_assigned":  record.Manager.Assigned,
				"reserve_address":   record.Reserve.Address,
				"reserve_assigned":  record.Reserve.Assigned,
				"freeze_address":    record.Freeze.Address,
				"freeze_assigned":   record.Freeze.Assigned,
				"clawback_address":  record.Clawback.Address,
				"clawback_assigned": record.Clawback.Assigned,
				"updated_at":        now,
			}).
			Error; err != nil {
			return err
		}

		out = record
		return appendOutbox(tx, ports.EventTypeAssetReconfigured, assetID, now, map[string]any{
			"asset_id":   assetID,
			"manager":    roleValue(record.Manager),
			"reserve":    roleValue(record.Reserve),
			"freeze":     roleValue(record.Freeze),
			"clawback":   roleValue(record.Clawback),
			"changed_by": changedBy,
		})
	})
	if err != nil {
		return entities.AssetRecord{}, err
	}
	return out, nil
}

func (r *Repository) MarkDestroyed(ctx context.Context, assetID uint64, destroyer string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockAsset(tx, assetID)
		if err != nil {
			return err
		}
		record := row.toEntity()

		var holdings []holdingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("asset_id = ?", assetID).
			Order("account ASC").
			Find(&holdings).
			Error; err != nil {
			return err
		}

		consolidated, ok := consolidatedHolding(record, holdings)
		if !ok {
			return domainerrors.ErrSupplyNotConsolidated
		}

		now := time.Now().UTC()
		if err := tx.Where("asset_id = ? AND account = ?", assetID, consolidated.Account).
			Delete(&holdingModel{}).
			Error; err != nil {
			return err
		}
		if err := tx.Model(&assetModel{}).
			Where("asset_id = ?", assetID).
			Updates(map[string]any{
				"destroyed":  true,
				"updated_at": now,
			}).
			Error; err != nil {
			return err
		}

		return appendOutbox(tx, ports.EventTypeAssetDestroyed, assetID, now, map[string]any{
			"asset_id":  assetID,
			"destroyer": destroyer,
		})
	})
}

func (r *Repository) OptIn(ctx context.Context, assetID uint64, account string) (entities.Holding, error) {
	var out entities.Holding
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockAsset(tx, assetID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		holding := holdingModel{
			AssetID:   assetID,
			Account:   strings.TrimSpace(account),
			Balance:   0,
			Frozen:    row.DefaultFrozen,
			OptedInAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&holding).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyOptedIn
			}
			return err
		}

		out = holding.toEntity()
		return appendOutbox(tx, ports.EventTypeAssetOptedIn, assetID, now, map[string]any{
			"asset_id": assetID,
			"account":  holding.Account,
		})
	})
	if err != nil {
		return entities.Holding{}, err
	}
	return out, nil
}

func (r *Repository) OptOut(ctx context.Context, assetID uint64, account string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holding holdingModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("asset_id = ? AND account = ?", assetID, strings.TrimSpace(account)).
			First(&holding).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrNotOptedIn
			}
			return err
		}
		if holding.Balance != 0 {
			return domainerrors.ErrNonzeroBalance
		}

		if err := tx.Where("asset_id = ? AND account = ?", assetID, holding.Account).
			Delete(&holdingModel{}).
			Error; err != nil {
			return err
		}

		return appendOutbox(tx, ports.EventTypeAssetOptedOut, assetID, time.Now().UTC(), map[string]any{
			"asset_id": assetID,
			"account":  holding.Account,
		})
	})
}

func (r *Repository) Move(ctx context.Context, input ports.MoveInput) (ports.MoveResult, error) {
	var out ports.MoveResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockAsset(tx, input.AssetID)
		if err != nil {
			return err
		}

		accounts := []string{input.From, input.To}
		if input.From == input.To {
			accounts = []string{input.From}
		}
		var rows []holdingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("asset_id = ? AND account IN ?", input.AssetID, accounts).
			Order("account ASC").
			Find(&rows).
			Error; err != nil {
			return err
		}
		if len(rows) != len(accounts) {
			return domainerrors.ErrNotOptedIn
		}

		byAccount := make(map[string]holdingModel, len(rows))
		for _, holding := range rows {
			byAccount[holding.Account] = holding
		}
		from := byAccount[input.From]
		to := byAccount[input.To]

		if !input.Clawback && (from.Frozen || to.Frozen) {
			return domainerrors.ErrAccountFrozen
		}
		if from.Balance < input.Amount {
			return domainerrors.ErrInsufficientBalance
		}

		now := time.Now().UTC()
		if input.From != input.To {
			if err := updateBalance(tx, input.AssetID, input.From, from.Balance-input.Amount, now); err != nil {
				return err
			}
			if err := updateBalance(tx, input.AssetID, input.To, to.Balance+input.Amount, now); err != nil {
				return err
			}
			out = ports.MoveResult{
				FromBalance: from.Balance - input.Amount,
				ToBalance:   to.Balance + input.Amount,
			}
		} else {
			out = ports.MoveResult{FromBalance: from.Balance, ToBalance: from.Balance}
		}

		if err := assertConservation(tx, input.AssetID, row.Total); err != nil {
			return err
		}

		eventType := ports.EventTypeAssetTransferred
		payload := map[string]any{
			"asset_id": input.AssetID,
			"sender":   input.From,
			"receiver": input.To,
			"amount":   input.Amount,
		}
		if input.Clawback {
			eventType = ports.EventTypeAssetRevoked
			payload = map[string]any{
				"asset_id": input.AssetID,
				"account":  input.From,
				"to":       input.To,
				"amount":   input.Amount,
				"clawback": input.InitiatedBy,
			}
		}
		return appendOutbox(tx, eventType, input.AssetID, now, payload)
	})
	if err != nil {
		return ports.MoveResult{}, err
	}
	return out, nil
}

func (r *Repository) SetFrozen(
	ctx context.Context,
	assetID uint64,
	account string,
	frozen bool,
	changedBy string,
) (entities.Holding, error) {
	var out entities.Holding
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockAsset(tx, assetID); err != nil {
			return err
		}

		var holding holdingModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("asset_id = ? AND account = ?", assetID, strings.TrimSpace(account)).
			First(&holding).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrNotOptedIn
			}
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&holdingModel{}).
			Where("asset_id = ? AND account = ?", assetID, holding.Account).
			Updates(map[string]any{
				"frozen":     frozen,
				"updated_at": now,
			}).
			Error; err != nil {
			return err
		}

		holding.Frozen = frozen
		holding.UpdatedAt = now
		out = holding.toEntity()
		return appendOutbox(tx, ports.EventTypeAssetFrozen, assetID, now, map[string]any{
			"asset_id":       assetID,
			"account":        holding.Account,
			"frozen":         frozen,
			"freeze_address": changedBy,
		})
	})
	if err != nil {
		return entities.Holding{}, err
	}
	return out, nil
}

func (r *Repository) GetHolding(ctx context.Context, assetID uint64, account string) (entities.Holding, error) {
	var row holdingModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND account = ?", assetID, strings.TrimSpace(account)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Holding{}, domainerrors.ErrNotOptedIn
		}
		return entities.Holding{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListHoldingsByAsset(ctx context.Context, assetID uint64) ([]entities.Holding, error) {
	var rows []holdingModel
	if err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("account ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Holding, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListHoldingsByAccount(ctx context.Context, account string) ([]entities.Holding, error) {
	var rows []holdingModel
	if err := r.db.WithContext(ctx).
		Where("account = ?", strings.TrimSpace(account)).
		Order("asset_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Holding, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", strings.TrimSpace(key), now.UTC()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}
	return ports.IdempotencyRecord{
		Key:             row.Key,
		RequestHash:     row.RequestHash,
		ResponsePayload: row.ResponsePayload,
		ExpiresAt:       row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             strings.TrimSpace(record.Key),
		RequestHash:     record.RequestHash,
		ResponsePayload: record.ResponsePayload,
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	if row.Key == "" {
		return domainerrors.ErrInvalidParameters
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
	if err != nil {
		return err
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).Where("key = ?", row.Key).First(&existing).Error; err != nil {
		return err
	}
	if existing.RequestHash != row.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	ts := publishedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &ts,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAssetNotFound
	}
	return nil
}

// lockAsset takes the per-asset exclusive lock every mutation starts with.
// Destroyed assets are indistinguishable from absent ones here.
func lockAsset(tx *gorm.DB, assetID uint64) (assetModel, error) {
	var row assetModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("asset_id = ?", assetID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return assetModel{}, domainerrors.ErrAssetNotFound
		}
		return assetModel{}, err
	}
	if row.Destroyed {
		return assetModel{}, domainerrors.ErrAssetNotFound
	}
	return row, nil
}

func updateBalance(tx *gorm.DB, assetID uint64, account string, balance uint64, now time.Time) error {
	result := tx.Model(&holdingModel{}).
		Where("asset_id = ? AND account = ?", assetID, account).
		Updates(map[string]any{
			"balance":    balance,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotOptedIn
	}
	return nil
}

// assertConservation re-derives supply conservation inside the transaction;
// a mismatch rolls the whole operation back.
func assertConservation(tx *gorm.DB, assetID uint64, total uint64) error {
	var sum int64
	err := tx.Model(&holdingModel{}).
		Where("asset_id = ?", assetID).
		Select("COALESCE(SUM(balance), 0)::bigint").
		Scan(&sum).
		Error
	if err != nil {
		return err
	}
	if sum < 0 || uint64(sum) != total {
		return domainerrors.ErrInternalInvariantViolation
	}
	return nil
}

func appendOutbox(
	tx *gorm.DB,
	eventType string,
	assetID uint64,
	occurredAt time.Time,
	payload map[string]any,
) error {
	envelope, err := ports.NewAssetEnvelope(uuid.NewString(), eventType, assetID, occurredAt, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      raw,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt,
	}
	return tx.Create(&row).Error
}

func consolidatedHolding(record entities.AssetRecord, holdings []holdingModel) (holdingModel, bool) {
	var consolidated holdingModel
	found := false
	for _, holding := range holdings {
		if holding.Balance == 0 {
			continue
		}
		if found || holding.Balance != record.Total {
			return holdingModel{}, false
		}
		if holding.Account != record.Creator && !record.Reserve.Held(holding.Account) {
			return holdingModel{}, false
		}
		consolidated = holding
		found = true
	}
	return consolidated, found
}

func applyRolePatch(record *entities.AssetRecord, patch ports.RolePatch) error {
	if patch.Manager != nil {
		if !record.Manager.Assigned {
			return domainerrors.ErrFieldLocked
		}
		record.Manager = *patch.Manager
	}
	if patch.Reserve != nil {
		if !record.Reserve.Assigned {
			return domainerrors.ErrFieldLocked
		}
		record.Reserve = *patch.Reserve
	}
	if patch.Freeze != nil {
		if !record.Freeze.Assigned {
			return domainerrors.ErrFieldLocked
		}
		record.Freeze = *patch.Freeze
	}
	if patch.Clawback != nil {
		if !record.Clawback.Assigned {
			return domainerrors.ErrFieldLocked
		}
		record.Clawback = *patch.Clawback
	}
	return nil
}

func roleValue(role entities.RoleAddress) any {
	if !role.Assigned {
		return nil
	}
	return role.Address
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
