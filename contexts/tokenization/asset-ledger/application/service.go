package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"assetledger/contexts/tokenization/asset-ledger/domain/entities"
	domainerrors "assetledger/contexts/tokenization/asset-ledger/domain/errors"
	"assetledger/contexts/tokenization/asset-ledger/ports"
)

// Service orchestrates the eight ledger operations. Every operation runs
// authorize -> validate (reads only) -> one atomic repository command; the
// repository commands re-assert their preconditions inside the storage
// transaction and append the operation's event to the outbox, so a failure
// anywhere leaves no partial state and no event.
type Service struct {
	Registry       ports.AssetRegistry
	Holdings       ports.HolderLedger
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// CreateAsset mints a new asset and seeds the creator's holding with the
// full supply. Creation is the one operation whose replay would mint again,
// so it is guarded by the idempotency store: a repeated key with the same
// payload replays the stored record, a different payload conflicts.
func (s Service) CreateAsset(
	ctx context.Context,
	idempotencyKey string,
	caller string,
	input ports.CreateAssetInput,
) (entities.AssetRecord, bool, error) {
	caller = strings.TrimSpace(caller)
	if !Authorize(RoleAny, caller, entities.AssetRecord{}) {
		return entities.AssetRecord{}, false, domainerrors.ErrUnauthorized
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return entities.AssetRecord{}, false, domainerrors.ErrIdempotencyKeyMissing
	}
	if err := validateCreateInput(input); err != nil {
		return entities.AssetRecord{}, false, err
	}

	now := s.now()
	requestHash := hashPayload(map[string]any{
		"creator":        caller,
		"asset_name":     strings.TrimSpace(input.AssetName),
		"unit_name":      strings.TrimSpace(input.UnitName),
		"url":            strings.TrimSpace(input.URL),
		"metadata_hash":  hex.EncodeToString(input.MetadataHash),
		"total":          input.Total,
		"decimals":       input.Decimals,
		"default_frozen": input.DefaultFrozen,
		"manager":        strings.TrimSpace(input.Manager),
		"reserve":        strings.TrimSpace(input.Reserve),
		"freeze":         strings.TrimSpace(input.Freeze),
		"clawback":       strings.TrimSpace(input.Clawback),
	})

	stored, found, err := s.Idempotency.GetRecord(ctx, strings.TrimSpace(idempotencyKey), now)
	if err != nil {
		return entities.AssetRecord{}, false, err
	}
	if found {
		if stored.RequestHash != requestHash {
			return entities.AssetRecord{}, false, domainerrors.ErrIdempotencyConflict
		}
		var replayed entities.AssetRecord
		if err := json.Unmarshal(stored.ResponsePayload, &replayed); err != nil {
			return entities.AssetRecord{}, false, err
		}
		return replayed, true, nil
	}

	record := entities.AssetRecord{
		Creator:       caller,
		AssetName:     strings.TrimSpace(input.AssetName),
		UnitName:      strings.TrimSpace(input.UnitName),
		URL:           strings.TrimSpace(input.URL),
		MetadataHash:  append([]byte(nil), input.MetadataHash...),
		Total:         input.Total,
		Decimals:      input.Decimals,
		DefaultFrozen: input.DefaultFrozen,
		Manager:       roleFromAddress(input.Manager),
		Reserve:       roleFromAddress(input.Reserve),
		Freeze:        roleFromAddress(input.Freeze),
		Clawback:      roleFromAddress(input.Clawback),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.Registry.CreateAsset(ctx, record)
	if err != nil {
		return entities.AssetRecord{}, false, err
	}

	payload, err := json.Marshal(created)
	if err != nil {
		return entities.AssetRecord{}, false, err
	}
	if err := s.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             strings.TrimSpace(idempotencyKey),
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       now.Add(s.idempotencyTTL()),
	}); err != nil {
		return entities.AssetRecord{}, false, err
	}

	ResolveLogger(s.Logger).Info("asset created",
		"event", "asset_created",
		"module", "tokenization/asset-ledger",
		"layer", "application",
		"asset_id", created.AssetID,
		"creator", created.Creator,
		"total", created.Total,
	)
	return created, false, nil
}

// ReconfigureAsset rewrites role slots. A slot that was cleared is locked
// forever; patching it fails before anything mutates.
func (s Service) ReconfigureAsset(
	ctx context.Context,
	caller string,
	assetID uint64,
	patch ports.RolePatch,
) (entities.AssetRecord, error) {
	caller = strings.TrimSpace(caller)
	if patch.IsEmpty() {
		return entities.AssetRecord{}, domainerrors.ErrInvalidParameters
	}

	record, err := s.liveAsset(ctx, assetID)
	if err != nil {
		return entities.AssetRecord{}, err
	}
	if !Authorize(RoleManager, caller, record) {
		return entities.AssetRecord{}, domainerrors.ErrUnauthorized
	}
	if err := checkPatchAgainstLocks(record, patch); err != nil {
		return entities.AssetRecord{}, err
	}

	updated, err := s.Registry.Reconfigure(ctx, assetID, patch, caller)
	if err != nil {
		return entities.AssetRecord{}, err
	}

	ResolveLogger(s.Logger).Info("asset reconfigured",
		"event", "asset_reconfigured",
		"module", "tokenization/asset-ledger",
		"layer", "application",
		"asset_id", assetID,
		"changed_by", caller,
	)
	return updated, nil
}

// OptIn registers the caller as a holder of the asset with a zero balance.
// The new holding starts frozen when the asset was created default-frozen.
func (s Service) OptIn(ctx context.Context, caller string, assetID uint64) (entities.Holding, error) {
	caller = strings.TrimSpace(caller)
	if !Authorize(RoleAny, caller, entities.AssetRecord{}) {
		return entities.Holding{}, domainerrors.ErrUnauthorized
	}
	if _, err := s.liveAsset(ctx, assetID); err != nil {
		return entities.Holding{}, err
	}

	holding, err := s.Holdings.OptIn(ctx, assetID, caller)
	if err != nil {
		return entities.Holding{}, err
	}

	ResolveLogger(s.Logger).Info("account opted in",
		"event", "asset_opted_in",
		"module", "tokenization/asset-ledger",
		"layer", "application",
		"asset_id", assetID,
		"account", caller,
	)
	return holding, nil
}

// OptOut removes the caller's zero-balance holding. It works against
// destroyed assets too, so stale zero holdings can always be cleaned up.
func (s Service) OptOut(ctx context.Context, caller string, assetID uint64) error {
	caller = strings.TrimSpace(caller)
	if !Authorize(RoleHolder, caller, entities.AssetRecord{}) {
		return domainerrors.ErrUnauthorized
	}

	if err := s.Holdings.OptOut(ctx, assetID, caller); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("account opted out",
		"event", "asset_opted_out",
		"module", "tokenization/asset-ledger",
		"layer", "application",
		"asset_id", assetID,
		"account", caller,
	)
	return nil
}

// Transfer moves balance from the caller to an opted-in receiver. A frozen
// flag on either holding blocks it.
func (s Service) Transfer(ctx context.Context, caller string, input ports.TransferInput) (ports.MoveResult, error) {
	caller = strings.TrimSpace(caller)
	to := strings.TrimSpace(input.To)
	if input.Amount == 0 {
		return ports.MoveResult{}, domainerrors.ErrZeroAmount
	}
	if to == "" {
		return ports.MoveResult{}, domainerrors.ErrInvalidParameters
	}

	record, err := s.liveAsset(ctx, input.AssetID)
	if err != nil {
		return ports.MoveResult{}, err
	}
	if !Authorize(RoleHolder, caller, record) {
		return ports.MoveResult{}, domainerrors.ErrUnauthorized
	}

	from, err := s.Holdings.GetHolding(ctx, input.AssetID, caller)
	if err != nil {
		return ports.MoveResult{}, err
	}
	receiver, err := s.Holdings.GetHolding(ctx, input.AssetID, to)
	if err != nil {
		return ports.MoveResult{}, err
	}
	if from.Frozen || receiver.Frozen {
		return ports.MoveResult{}, domainerrors.ErrAccountFrozen
	}
	if from.Balance < input.Amount {
		return ports.MoveResult{}, domainerrors.ErrInsufficientBalance
	}

	result, err := s.Holdings.Move(ctx, ports.MoveInput{
		AssetID:     input.AssetID,
		From:        caller,
		To:          to,
		Amount:      input.Amount,
		InitiatedBy: caller,
	})
	if err != nil {
		return ports.MoveResult{}, err
	}

	ResolveLogger(s.Logger).Info("asset transferred",
		"event", "asset_transferred",
		"module", "tokenization/asset-ledger",
		"layer", "application",
		"asset_id", input.AssetID,
		"sender", caller,
		"receiver", to,
		"amount", input.Amount,
	)
	return result, nil
}

// SetFrozen toggles the frozen flag on a holding. Re-applying the current
// value is a successful no-op; both paths still emit the freeze event.
func (s Service) SetFrozen(ctx context.Context, caller string, input ports.FreezeInput) (entities.Holding, error) {
	caller = strings.TrimSpace(caller)
	account := strings.TrimSpace(input.Account)
	if account == "" {
		return entities.Holding{}, domainerrors.ErrInvalidParameters
	}

	record, err := s.liveAsset(ctx, input.AssetID)
	if err != nil {
		return entities.Holding{}, err
	}
	if !Authorize(RoleFreeze, caller, record) {
		return entities.Holding{}, domainerrors.ErrUnauthorized
	}

	holding, err := s.Holdings.SetFrozen(ctx, input.AssetID, account, input.Frozen, caller)
	if err != nil {
		return entities.Holding{}, err
	}

	ResolveLogger(s.Logger).Info("holding frozen flag set",
		"event", "asset_frozen",
		"module", "tokenization/asset-ledger",
		"layer", "application",
		"asset_id", input.AssetID,
		"account", account,
		"frozen", input.Frozen,
	)
	return holding, nil
}

// Revoke is the clawback-only forced transfer. It ignores frozen flags on
// both holdings but still requires balance and an opted-in destination.
func (s Service) Revoke(ctx context.Context, caller string, input ports.RevokeInput) (ports.MoveResult, error) {
	caller = strings.TrimSpace(caller)
	from := strings.TrimSpace(input.From)
	to := strings.TrimSpace(input.To)
	if input.Amount == 0 {
		return ports.MoveResult{}, domainerrors.ErrZeroAmount
	}
	if from == "" || to == "" {
		return ports.MoveResult{}, domainerrors.ErrInvalidParameters
	}

	record, err := s.liveAsset(ctx, input.AssetID)
	if err != nil {
		return ports.MoveResult{}, err
	}
	if !Authorize(RoleClawback, caller, record) {
		return ports.MoveResult{}, domainerrors.ErrUnauthorized
	}

	source, err := s.Holdings.GetHolding(ctx, input.AssetID, from)
	if err != nil {
		return ports.MoveResult{}, err
	}
	if _, err := s.Holdings.GetHolding(ctx, input.AssetID, to); err != nil {
		return ports.MoveResult{}, err
	}
	if source.Balance < input.Amount {
		return ports.MoveResult{}, domainerrors.ErrInsufficientBalance
	}

	result, err := s.Holdings.Move(ctx, ports.MoveInput{
		AssetID:     input.AssetID,
		From:        from,
		To:          to,
		Amount:      input.Amount,
		Clawback:    true,
		InitiatedBy: caller,
	})
	if err != nil {
		return ports.MoveResult{}, err
	}

	ResolveLogger(s.Logger).Info("asset revoked",
		"event", "asset_revoked",
		"module", "tokenization/asset-ledger",
		"layer", "application",
		"asset_id", input.AssetID,
		"from", from,
		"to", to,
		"amount", input.Amount,
		"clawback", caller,
	)
	return result, nil
}

// DestroyAsset retires the asset. The registry verifies consolidation (full
// supply back in the creator's or reserve's holding, every other holding
// zero) inside the same transaction that flips the record.
func (s Service) DestroyAsset(ctx context.Context, caller string, assetID uint64) error {
	caller = strings.TrimSpace(caller)

	record, err := s.liveAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if !Authorize(RoleManager, caller, record) {
		return domainerrors.ErrUnauthorized
	}

	if err := s.Registry.MarkDestroyed(ctx, assetID, caller); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("asset destroyed",
		"event", "asset_destroyed",
		"module", "tokenization/asset-ledger",
		"layer", "application",
		"asset_id", assetID,
		"destroyer", caller,
	)
	return nil
}

// GetAsset returns the record, including destroyed records flagged as such.
func (s Service) GetAsset(ctx context.Context, assetID uint64) (entities.AssetRecord, error) {
	return s.Registry.GetAsset(ctx, assetID)
}

func (s Service) GetHolding(ctx context.Context, assetID uint64, account string) (entities.Holding, error) {
	return s.Holdings.GetHolding(ctx, assetID, strings.TrimSpace(account))
}

func (s Service) ListAssetHoldings(ctx context.Context, assetID uint64) ([]entities.Holding, error) {
	if _, err := s.Registry.GetAsset(ctx, assetID); err != nil {
		return nil, err
	}
	return s.Holdings.ListHoldingsByAsset(ctx, assetID)
}

func (s Service) ListAccountHoldings(ctx context.Context, account string) ([]entities.Holding, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, domainerrors.ErrInvalidParameters
	}
	return s.Holdings.ListHoldingsByAccount(ctx, account)
}

// liveAsset resolves an asset that still accepts operations. Destroyed
// records surface as not found here; only direct lookups see them.
func (s Service) liveAsset(ctx context.Context, assetID uint64) (entities.AssetRecord, error) {
	record, err := s.Registry.GetAsset(ctx, assetID)
	if err != nil {
		return entities.AssetRecord{}, err
	}
	if record.Destroyed {
		return entities.AssetRecord{}, domainerrors.ErrAssetNotFound
	}
	return record, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func validateCreateInput(input ports.CreateAssetInput) error {
	if input.Total == 0 {
		return domainerrors.ErrInvalidParameters
	}
	if input.Decimals > entities.MaxAssetDecimals {
		return domainerrors.ErrInvalidParameters
	}
	if len(strings.TrimSpace(input.AssetName)) > entities.MaxAssetNameBytes {
		return domainerrors.ErrInvalidParameters
	}
	if len(strings.TrimSpace(input.UnitName)) > entities.MaxUnitNameBytes {
		return domainerrors.ErrInvalidParameters
	}
	if len(strings.TrimSpace(input.URL)) > entities.MaxURLBytes {
		return domainerrors.ErrInvalidParameters
	}
	if len(input.MetadataHash) != 0 && len(input.MetadataHash) != entities.MetadataHashBytes {
		return domainerrors.ErrInvalidParameters
	}
	return nil
}

func checkPatchAgainstLocks(record entities.AssetRecord, patch ports.RolePatch) error {
	if patch.Manager != nil && !record.Manager.Assigned {
		return domainerrors.ErrFieldLocked
	}
	if patch.Reserve != nil && !record.Reserve.Assigned {
		return domainerrors.ErrFieldLocked
	}
	if patch.Freeze != nil && !record.Freeze.Assigned {
		return domainerrors.ErrFieldLocked
	}
	if patch.Clawback != nil && !record.Clawback.Assigned {
		return domainerrors.ErrFieldLocked
	}
	return nil
}

func roleFromAddress(address string) entities.RoleAddress {
	address = strings.TrimSpace(address)
	if address == "" {
		return entities.EmptyRole()
	}
	return entities.AssignedRole(address)
}

func hashPayload(payload map[string]any) string {
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
