package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"assetledger/contexts/tokenization/asset-ledger/domain/entities"
	domainerrors "assetledger/contexts/tokenization/asset-ledger/domain/errors"
	"assetledger/contexts/tokenization/asset-ledger/ports"

	"github.com/google/uuid"
)

// Store is the in-memory registry and holder ledger. One mutex serializes
// every command, which is the whole concurrency contract of the ledger: each
// operation observes all effects of every previously committed one.
type Store struct {
	mu sync.Mutex

	nextAssetID uint64
	assets      map[uint64]entities.AssetRecord
	holdings    map[holdingKey]entities.Holding
	idempotency map[string]ports.IdempotencyRecord
	outbox      map[string]outboxRecord
}

type holdingKey struct {
	AssetID uint64
	Account string
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

func NewStore() *Store {
	return &Store{
		nextAssetID: 1,
		assets:      make(map[uint64]entities.AssetRecord),
		holdings:    make(map[holdingKey]entities.Holding),
		idempotency: make(map[string]ports.IdempotencyRecord),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) CreateAsset(_ context.Context, record entities.AssetRecord) (entities.AssetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.AssetID = s.nextAssetID
	s.nextAssetID++

	now := record.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
		record.CreatedAt = now
		record.UpdatedAt = now
	}

	s.assets[record.AssetID] = record
	s.holdings[holdingKey{AssetID: record.AssetID, Account: record.Creator}] = entities.Holding{
		AssetID:   record.AssetID,
		Account:   record.Creator,
		Balance:   record.Total,
		Frozen:    record.DefaultFrozen,
		OptedInAt: now,
		UpdatedAt: now,
	}

	if err := s.checkConservationLocked(record.AssetID); err != nil {
		delete(s.holdings, holdingKey{AssetID: record.AssetID, Account: record.Creator})
		delete(s.assets, record.AssetID)
		return entities.AssetRecord{}, err
	}

	if err := s.appendOutboxLocked(ports.EventTypeAssetCreated, record.AssetID, now, map[string]any{
		"asset_id":   record.AssetID,
		"asset_name": record.AssetName,
		"creator":    record.Creator,
		"total":      record.Total,
	}); err != nil {
		delete(s.holdings, holdingKey{AssetID: record.AssetID, Account: record.Creator})
		delete(s.assets, record.AssetID)
		return entities.AssetRecord{}, err
	}
	return copyRecord(record), nil
}

func (s *Store) GetAsset(_ context.Context, assetID uint64) (entities.AssetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.assets[assetID]
	if !ok {
		return entities.AssetRecord{}, domainerrors.ErrAssetNotFound
	}
	return copyRecord(record), nil
}

func (s *Store) Reconfigure(
	_ context.Context,
	assetID uint64,
	patch ports.RolePatch,
	changedBy string,
) (entities.AssetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.assets[assetID]
	if !ok || record.Destroyed {
		return entities.AssetRecord{}, domainerrors.ErrAssetNotFound
	}

	updated := record
	if err := applyRolePatch(&updated, patch); err != nil {
		return entities.AssetRecord{}, err
	}
	now := time.Now().UTC()
	updated.UpdatedAt = now
	s.assets[assetID] = updated

	if err := s.appendOutboxLocked(ports.EventTypeAssetReconfigured, assetID, now, map[string]any{
		"asset_id":   assetID,
		"manager":    roleValue(updated.Manager),
		"reserve":    roleValue(updated.Reserve),
		"freeze":     roleValue(updated.Freeze),
		"clawback":   roleValue(updated.Clawback),
		"changed_by": changedBy,
	}); err != nil {
		s.assets[assetID] = record
		return entities.AssetRecord{}, err
	}
	return copyRecord(updated), nil
}

func (s *Store) MarkDestroyed(_ context.Context, assetID uint64, destroyer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.assets[assetID]
	if !ok || record.Destroyed {
		return domainerrors.ErrAssetNotFound
	}

	consolidated, ok := s.consolidatedHoldingLocked(record)
	if !ok {
		return domainerrors.ErrSupplyNotConsolidated
	}

	now := time.Now().UTC()
	updated := record
	updated.Destroyed = true
	updated.UpdatedAt = now
	s.assets[assetID] = updated
	delete(s.holdings, holdingKey{AssetID: assetID, Account: consolidated.Account})

	if err := s.appendOutboxLocked(ports.EventTypeAssetDestroyed, assetID, now, map[string]any{
		"asset_id":  assetID,
		"destroyer": destroyer,
	}); err != nil {
		s.assets[assetID] = record
		s.holdings[holdingKey{AssetID: assetID, Account: consolidated.Account}] = consolidated
		return err
	}
	return nil
}

func (s *Store) OptIn(_ context.Context, assetID uint64, account string) (entities.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.assets[assetID]
	if !ok || record.Destroyed {
		return entities.Holding{}, domainerrors.ErrAssetNotFound
	}
	key := holdingKey{AssetID: assetID, Account: account}
	if _, exists := s.holdings[key]; exists {
		return entities.Holding{}, domainerrors.ErrAlreadyOptedIn
	}

	now := time.Now().UTC()
	holding := entities.Holding{
		AssetID:   assetID,
		Account:   account,
		Balance:   0,
		Frozen:    record.DefaultFrozen,
		OptedInAt: now,
		UpdatedAt: now,
	}
	s.holdings[key] = holding

	if err := s.appendOutboxLocked(ports.EventTypeAssetOptedIn, assetID, now, map[string]any{
		"asset_id": assetID,
		"account":  account,
	}); err != nil {
		delete(s.holdings, key)
		return entities.Holding{}, err
	}
	return holding, nil
}

func (s *Store) OptOut(_ context.Context, assetID uint64, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := holdingKey{AssetID: assetID, Account: account}
	holding, ok := s.holdings[key]
	if !ok {
		return domainerrors.ErrNotOptedIn
	}
	if holding.Balance != 0 {
		return domainerrors.ErrNonzeroBalance
	}
	delete(s.holdings, key)

	if err := s.appendOutboxLocked(ports.EventTypeAssetOptedOut, assetID, time.Now().UTC(), map[string]any{
		"asset_id": assetID,
		"account":  account,
	}); err != nil {
		s.holdings[key] = holding
		return err
	}
	return nil
}

func (s *Store) Move(_ context.Context, input ports.MoveInput) (ports.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.assets[input.AssetID]
	if !ok || record.Destroyed {
		return ports.MoveResult{}, domainerrors.ErrAssetNotFound
	}

	fromKey := holdingKey{AssetID: input.AssetID, Account: input.From}
	toKey := holdingKey{AssetID: input.AssetID, Account: input.To}
	from, ok := s.holdings[fromKey]
	if !ok {
		return ports.MoveResult{}, domainerrors.ErrNotOptedIn
	}
	to, ok := s.holdings[toKey]
	if !ok {
		return ports.MoveResult{}, domainerrors.ErrNotOptedIn
	}
	if !input.Clawback && (from.Frozen || to.Frozen) {
		return ports.MoveResult{}, domainerrors.ErrAccountFrozen
	}
	if from.Balance < input.Amount {
		return ports.MoveResult{}, domainerrors.ErrInsufficientBalance
	}

	now := time.Now().UTC()
	prevFrom, prevTo := from, to
	if input.From != input.To {
		from.Balance -= input.Amount
		to.Balance += input.Amount
	}
	from.UpdatedAt = now
	to.UpdatedAt = now
	s.holdings[fromKey] = from
	if input.From != input.To {
		s.holdings[toKey] = to
	}

	rollback := func() {
		s.holdings[fromKey] = prevFrom
		s.holdings[toKey] = prevTo
	}

	if err := s.checkConservationLocked(input.AssetID); err != nil {
		rollback()
		return ports.MoveResult{}, err
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
	if err := s.appendOutboxLocked(eventType, input.AssetID, now, payload); err != nil {
		rollback()
		return ports.MoveResult{}, err
	}

	result := ports.MoveResult{FromBalance: from.Balance, ToBalance: to.Balance}
	if input.From == input.To {
		result.ToBalance = from.Balance
	}
	return result, nil
}

func (s *Store) SetFrozen(
	_ context.Context,
	assetID uint64,
	account string,
	frozen bool,
	changedBy string,
) (entities.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.assets[assetID]
	if !ok || record.Destroyed {
		return entities.Holding{}, domainerrors.ErrAssetNotFound
	}
	key := holdingKey{AssetID: assetID, Account: account}
	holding, ok := s.holdings[key]
	if !ok {
		return entities.Holding{}, domainerrors.ErrNotOptedIn
	}

	prev := holding
	now := time.Now().UTC()
	holding.Frozen = frozen
	holding.UpdatedAt = now
	s.holdings[key] = holding

	if err := s.appendOutboxLocked(ports.EventTypeAssetFrozen, assetID, now, map[string]any{
		"asset_id":       assetID,
		"account":        account,
		"frozen":         frozen,
		"freeze_address": changedBy,
	}); err != nil {
		s.holdings[key] = prev
		return entities.Holding{}, err
	}
	return holding, nil
}

func (s *Store) GetHolding(_ context.Context, assetID uint64, account string) (entities.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	holding, ok := s.holdings[holdingKey{AssetID: assetID, Account: account}]
	if !ok {
		return entities.Holding{}, domainerrors.ErrNotOptedIn
	}
	return holding, nil
}

func (s *Store) ListHoldingsByAsset(_ context.Context, assetID uint64) ([]entities.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]entities.Holding, 0)
	for key, holding := range s.holdings {
		if key.AssetID == assetID {
			items = append(items, holding)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Account < items[j].Account
	})
	return items, nil
}

func (s *Store) ListHoldingsByAccount(_ context.Context, account string) ([]entities.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]entities.Holding, 0)
	for key, holding := range s.holdings {
		if key.Account == account {
			items = append(items, holding)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].AssetID < items[j].AssetID
	})
	return items, nil
}

func (s *Store) GetRecord(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.idempotency[strings.TrimSpace(key)]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now.UTC()) {
		delete(s.idempotency, strings.TrimSpace(key))
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(record.Key)
	if key == "" {
		return domainerrors.ErrInvalidParameters
	}
	if existing, ok := s.idempotency[key]; ok {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		if !bytes.Equal(existing.ResponsePayload, record.ResponsePayload) {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[key] = record
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.Status == outboxStatusPending {
			items = append(items, row.Message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	ts := publishedAt.UTC()
	row.Status = outboxStatusPublished
	row.PublishedAt = &ts
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// checkConservationLocked re-derives supply conservation for one asset: the
// sum of all holding balances must equal the fixed total supply.
func (s *Store) checkConservationLocked(assetID uint64) error {
	record, ok := s.assets[assetID]
	if !ok || record.Destroyed {
		return nil
	}
	var sum uint64
	for key, holding := range s.holdings {
		if key.AssetID == assetID {
			sum += holding.Balance
		}
	}
	if sum != record.Total {
		return domainerrors.ErrInternalInvariantViolation
	}
	return nil
}

func (s *Store) consolidatedHoldingLocked(record entities.AssetRecord) (entities.Holding, bool) {
	var consolidated entities.Holding
	found := false
	for key, holding := range s.holdings {
		if key.AssetID != record.AssetID {
			continue
		}
		if holding.Balance == 0 {
			continue
		}
		if found || holding.Balance != record.Total {
			return entities.Holding{}, false
		}
		if key.Account != record.Creator && !record.Reserve.Held(key.Account) {
			return entities.Holding{}, false
		}
		consolidated = holding
		found = true
	}
	return consolidated, found
}

func (s *Store) appendOutboxLocked(
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
	s.outbox[envelope.EventID] = outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      raw,
			CreatedAt:    envelope.OccurredAt,
		},
		Status: outboxStatusPending,
	}
	return nil
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

func copyRecord(record entities.AssetRecord) entities.AssetRecord {
	record.MetadataHash = append([]byte(nil), record.MetadataHash...)
	return record
}
