package ports

import (
	"encoding/json"
	"strconv"
	"time"
)

// One event type per committed operation. Envelopes partition on the decimal
// asset id so downstream consumers see one asset's history in order.
const (
	EventTypeAssetCreated      = "asset.created"
	EventTypeAssetReconfigured = "asset.reconfigured"
	EventTypeAssetOptedIn      = "asset.opted_in"
	EventTypeAssetOptedOut     = "asset.opted_out"
	EventTypeAssetTransferred  = "asset.transferred"
	EventTypeAssetFrozen       = "asset.frozen"
	EventTypeAssetRevoked      = "asset.revoked"
	EventTypeAssetDestroyed    = "asset.destroyed"
)

const EventSourceService = "asset-ledger"

// NewAssetEnvelope wraps an operation payload in the canonical envelope. Both
// storage adapters use it so the wire shape cannot drift between them.
func NewAssetEnvelope(
	eventID string,
	eventType string,
	assetID uint64,
	occurredAt time.Time,
	payload map[string]any,
) (EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    EventSourceService,
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "asset_id",
		PartitionKey:     strconv.FormatUint(assetID, 10),
		Data:             data,
	}, nil
}
