package postgresadapter

import (
	"strings"
	"time"

	"assetledger/contexts/tokenization/asset-ledger/domain/entities"
)

type assetModel struct {
	AssetID       uint64    `gorm:"column:asset_id;primaryKey"`
	Creator       string    `gorm:"column:creator"`
	AssetName     string    `gorm:"column:asset_name"`
	UnitName      string    `gorm:"column:unit_name"`
	URL           string    `gorm:"column:url"`
	MetadataHash  []byte    `gorm:"column:metadata_hash"`
	Total         uint64    `gorm:"column:total"`
	Decimals      uint8     `gorm:"column:decimals"`
	DefaultFrozen bool      `gorm:"column:default_frozen"`
	Destroyed     bool      `gorm:"column:destroyed"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`

	ManagerAddress   string `gorm:"column:manager_address"`
	ManagerAssigned  bool   `gorm:"column:manager_assigned"`
	ReserveAddress   string `gorm:"column:reserve_address"`
	ReserveAssigned  bool   `gorm:"column:reserve_assigned"`
	FreezeAddress    string `gorm:"column:freeze_address"`
	FreezeAssigned   bool   `gorm:"column:freeze_assigned"`
	ClawbackAddress  string `gorm:"column:clawback_address"`
	ClawbackAssigned bool   `gorm:"column:clawback_assigned"`
}

func (assetModel) TableName() string {
	return "assets"
}

func assetModelFromEntity(item entities.AssetRecord) assetModel {
	return assetModel{
		AssetID:       item.AssetID,
		Creator:       strings.TrimSpace(item.Creator),
		AssetName:     strings.TrimSpace(item.AssetName),
		UnitName:      strings.TrimSpace(item.UnitName),
		URL:           strings.TrimSpace(item.URL),
		MetadataHash:  append([]byte(nil), item.MetadataHash...),
		Total:         item.Total,
		Decimals:      item.Decimals,
		DefaultFrozen: item.DefaultFrozen,
		Destroyed:     item.Destroyed,
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),

		ManagerAddress:   item.Manager.Address,
		ManagerAssigned:  item.Manager.Assigned,
		ReserveAddress:   item.Reserve.Address,
		ReserveAssigned:  item.Reserve.Assigned,
		FreezeAddress:    item.Freeze.Address,
		FreezeAssigned:   item.Freeze.Assigned,
		ClawbackAddress:  item.Clawback.Address,
		ClawbackAssigned: item.Clawback.Assigned,
	}
}

func (m assetModel) toEntity() entities.AssetRecord {
	return entities.AssetRecord{
		AssetID:       m.AssetID,
		Creator:       m.Creator,
		AssetName:     m.AssetName,
		UnitName:      m.UnitName,
		URL:           m.URL,
		MetadataHash:  append([]byte(nil), m.MetadataHash...),
		Total:         m.Total,
		Decimals:      m.Decimals,
		DefaultFrozen: m.DefaultFrozen,
		Destroyed:     m.Destroyed,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),

		Manager:  entities.RoleAddress{Address: m.ManagerAddress, Assigned: m.ManagerAssigned},
		Reserve:  entities.RoleAddress{Address: m.ReserveAddress, Assigned: m.ReserveAssigned},
		Freeze:   entities.RoleAddress{Address: m.FreezeAddress, Assigned: m.FreezeAssigned},
		Clawback: entities.RoleAddress{Address: m.ClawbackAddress, Assigned: m.ClawbackAssigned},
	}
}

type holdingModel struct {
	AssetID   uint64    `gorm:"column:asset_id;primaryKey"`
	Account   string    `gorm:"column:account;primaryKey"`
	Balance   uint64    `gorm:"column:balance"`
	Frozen    bool      `gorm:"column:frozen"`
	OptedInAt time.Time `gorm:"column:opted_in_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (holdingModel) TableName() string {
	return "asset_holdings"
}

func (m holdingModel) toEntity() entities.Holding {
	return entities.Holding{
		AssetID:   m.AssetID,
		Account:   m.Account,
		Balance:   m.Balance,
		Frozen:    m.Frozen,
		OptedInAt: m.OptedInAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// allocatorModel is the single-row asset id allocator. Identifiers only ever
// move forward, so destroyed assets never free their id.
type allocatorModel struct {
	AllocatorID int    `gorm:"column:allocator_id;primaryKey"`
	NextAssetID uint64 `gorm:"column:next_asset_id"`
}

func (allocatorModel) TableName() string {
	return "asset_id_allocator"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "asset_outbox"
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "asset_idempotency"
}
