package httptransport

// RoleAddressDTO is a mutable role slot. Assigned=false is the permanently
// cleared state; in reconfigure requests an absent field means "unchanged".
type RoleAddressDTO struct {
	Assigned bool   `json:"assigned"`
	Address  string `json:"address,omitempty"`
}

type CreateAssetRequest struct {
	AssetName     string `json:"asset_name"`
	UnitName      string `json:"unit_name"`
	URL           string `json:"url,omitempty"`
	MetadataHash  []byte `json:"metadata_hash,omitempty"`
	Total         uint64 `json:"total"`
	Decimals      uint8  `json:"decimals"`
	DefaultFrozen bool   `json:"default_frozen"`
	Manager       string `json:"manager,omitempty"`
	Reserve       string `json:"reserve,omitempty"`
	Freeze        string `json:"freeze,omitempty"`
	Clawback      string `json:"clawback,omitempty"`
}

type AssetDTO struct {
	AssetID       uint64         `json:"asset_id"`
	Creator       string         `json:"creator"`
	AssetName     string         `json:"asset_name"`
	UnitName      string         `json:"unit_name"`
	URL           string         `json:"url,omitempty"`
	MetadataHash  []byte         `json:"metadata_hash,omitempty"`
	Total         uint64         `json:"total"`
	Decimals      uint8          `json:"decimals"`
	DefaultFrozen bool           `json:"default_frozen"`
	Manager       RoleAddressDTO `json:"manager"`
	Reserve       RoleAddressDTO `json:"reserve"`
	Freeze        RoleAddressDTO `json:"freeze"`
	Clawback      RoleAddressDTO `json:"clawback"`
	Destroyed     bool           `json:"destroyed"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

type CreateAssetResponse struct {
	Status   string   `json:"status"`
	Replayed bool     `json:"replayed,omitempty"`
	Item     AssetDTO `json:"item"`
}

type ReconfigureAssetRequest struct {
	Manager  *RoleAddressDTO `json:"manager,omitempty"`
	Reserve  *RoleAddressDTO `json:"reserve,omitempty"`
	Freeze   *RoleAddressDTO `json:"freeze,omitempty"`
	Clawback *RoleAddressDTO `json:"clawback,omitempty"`
}

type ReconfigureAssetResponse struct {
	Status string   `json:"status"`
	Item   AssetDTO `json:"item"`
}

type HoldingDTO struct {
	AssetID   uint64 `json:"asset_id"`
	Account   string `json:"account"`
	Balance   uint64 `json:"balance"`
	Frozen    bool   `json:"frozen"`
	OptedInAt string `json:"opted_in_at"`
	UpdatedAt string `json:"updated_at"`
}

type OptInResponse struct {
	Status  string     `json:"status"`
	Holding HoldingDTO `json:"holding"`
}

type OptOutResponse struct {
	Status string `json:"status"`
}

type TransferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type TransferResponse struct {
	Status          string `json:"status"`
	SenderBalance   uint64 `json:"sender_balance"`
	ReceiverBalance uint64 `json:"receiver_balance"`
}

type FreezeRequest struct {
	Account string `json:"account"`
	Frozen  bool   `json:"frozen"`
}

type FreezeResponse struct {
	Status  string     `json:"status"`
	Holding HoldingDTO `json:"holding"`
}

type RevokeRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type RevokeResponse struct {
	Status          string `json:"status"`
	SourceBalance   uint64 `json:"source_balance"`
	ReceiverBalance uint64 `json:"receiver_balance"`
}

type DestroyAssetResponse struct {
	Status string `json:"status"`
}

type GetAssetResponse struct {
	Item AssetDTO `json:"item"`
}

type GetHoldingResponse struct {
	Holding HoldingDTO `json:"holding"`
}

type ListHoldingsResponse struct {
	Items []HoldingDTO `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
