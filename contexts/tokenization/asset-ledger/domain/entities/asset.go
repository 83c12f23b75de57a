package entities

import "time"

// ASA-compatible parameter bounds. String limits are byte lengths.
const (
	MaxUnitNameBytes  = 8
	MaxAssetNameBytes = 32
	MaxURLBytes       = 96
	MaxAssetDecimals  = 19
	MetadataHashBytes = 32
)

// RoleAddress is a mutable role slot on an asset. Assigned distinguishes a
// cleared slot from a real all-zero account identifier; once a slot is
// cleared it can never be re-assigned.
type RoleAddress struct {
	Address  string
	Assigned bool
}

func AssignedRole(address string) RoleAddress {
	return RoleAddress{Address: address, Assigned: true}
}

func EmptyRole() RoleAddress {
	return RoleAddress{}
}

// Held reports whether account currently holds this role.
func (r RoleAddress) Held(account string) bool {
	return r.Assigned && account != "" && r.Address == account
}

// AssetRecord is the registry entry for one asset. Creator, name fields,
// supply, decimals, default-frozen and metadata hash are fixed at creation;
// only the four role slots change afterwards. Destroyed records stay in the
// registry for historical lookups but reject every operation.
type AssetRecord struct {
	AssetID       uint64
	Creator       string
	AssetName     string
	UnitName      string
	URL           string
	MetadataHash  []byte
	Total         uint64
	Decimals      uint8
	DefaultFrozen bool

	Manager  RoleAddress
	Reserve  RoleAddress
	Freeze   RoleAddress
	Clawback RoleAddress

	Destroyed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
