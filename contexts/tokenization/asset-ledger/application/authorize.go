package application

import "assetledger/contexts/tokenization/asset-ledger/domain/entities"

// Role names a privilege an operation requires against one asset record.
type Role int

const (
	// RoleAny admits every authenticated caller.
	RoleAny Role = iota
	// RoleHolder admits the caller acting on their own holding.
	RoleHolder
	RoleCreator
	RoleManager
	RoleFreeze
	RoleClawback
)

// Authorize is the stateless role predicate: it compares the caller against
// the record's role slots and never touches other state. A cleared role slot
// admits nobody.
func Authorize(role Role, caller string, record entities.AssetRecord) bool {
	if caller == "" {
		return false
	}
	switch role {
	case RoleAny, RoleHolder:
		return true
	case RoleCreator:
		return caller == record.Creator
	case RoleManager:
		return record.Manager.Held(caller)
	case RoleFreeze:
		return record.Freeze.Held(caller)
	case RoleClawback:
		return record.Clawback.Held(caller)
	default:
		return false
	}
}
