package entities

import "time"

// Holding is one account's position in one asset. Existence of the record is
// the opt-in flag; a holding is only ever deleted by opt-out (balance zero)
// or by destroying the asset it belongs to.
type Holding struct {
	AssetID   uint64
	Account   string
	Balance   uint64
	Frozen    bool
	OptedInAt time.Time
	UpdatedAt time.Time
}
