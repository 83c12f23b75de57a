package errors

import "errors"

var (
	ErrAssetNotFound         = errors.New("asset does not exist")
	ErrInvalidParameters     = errors.New("asset parameters are invalid")
	ErrUnauthorized          = errors.New("caller does not hold the required role")
	ErrFieldLocked           = errors.New("role slot was permanently cleared")
	ErrAlreadyOptedIn        = errors.New("account already opted in to asset")
	ErrNotOptedIn            = errors.New("account is not opted in to asset")
	ErrNonzeroBalance        = errors.New("holding balance must be zero to opt out")
	ErrAccountFrozen         = errors.New("holding is frozen")
	ErrInsufficientBalance   = errors.New("holding balance is insufficient")
	ErrSupplyNotConsolidated = errors.New("supply is not consolidated in the creator or reserve holding")
	ErrZeroAmount            = errors.New("amount must be greater than zero")

	ErrIdempotencyKeyMissing = errors.New("idempotency key is required")
	ErrIdempotencyConflict   = errors.New("idempotency key already used with different payload")

	// ErrInternalInvariantViolation means supply conservation failed after a
	// mutation. It aborts the mutation without committing and indicates a
	// logic defect, never bad caller input.
	ErrInternalInvariantViolation = errors.New("asset supply conservation violated")
)
