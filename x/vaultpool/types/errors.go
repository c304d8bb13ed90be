package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrPoolNotFound        = errors.Register(ModuleName, 1, "pool not found")
	ErrPoolFrozen          = errors.Register(ModuleName, 2, "pool is in emergency mode")
	ErrAlreadyInEmergency  = errors.Register(ModuleName, 3, "pool is already in emergency mode")
	ErrNotInEmergency      = errors.Register(ModuleName, 4, "pool is not in emergency mode")
	ErrInsufficientShares  = errors.Register(ModuleName, 5, "insufficient shares")
	ErrNothingToClaim      = errors.Register(ModuleName, 6, "nothing to claim")
	ErrUnauthorized        = errors.Register(ModuleName, 7, "caller is not the operator")
	ErrExchangeFailed      = errors.Register(ModuleName, 8, "external vault exchange failed")
	ErrTransferFailed      = errors.Register(ModuleName, 9, "asset transfer failed")
	ErrInvalidAmount       = errors.Register(ModuleName, 10, "amount must be positive")
	ErrInvalidFeeRate      = errors.Register(ModuleName, 11, "fee rate out of range")
	ErrInvalidFeeRecipient = errors.Register(ModuleName, 12, "fee recipient required when fee is enabled")
	ErrBrokenLedger        = errors.Register(ModuleName, 13, "ledger invariant violation")
	ErrNoPendingOperator   = errors.Register(ModuleName, 14, "no pending operator transfer")
	ErrInvalidPoolID       = errors.Register(ModuleName, 15, "invalid pool id")
)
