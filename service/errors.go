package service

import (
	"errors"
)

// Sentinel errors for the ledger and custodian operation surface. Callers
// discriminate with errors.Is; operations wrap these with context via
// fmt.Errorf("...: %w", ...). None of them is retryable as-is: the caller
// has to change the request (or their privileges) first.
var (
	// ErrUnauthorized means the caller lacks supply control or rate
	// administration privilege for the attempted operation.
	ErrUnauthorized = errors.New("caller not authorized")

	// ErrInsufficientBalance means a burn or transfer asked for more than
	// the account's settled principal.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrRateIncrease means a rate change above the current global rate
	// was attempted; the rate only ever moves down.
	ErrRateIncrease = errors.New("interest rate can only decrease")

	// ErrExternalTransfer means the custodian's external asset movement
	// failed; the whole operation, ledger mutation included, rolls back.
	ErrExternalTransfer = errors.New("external asset transfer failed")

	// ErrInvalidAmount means a zero or otherwise out-of-range amount was
	// supplied where a positive amount is required.
	ErrInvalidAmount = errors.New("invalid amount")
)
