package models

import (
	"github.com/google/uuid"
)

// TransferResult describes a completed ledger transfer
type TransferResult struct {
	OperationID uuid.UUID
	Amount      int64
	FromBalance int64
	ToBalance   int64
}

// DepositResult describes a completed custodial deposit
type DepositResult struct {
	OperationID uuid.UUID
	Amount      int64
	NewBalance  int64
	StampedRate int64
}

// RedeemResult describes a completed custodial redemption. Amount is the
// resolved amount, after any EntireBalance sentinel expansion.
type RedeemResult struct {
	OperationID uuid.UUID
	Amount      int64
	NewBalance  int64
}
