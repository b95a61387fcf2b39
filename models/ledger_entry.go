package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryType represents the kind of principal change recorded in an entry
type EntryType string

const (
	EntryTypeMint        EntryType = "mint"
	EntryTypeBurn        EntryType = "burn"
	EntryTypeTransferIn  EntryType = "transfer_in"
	EntryTypeTransferOut EntryType = "transfer_out"
	EntryTypeInterest    EntryType = "interest"
)

// LedgerEntry is one historical principal change for an account. Entries
// written by the same logical operation (both legs of a transfer, the
// settlement plus the mint of a deposit) share an OperationID.
type LedgerEntry struct {
	ID              int64          `db:"id"`
	OperationID     uuid.UUID      `db:"operation_id"`
	Address         string         `db:"address"`
	PrincipalBefore int64          `db:"principal_before"`
	PrincipalAfter  int64          `db:"principal_after"`
	ChangeAmount    int64          `db:"change_amount"`
	EntryType       EntryType      `db:"entry_type"`
	Metadata        map[string]any `db:"metadata"`
	CreatedAt       time.Time      `db:"created_at"`
}
