package models

import (
	"time"
)

// AssetAccount is a holding of the external asset backing the ledger. The
// custodian's own pool is just another row, addressed by the configured
// custody address.
type AssetAccount struct {
	Address   string    `db:"address"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
