package testutil

import (
	"time"

	"yieldvault/models"

	"github.com/google/uuid"
)

// CreateTestAccount builds an account funded at the given rate with its
// accrual clock set to now
func CreateTestAccount(address string, principal, rate int64) *models.Account {
	return &models.Account{
		Address:       address,
		Principal:     principal,
		Rate:          rate,
		LastAccrualAt: time.Now().UTC().Truncate(time.Second),
	}
}

// CreateTestEntry builds a mint ledger entry for an address
func CreateTestEntry(address string, amount int64) *models.LedgerEntry {
	return &models.LedgerEntry{
		OperationID:     uuid.New(),
		Address:         address,
		PrincipalBefore: 0,
		PrincipalAfter:  amount,
		ChangeAmount:    amount,
		EntryType:       models.EntryTypeMint,
		Metadata: map[string]any{
			"via": "test",
		},
	}
}
