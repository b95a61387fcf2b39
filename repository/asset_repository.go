package repository

import (
	"context"
	"fmt"

	"yieldvault/database"
	"yieldvault/models"

	"github.com/jackc/pgx/v5"
)

// AssetRepository implements the service.AssetRepository interface. It is the
// custodian's view of the external asset: Debit is the transfer primitive
// that can fail on insufficient funds.
type AssetRepository struct {
	q queryable
}

// NewAssetRepository creates a new asset repository over the pool
func NewAssetRepository(db *database.DB) *AssetRepository {
	return &AssetRepository{q: db.Pool}
}

// newAssetRepositoryWithTx creates a new asset repository bound to a transaction
func newAssetRepositoryWithTx(tx queryable) *AssetRepository {
	return &AssetRepository{q: tx}
}

// GetByAddress retrieves an asset holding, nil when none exists
func (r *AssetRepository) GetByAddress(ctx context.Context, address string) (*models.AssetAccount, error) {
	query := `
		SELECT address, balance, created_at, updated_at
		FROM asset_accounts
		WHERE address = $1
	`

	var holding models.AssetAccount
	err := r.q.QueryRow(ctx, query, address).Scan(
		&holding.Address,
		&holding.Balance,
		&holding.CreatedAt,
		&holding.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset holding %s: %w", address, err)
	}

	return &holding, nil
}

// Credit adds to a holding, creating the row if needed
func (r *AssetRepository) Credit(ctx context.Context, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	query := `
		INSERT INTO asset_accounts (address, balance)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE
		SET balance = asset_accounts.balance + EXCLUDED.balance,
		    updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, address, amount); err != nil {
		return fmt.Errorf("failed to credit %d to %s: %w", amount, address, err)
	}
	return nil
}

// Debit subtracts from a holding, failing if the holder does not exist or
// does not cover the amount
func (r *AssetRepository) Debit(ctx context.Context, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	query := `
		UPDATE asset_accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE address = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, address)
	if err != nil {
		return fmt.Errorf("failed to debit %d from %s: %w", amount, address, err)
	}
	if result.RowsAffected() == 0 {
		holding, err := r.GetByAddress(ctx, address)
		if err != nil {
			return fmt.Errorf("failed to check asset holding: %w", err)
		}
		if holding == nil {
			return fmt.Errorf("asset holding %s not found", address)
		}
		return fmt.Errorf("insufficient asset funds: %s has %d, need %d", address, holding.Balance, amount)
	}

	return nil
}
