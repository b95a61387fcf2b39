package repository

import (
	"context"
	"fmt"

	"yieldvault/database"
	"yieldvault/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository over the pool
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository bound to a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByAddress retrieves an account by address, nil when none exists
func (r *AccountRepository) GetByAddress(ctx context.Context, address string) (*models.Account, error) {
	query := `
		SELECT address, principal, rate, last_accrual_at, created_at, updated_at
		FROM accounts
		WHERE address = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, address).Scan(
		&account.Address,
		&account.Principal,
		&account.Rate,
		&account.LastAccrualAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}

	return &account, nil
}

// Save upserts an account's principal, rate and accrual clock
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (address, principal, rate, last_accrual_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE
		SET principal = EXCLUDED.principal,
		    rate = EXCLUDED.rate,
		    last_accrual_at = EXCLUDED.last_accrual_at,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.Address,
		account.Principal,
		account.Rate,
		account.LastAccrualAt,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.Address, err)
	}

	return nil
}

// TotalPrincipal returns the sum of all settled principals
func (r *AccountRepository) TotalPrincipal(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(principal), 0) FROM accounts`

	var total int64
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum principals: %w", err)
	}
	return total, nil
}

// GetFunded returns all accounts with a non-zero principal, largest first
func (r *AccountRepository) GetFunded(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT address, principal, rate, last_accrual_at, created_at, updated_at
		FROM accounts
		WHERE principal > 0
		ORDER BY principal DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get funded accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.Address,
			&account.Principal,
			&account.Rate,
			&account.LastAccrualAt,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
