package repository

import (
	"context"
	"fmt"

	"yieldvault/database"
	"yieldvault/models"

	"github.com/jackc/pgx/v5"
)

// RateRepository implements the service.RateRepository interface over the
// single-row rate_state table
type RateRepository struct {
	q queryable
}

// NewRateRepository creates a new rate repository over the pool
func NewRateRepository(db *database.DB) *RateRepository {
	return &RateRepository{q: db.Pool}
}

// newRateRepositoryWithTx creates a new rate repository bound to a transaction
func newRateRepositoryWithTx(tx queryable) *RateRepository {
	return &RateRepository{q: tx}
}

// Get retrieves the global rate state, nil before initialization
func (r *RateRepository) Get(ctx context.Context) (*models.RateState, error) {
	query := `
		SELECT rate, updated_by, updated_at
		FROM rate_state
		WHERE singleton
	`

	var state models.RateState
	err := r.q.QueryRow(ctx, query).Scan(&state.Rate, &state.UpdatedBy, &state.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate state: %w", err)
	}

	return &state, nil
}

// Init inserts the initial rate if and only if no rate row exists yet
func (r *RateRepository) Init(ctx context.Context, rate int64) error {
	query := `
		INSERT INTO rate_state (singleton, rate)
		VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, rate); err != nil {
		return fmt.Errorf("failed to initialize rate state: %w", err)
	}
	return nil
}

// Set overwrites the global rate
func (r *RateRepository) Set(ctx context.Context, rate int64, updatedBy string) error {
	query := `
		UPDATE rate_state
		SET rate = $1, updated_by = $2, updated_at = NOW()
		WHERE singleton
	`

	result, err := r.q.Exec(ctx, query, rate, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to set rate: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("rate state not initialized")
	}
	return nil
}
