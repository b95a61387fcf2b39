package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"yieldvault/database"
	"yieldvault/models"

	"github.com/google/uuid"
)

// EntryRepository implements the service.EntryRepository interface
type EntryRepository struct {
	q queryable
}

// NewEntryRepository creates a new ledger entry repository over the pool
func NewEntryRepository(db *database.DB) *EntryRepository {
	return &EntryRepository{q: db.Pool}
}

// newEntryRepositoryWithTx creates a new ledger entry repository bound to a transaction
func newEntryRepositoryWithTx(tx queryable) *EntryRepository {
	return &EntryRepository{q: tx}
}

// Record creates a new ledger entry
func (r *EntryRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	var metadataJSON []byte
	if entry.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal entry metadata: %w", err)
		}
	}

	query := `
		INSERT INTO ledger_entries
		(operation_id, address, principal_before, principal_after, change_amount, entry_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.OperationID,
		entry.Address,
		entry.PrincipalBefore,
		entry.PrincipalAfter,
		entry.ChangeAmount,
		entry.EntryType,
		metadataJSON,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record ledger entry for %s: %w", entry.Address, err)
	}

	return nil
}

// GetByAddress returns the most recent entries for an address
func (r *EntryRepository) GetByAddress(ctx context.Context, address string, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, operation_id, address, principal_before, principal_after,
		       change_amount, entry_type, metadata, created_at
		FROM ledger_entries
		WHERE address = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, address, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries for %s: %w", address, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByOperationID returns all entries written by one logical operation, in
// write order
func (r *EntryRepository) GetByOperationID(ctx context.Context, operationID uuid.UUID) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, operation_id, address, principal_before, principal_after,
		       change_amount, entry_type, metadata, created_at
		FROM ledger_entries
		WHERE operation_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, operationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries for operation %s: %w", operationID, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

type entryRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEntries(rows entryRows) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		var metadataJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.OperationID,
			&entry.Address,
			&entry.PrincipalBefore,
			&entry.PrincipalAfter,
			&entry.ChangeAmount,
			&entry.EntryType,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal entry metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}
