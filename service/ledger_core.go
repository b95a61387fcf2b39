package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"yieldvault/events"
	"yieldvault/models"

	"github.com/google/uuid"
)

// The functions in this file are the settling primitives shared by the ledger
// service and the custodian. They operate inside an already-begun unit of
// work and mutate the passed account in memory; the caller owns commit and
// rollback, so a failure at any step leaves nothing behind.

// settleAccount folds accrued interest into the account's principal and
// advances its accrual clock. The clock moves by whole elapsed seconds so
// sub-second remainders are carried, not dropped; at zero elapsed seconds the
// call changes nothing. The interest is recorded in the audit trail under the
// surrounding operation's id.
func settleAccount(ctx context.Context, uow UnitOfWork, account *models.Account, now time.Time, operationID uuid.UUID) error {
	elapsed := elapsedSeconds(account.LastAccrualAt, now)
	if elapsed == 0 {
		return nil
	}

	settled, err := projectPrincipal(account, now)
	if err != nil {
		return err
	}

	interest := settled - account.Principal
	if interest > 0 {
		entry := &models.LedgerEntry{
			OperationID:     operationID,
			Address:         account.Address,
			PrincipalBefore: account.Principal,
			PrincipalAfter:  settled,
			ChangeAmount:    interest,
			EntryType:       models.EntryTypeInterest,
			Metadata: map[string]any{
				"rate":            account.Rate,
				"elapsed_seconds": elapsed,
			},
		}
		if err := uow.EntryRepository().Record(ctx, entry); err != nil {
			return fmt.Errorf("failed to record interest entry: %w", err)
		}
		uow.EventBus().Publish(events.InterestAccruedEvent{
			OperationID: operationID.String(),
			Address:     account.Address,
			Amount:      interest,
		})
	}

	account.Principal = settled
	account.LastAccrualAt = account.LastAccrualAt.Add(time.Duration(elapsed) * time.Second)
	return nil
}

// mintUnits settles the recipient and adds amount to its principal. A
// recipient that was empty right before the mint is stamped with stampRate
// and a fresh accrual clock. Requires supply control.
func mintUnits(ctx context.Context, uow UnitOfWork, gate AccessGate, caller, to string, amount, stampRate int64, now time.Time, operationID uuid.UUID, metadata map[string]any) (*models.Account, error) {
	if !gate.HasSupplyControl(ctx, caller) {
		return nil, fmt.Errorf("mint by %s: %w", caller, ErrUnauthorized)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("mint amount %d: %w", amount, ErrInvalidAmount)
	}
	if stampRate < 0 {
		return nil, fmt.Errorf("mint stamp rate %d: %w", stampRate, ErrInvalidAmount)
	}

	account, err := uow.AccountRepository().GetByAddress(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient account: %w", err)
	}
	if account == nil {
		account = &models.Account{Address: to, LastAccrualAt: now}
	}

	if err := settleAccount(ctx, uow, account, now, operationID); err != nil {
		return nil, err
	}

	if !account.Funded() {
		// Empty -> funded transition locks in the rate snapshot.
		account.Rate = stampRate
		account.LastAccrualAt = now
	}

	if account.Principal > math.MaxInt64-amount {
		return nil, fmt.Errorf("mint of %d to %s overflows principal: %w", amount, to, ErrInvalidAmount)
	}

	before := account.Principal
	account.Principal += amount
	if err := uow.AccountRepository().Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save recipient account: %w", err)
	}

	entry := &models.LedgerEntry{
		OperationID:     operationID,
		Address:         to,
		PrincipalBefore: before,
		PrincipalAfter:  account.Principal,
		ChangeAmount:    amount,
		EntryType:       models.EntryTypeMint,
		Metadata:        metadata,
	}
	if err := uow.EntryRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record mint entry: %w", err)
	}

	uow.EventBus().Publish(events.MintedEvent{
		OperationID:  operationID.String(),
		To:           to,
		Amount:       amount,
		StampedRate:  account.Rate,
		NewPrincipal: account.Principal,
	})

	return account, nil
}

// burnUnits settles the source account and subtracts amount from its
// principal. The models.EntireBalance sentinel resolves to the settled
// principal after settlement, never before. Requires supply control. Returns
// the resolved amount and the updated account.
func burnUnits(ctx context.Context, uow UnitOfWork, gate AccessGate, caller, from string, amount int64, now time.Time, operationID uuid.UUID, metadata map[string]any) (int64, *models.Account, error) {
	if !gate.HasSupplyControl(ctx, caller) {
		return 0, nil, fmt.Errorf("burn by %s: %w", caller, ErrUnauthorized)
	}
	if amount <= 0 {
		return 0, nil, fmt.Errorf("burn amount %d: %w", amount, ErrInvalidAmount)
	}

	account, err := uow.AccountRepository().GetByAddress(ctx, from)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get source account: %w", err)
	}
	if account == nil {
		if amount == models.EntireBalance {
			return 0, nil, fmt.Errorf("burn of empty account %s: %w", from, ErrInvalidAmount)
		}
		return 0, nil, fmt.Errorf("burn of %d from unknown account %s: %w", amount, from, ErrInsufficientBalance)
	}

	if err := settleAccount(ctx, uow, account, now, operationID); err != nil {
		return 0, nil, err
	}

	resolved := amount
	if amount == models.EntireBalance {
		resolved = account.Principal
		if resolved == 0 {
			return 0, nil, fmt.Errorf("burn of empty account %s: %w", from, ErrInvalidAmount)
		}
	}
	if resolved > account.Principal {
		return 0, nil, fmt.Errorf("burn of %d from %s with principal %d: %w", resolved, from, account.Principal, ErrInsufficientBalance)
	}

	before := account.Principal
	account.Principal -= resolved
	if err := uow.AccountRepository().Save(ctx, account); err != nil {
		return 0, nil, fmt.Errorf("failed to save source account: %w", err)
	}

	entry := &models.LedgerEntry{
		OperationID:     operationID,
		Address:         from,
		PrincipalBefore: before,
		PrincipalAfter:  account.Principal,
		ChangeAmount:    -resolved,
		EntryType:       models.EntryTypeBurn,
		Metadata:        metadata,
	}
	if err := uow.EntryRepository().Record(ctx, entry); err != nil {
		return 0, nil, fmt.Errorf("failed to record burn entry: %w", err)
	}

	uow.EventBus().Publish(events.BurnedEvent{
		OperationID:  operationID.String(),
		From:         from,
		Amount:       resolved,
		NewPrincipal: account.Principal,
	})

	return resolved, account, nil
}
