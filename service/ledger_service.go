package service

import (
	"context"
	"fmt"
	"math"

	"yieldvault/events"
	"yieldvault/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
	gate       AccessGate
	clock      Clock
}

// NewLedgerService creates the interest-accruing ledger over the given unit
// of work factory, privilege gate and clock
func NewLedgerService(uowFactory UnitOfWorkFactory, gate AccessGate, clock Clock) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		gate:       gate,
		clock:      clock,
	}
}

// InitRate writes the bootstrap global rate if none exists yet. Safe to call
// on every startup; an existing rate row is left untouched.
func (s *ledgerService) InitRate(ctx context.Context, rate int64) error {
	if rate < 0 {
		return fmt.Errorf("initial rate %d: %w", rate, ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RateRepository().Init(ctx, rate); err != nil {
		return fmt.Errorf("failed to initialize rate: %w", err)
	}
	return uow.Commit()
}

func (s *ledgerService) BalanceOf(ctx context.Context, address string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByAddress(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	return projectPrincipal(account, s.clock.Now())
}

func (s *ledgerService) PrincipalOf(ctx context.Context, address string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByAddress(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, nil
	}
	return account.Principal, nil
}

func (s *ledgerService) Rate(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.RateRepository().Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get rate state: %w", err)
	}
	if state == nil {
		return 0, fmt.Errorf("rate state not initialized")
	}
	return state.Rate, nil
}

func (s *ledgerService) SetRate(ctx context.Context, caller string, newRate int64) error {
	if !s.gate.IsRateAdministrator(ctx, caller) {
		return fmt.Errorf("rate change by %s: %w", caller, ErrUnauthorized)
	}
	if newRate < 0 {
		return fmt.Errorf("rate %d: %w", newRate, ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.RateRepository().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get rate state: %w", err)
	}
	if state == nil {
		return fmt.Errorf("rate state not initialized")
	}
	if newRate > state.Rate {
		return fmt.Errorf("rate %d above current %d: %w", newRate, state.Rate, ErrRateIncrease)
	}

	if err := uow.RateRepository().Set(ctx, newRate, caller); err != nil {
		return fmt.Errorf("failed to set rate: %w", err)
	}

	uow.EventBus().Publish(events.RateLoweredEvent{
		OldRate:   state.Rate,
		NewRate:   newRate,
		UpdatedBy: caller,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"old_rate":   state.Rate,
		"new_rate":   newRate,
		"updated_by": caller,
	}).Info("Global interest rate lowered")

	return nil
}

func (s *ledgerService) Mint(ctx context.Context, caller, to string, amount, stampRate int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	operationID := uuid.New()
	if _, err := mintUnits(ctx, uow, s.gate, caller, to, amount, stampRate, s.clock.Now(), operationID, nil); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *ledgerService) Burn(ctx context.Context, caller, from string, amount int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	operationID := uuid.New()
	resolved, _, err := burnUnits(ctx, uow, s.gate, caller, from, amount, s.clock.Now(), operationID, nil)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return resolved, nil
}

func (s *ledgerService) Transfer(ctx context.Context, from, to string, amount int64) (*models.TransferResult, error) {
	if amount <= 0 || amount == models.EntireBalance {
		return nil, fmt.Errorf("transfer amount %d: %w", amount, ErrInvalidAmount)
	}
	if from == to {
		return nil, fmt.Errorf("transfer from %s to itself: %w", from, ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	now := s.clock.Now()
	operationID := uuid.New()

	sender, err := uow.AccountRepository().GetByAddress(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender account: %w", err)
	}
	if sender == nil {
		return nil, fmt.Errorf("transfer of %d from unknown account %s: %w", amount, from, ErrInsufficientBalance)
	}
	if err := settleAccount(ctx, uow, sender, now, operationID); err != nil {
		return nil, err
	}
	if amount > sender.Principal {
		return nil, fmt.Errorf("transfer of %d from %s with principal %d: %w", amount, from, sender.Principal, ErrInsufficientBalance)
	}

	recipient, err := uow.AccountRepository().GetByAddress(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient account: %w", err)
	}
	if recipient == nil {
		recipient = &models.Account{Address: to, LastAccrualAt: now}
	}
	if err := settleAccount(ctx, uow, recipient, now, operationID); err != nil {
		return nil, err
	}

	if !recipient.Funded() {
		// An empty recipient inherits the sender's locked rate, not the
		// current global rate.
		recipient.Rate = sender.Rate
		recipient.LastAccrualAt = now
	}
	if recipient.Principal > math.MaxInt64-amount {
		return nil, fmt.Errorf("transfer of %d to %s overflows principal: %w", amount, to, ErrInvalidAmount)
	}

	senderBefore := sender.Principal
	recipientBefore := recipient.Principal
	sender.Principal -= amount
	recipient.Principal += amount

	if err := uow.AccountRepository().Save(ctx, sender); err != nil {
		return nil, fmt.Errorf("failed to save sender account: %w", err)
	}
	if err := uow.AccountRepository().Save(ctx, recipient); err != nil {
		return nil, fmt.Errorf("failed to save recipient account: %w", err)
	}

	outEntry := &models.LedgerEntry{
		OperationID:     operationID,
		Address:         from,
		PrincipalBefore: senderBefore,
		PrincipalAfter:  sender.Principal,
		ChangeAmount:    -amount,
		EntryType:       models.EntryTypeTransferOut,
		Metadata:        map[string]any{"counterparty": to},
	}
	if err := uow.EntryRepository().Record(ctx, outEntry); err != nil {
		return nil, fmt.Errorf("failed to record sender entry: %w", err)
	}

	inEntry := &models.LedgerEntry{
		OperationID:     operationID,
		Address:         to,
		PrincipalBefore: recipientBefore,
		PrincipalAfter:  recipient.Principal,
		ChangeAmount:    amount,
		EntryType:       models.EntryTypeTransferIn,
		Metadata:        map[string]any{"counterparty": from},
	}
	if err := uow.EntryRepository().Record(ctx, inEntry); err != nil {
		return nil, fmt.Errorf("failed to record recipient entry: %w", err)
	}

	uow.EventBus().Publish(events.TransferredEvent{
		OperationID: operationID.String(),
		From:        from,
		To:          to,
		Amount:      amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TransferResult{
		OperationID: operationID,
		Amount:      amount,
		FromBalance: sender.Principal,
		ToBalance:   recipient.Principal,
	}, nil
}

func (s *ledgerService) EntriesFor(ctx context.Context, address string, limit int) ([]*models.LedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.EntryRepository().GetByAddress(ctx, address, limit)
}

func (s *ledgerService) TotalSupply(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.AccountRepository().TotalPrincipal(ctx)
}
