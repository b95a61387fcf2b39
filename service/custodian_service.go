package service

import (
	"context"
	"fmt"

	"yieldvault/events"
	"yieldvault/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type custodianService struct {
	uowFactory     UnitOfWorkFactory
	gate           AccessGate
	clock          Clock
	ledger         LedgerService
	custodyAddress string
}

// NewCustodianService creates the custodial facade. The custody address is
// both the identity of the asset pool and the caller identity the custodian
// presents to the ledger's supply-control gate, so it has to be granted
// supply control in the gate's policy.
func NewCustodianService(uowFactory UnitOfWorkFactory, gate AccessGate, clock Clock, ledger LedgerService, custodyAddress string) CustodianService {
	return &custodianService{
		uowFactory:     uowFactory,
		gate:           gate,
		clock:          clock,
		ledger:         ledger,
		custodyAddress: custodyAddress,
	}
}

// Deposit takes amount of the external asset from the caller into custody
// and mints the same amount of ledger units to the caller, stamped with the
// current global rate. The asset movement and the mint share one unit of
// work: if either fails, neither happened.
func (s *custodianService) Deposit(ctx context.Context, caller string, amount int64) (*models.DepositResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount %d: %w", amount, ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AssetRepository().Debit(ctx, caller, amount); err != nil {
		return nil, fmt.Errorf("deposit of %d by %s: %w: %v", amount, caller, ErrExternalTransfer, err)
	}
	if err := uow.AssetRepository().Credit(ctx, s.custodyAddress, amount); err != nil {
		return nil, fmt.Errorf("deposit of %d by %s: %w: %v", amount, caller, ErrExternalTransfer, err)
	}

	state, err := uow.RateRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate state: %w", err)
	}
	if state == nil {
		return nil, fmt.Errorf("rate state not initialized")
	}

	operationID := uuid.New()
	account, err := mintUnits(ctx, uow, s.gate, s.custodyAddress, caller, amount, state.Rate, s.clock.Now(), operationID, map[string]any{"via": "deposit"})
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.DepositedEvent{
		OperationID: operationID.String(),
		Caller:      caller,
		Amount:      amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"caller":       caller,
		"amount":       amount,
		"operation_id": operationID,
	}).Info("Deposit completed")

	return &models.DepositResult{
		OperationID: operationID,
		Amount:      amount,
		NewBalance:  account.Principal,
		StampedRate: account.Rate,
	}, nil
}

// Redeem burns amount of the caller's ledger units (the models.EntireBalance
// sentinel resolves to the fully settled balance) and pays the same amount of
// external asset back out of custody. Burn and payout share one unit of
// work; an underfunded custody pool aborts the whole call, burn included.
func (s *custodianService) Redeem(ctx context.Context, caller string, amount int64) (*models.RedeemResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	operationID := uuid.New()
	resolved, account, err := burnUnits(ctx, uow, s.gate, s.custodyAddress, caller, amount, s.clock.Now(), operationID, map[string]any{"via": "redeem"})
	if err != nil {
		return nil, err
	}

	if err := uow.AssetRepository().Debit(ctx, s.custodyAddress, resolved); err != nil {
		return nil, fmt.Errorf("redemption payout of %d to %s: %w: %v", resolved, caller, ErrExternalTransfer, err)
	}
	if err := uow.AssetRepository().Credit(ctx, caller, resolved); err != nil {
		return nil, fmt.Errorf("redemption payout of %d to %s: %w: %v", resolved, caller, ErrExternalTransfer, err)
	}

	uow.EventBus().Publish(events.RedeemedEvent{
		OperationID: operationID.String(),
		Caller:      caller,
		Amount:      resolved,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"caller":       caller,
		"amount":       resolved,
		"operation_id": operationID,
	}).Info("Redemption completed")

	return &models.RedeemResult{
		OperationID: operationID,
		Amount:      resolved,
		NewBalance:  account.Principal,
	}, nil
}

// FundCustody credits the custody pool with external asset. This is how the
// interest liability beyond the deposited principal gets covered.
func (s *custodianService) FundCustody(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("funding amount %d: %w", amount, ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AssetRepository().Credit(ctx, s.custodyAddress, amount); err != nil {
		return fmt.Errorf("failed to fund custody: %w", err)
	}
	return uow.Commit()
}

func (s *custodianService) AssetBalanceOf(ctx context.Context, address string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	holding, err := uow.AssetRepository().GetByAddress(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("failed to get asset holding: %w", err)
	}
	if holding == nil {
		return 0, nil
	}
	return holding.Balance, nil
}

func (s *custodianService) CustodyAddress() string {
	return s.custodyAddress
}

func (s *custodianService) Ledger() LedgerService {
	return s.ledger
}
