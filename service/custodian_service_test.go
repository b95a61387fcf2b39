package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"yieldvault/events"
	"yieldvault/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type custodianFixture struct {
	*ledgerFixture
	custodian CustodianService
}

func newCustodianFixture(ctx context.Context) *custodianFixture {
	f := &custodianFixture{ledgerFixture: newLedgerFixture(ctx)}

	gate := NewStaticAccessGate("admin", []string{"minter", "custody"})
	f.custodian = NewCustodianService(f.factory, gate, f.clock, f.svc, "custody")
	return f
}

func TestCustodianService_Deposit(t *testing.T) {
	ctx := context.Background()
	f := newCustodianFixture(ctx)
	now := f.clock.Current

	f.assets.On("Debit", ctx, "alice", int64(2_000)).Return(nil)
	f.assets.On("Credit", ctx, "custody", int64(2_000)).Return(nil)
	f.rates.On("Get", ctx).Return(&models.RateState{Rate: testRate}, nil)
	f.accounts.On("GetByAddress", ctx, "alice").Return(nil, nil)
	f.accounts.On("Save", ctx, mock.MatchedBy(func(a *models.Account) bool {
		// Deposit into an empty account stamps the current global rate
		return a.Address == "alice" &&
			a.Principal == 2_000 &&
			a.Rate == testRate &&
			a.LastAccrualAt.Equal(now)
	})).Return(nil)
	f.entries.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.EntryType == models.EntryTypeMint &&
			e.ChangeAmount == 2_000 &&
			e.Metadata["via"] == "deposit"
	})).Return(nil)

	result, err := f.custodian.Deposit(ctx, "alice", 2_000)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000), result.Amount)
	assert.Equal(t, int64(2_000), result.NewBalance)
	assert.Equal(t, testRate, result.StampedRate)

	f.assets.AssertExpectations(t)
	f.accounts.AssertExpectations(t)
	f.uow.AssertCalled(t, "Commit")

	published := f.uow.PublishedEvents()
	require.Len(t, published, 2)
	deposited, ok := published[1].(events.DepositedEvent)
	require.True(t, ok)
	assert.Equal(t, "alice", deposited.Caller)
	assert.Equal(t, int64(2_000), deposited.Amount)
}

func TestCustodianService_Deposit_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	f := newCustodianFixture(ctx)

	_, err := f.custodian.Deposit(ctx, "alice", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.custodian.Deposit(ctx, "alice", -10)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	f.factory.AssertNotCalled(t, "Create")
}

func TestCustodianService_Deposit_AssetDebitFails(t *testing.T) {
	ctx := context.Background()
	f := newCustodianFixture(ctx)

	f.assets.On("Debit", ctx, "alice", int64(2_000)).
		Return(errors.New("insufficient asset balance"))

	_, err := f.custodian.Deposit(ctx, "alice", 2_000)
	assert.ErrorIs(t, err, ErrExternalTransfer)

	// Nothing committed, nothing minted
	f.uow.AssertNotCalled(t, "Commit")
	f.accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.uow.AssertCalled(t, "Rollback")
}

func TestCustodianService_Redeem(t *testing.T) {
	ctx := context.Background()
	f := newCustodianFixture(ctx)
	now := f.clock.Current

	account := &models.Account{
		Address:       "alice",
		Principal:     2_000,
		Rate:          testRate,
		LastAccrualAt: now,
	}
	f.accounts.On("GetByAddress", ctx, "alice").Return(account, nil)
	f.accounts.On("Save", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Principal == 1_500
	})).Return(nil)
	f.entries.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.EntryType == models.EntryTypeBurn &&
			e.ChangeAmount == -500 &&
			e.Metadata["via"] == "redeem"
	})).Return(nil)
	f.assets.On("Debit", ctx, "custody", int64(500)).Return(nil)
	f.assets.On("Credit", ctx, "alice", int64(500)).Return(nil)

	result, err := f.custodian.Redeem(ctx, "alice", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.Amount)
	assert.Equal(t, int64(1_500), result.NewBalance)

	f.assets.AssertExpectations(t)
	f.uow.AssertCalled(t, "Commit")
}

func TestCustodianService_Redeem_EntireBalanceIncludesInterest(t *testing.T) {
	ctx := context.Background()
	f := newCustodianFixture(ctx)
	now := f.clock.Current

	account := &models.Account{
		Address:       "alice",
		Principal:     100_000_000,
		Rate:          testRate,
		LastAccrualAt: now.Add(-time.Hour),
	}
	f.accounts.On("GetByAddress", ctx, "alice").Return(account, nil)
	f.accounts.On("Save", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Principal == 0
	})).Return(nil)
	f.entries.On("Record", ctx, mock.AnythingOfType("*models.LedgerEntry")).Return(nil)
	// Payout covers the settled balance, not just the deposited principal
	f.assets.On("Debit", ctx, "custody", int64(100_001_141)).Return(nil)
	f.assets.On("Credit", ctx, "alice", int64(100_001_141)).Return(nil)

	result, err := f.custodian.Redeem(ctx, "alice", models.EntireBalance)
	require.NoError(t, err)
	assert.Equal(t, int64(100_001_141), result.Amount)
	assert.Equal(t, int64(0), result.NewBalance)
	f.assets.AssertExpectations(t)
}

func TestCustodianService_Redeem_UnderfundedCustody(t *testing.T) {
	ctx := context.Background()
	f := newCustodianFixture(ctx)

	account := &models.Account{
		Address:       "alice",
		Principal:     2_000,
		Rate:          testRate,
		LastAccrualAt: f.clock.Current,
	}
	f.accounts.On("GetByAddress", ctx, "alice").Return(account, nil)
	f.accounts.On("Save", ctx, mock.AnythingOfType("*models.Account")).Return(nil)
	f.entries.On("Record", ctx, mock.AnythingOfType("*models.LedgerEntry")).Return(nil)
	f.assets.On("Debit", ctx, "custody", int64(2_000)).
		Return(errors.New("insufficient asset balance"))

	_, err := f.custodian.Redeem(ctx, "alice", 2_000)
	assert.ErrorIs(t, err, ErrExternalTransfer)

	// The burn rides the same transaction as the failed payout
	f.uow.AssertNotCalled(t, "Commit")
	f.uow.AssertCalled(t, "Rollback")
}

func TestCustodianService_Redeem_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	f := newCustodianFixture(ctx)

	_, err := f.custodian.Redeem(ctx, "alice", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	f.uow.AssertNotCalled(t, "Commit")
}

func TestCustodianService_FundCustody(t *testing.T) {
	ctx := context.Background()
	f := newCustodianFixture(ctx)

	f.assets.On("Credit", ctx, "custody", int64(10_000)).Return(nil)

	err := f.custodian.FundCustody(ctx, 10_000)
	require.NoError(t, err)
	f.assets.AssertExpectations(t)
	f.uow.AssertCalled(t, "Commit")

	err = f.custodian.FundCustody(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCustodianService_AssetBalanceOf(t *testing.T) {
	ctx := context.Background()
	f := newCustodianFixture(ctx)

	f.assets.On("GetByAddress", ctx, "custody").
		Return(&models.AssetAccount{Address: "custody", Balance: 7_500}, nil)
	f.assets.On("GetByAddress", ctx, "ghost").Return(nil, nil)

	balance, err := f.custodian.AssetBalanceOf(ctx, "custody")
	require.NoError(t, err)
	assert.Equal(t, int64(7_500), balance)

	balance, err = f.custodian.AssetBalanceOf(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCustodianService_CustodyAddress(t *testing.T) {
	f := newCustodianFixture(context.Background())
	assert.Equal(t, "custody", f.custodian.CustodyAddress())
	assert.Same(t, f.svc, f.custodian.Ledger())
}
