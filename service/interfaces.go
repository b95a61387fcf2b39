package service

import (
	"context"

	"yieldvault/events"
	"yieldvault/models"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for ledger account data access
type AccountRepository interface {
	// GetByAddress retrieves an account by address, nil when none exists
	GetByAddress(ctx context.Context, address string) (*models.Account, error)

	// Save upserts an account row (principal, rate and accrual clock)
	Save(ctx context.Context, account *models.Account) error

	// TotalPrincipal returns the sum of all settled principals
	TotalPrincipal(ctx context.Context) (int64, error)

	// GetFunded returns all accounts with a non-zero principal
	GetFunded(ctx context.Context) ([]*models.Account, error)
}

// RateRepository defines the interface for the global rate row
type RateRepository interface {
	// Get retrieves the global rate state, nil before initialization
	Get(ctx context.Context) (*models.RateState, error)

	// Init inserts the initial rate if and only if no rate row exists yet
	Init(ctx context.Context, rate int64) error

	// Set overwrites the global rate. Monotonicity is enforced by the
	// ledger service before calling this.
	Set(ctx context.Context, rate int64, updatedBy string) error
}

// EntryRepository defines the interface for the principal-change audit trail
type EntryRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByAddress returns the most recent entries for an address
	GetByAddress(ctx context.Context, address string, limit int) ([]*models.LedgerEntry, error)

	// GetByOperationID returns all entries written by one logical operation
	GetByOperationID(ctx context.Context, operationID uuid.UUID) ([]*models.LedgerEntry, error)
}

// AssetRepository defines the interface for external-asset holdings. This is
// the transfer primitive the custodian consumes; Debit fails when the holder
// is underfunded, which callers surface as ErrExternalTransfer.
type AssetRepository interface {
	// GetByAddress retrieves an asset holding, nil when none exists
	GetByAddress(ctx context.Context, address string) (*models.AssetAccount, error)

	// Credit adds to a holding, creating the row if needed
	Credit(ctx context.Context, address string, amount int64) error

	// Debit subtracts from a holding, failing if funds are insufficient
	Debit(ctx context.Context, address string, amount int64) error
}

// AccessGate answers privilege questions for the two gated operation classes.
// The ledger consults it but does not implement policy itself.
type AccessGate interface {
	// HasSupplyControl reports whether the caller may mint and burn
	HasSupplyControl(ctx context.Context, address string) bool

	// IsRateAdministrator reports whether the caller may lower the global rate
	IsRateAdministrator(ctx context.Context, address string) bool
}

// LedgerService defines the interest-accruing ledger operation surface
type LedgerService interface {
	// InitRate writes the bootstrap global rate if none exists yet; an
	// existing rate row is never overwritten
	InitRate(ctx context.Context, rate int64) error

	// BalanceOf returns the balance the account would hold after settling
	// right now, without mutating anything
	BalanceOf(ctx context.Context, address string) (int64, error)

	// PrincipalOf returns the stored settled principal, untouched by the
	// passage of time alone
	PrincipalOf(ctx context.Context, address string) (int64, error)

	// Rate returns the current global interest rate
	Rate(ctx context.Context) (int64, error)

	// SetRate lowers the global rate. A value above the current rate fails
	// with ErrRateIncrease and changes nothing.
	SetRate(ctx context.Context, caller string, newRate int64) error

	// Mint settles to and adds amount, stamping stampRate if the account
	// was empty beforehand. Requires supply control.
	Mint(ctx context.Context, caller, to string, amount, stampRate int64) error

	// Burn settles from and subtracts amount, which may be the
	// models.EntireBalance sentinel. Requires supply control. Returns the
	// resolved amount actually burned.
	Burn(ctx context.Context, caller, from string, amount int64) (int64, error)

	// Transfer settles both parties and moves amount between them. A
	// previously empty recipient inherits the sender's locked rate.
	Transfer(ctx context.Context, from, to string, amount int64) (*models.TransferResult, error)

	// EntriesFor returns the most recent audit entries for an address
	EntriesFor(ctx context.Context, address string, limit int) ([]*models.LedgerEntry, error)

	// TotalSupply returns the sum of all settled principals
	TotalSupply(ctx context.Context) (int64, error)
}

// CustodianService is the custodial facade over the ledger: it takes the
// external asset into custody and mints matching ledger units, and the
// reverse on redemption.
type CustodianService interface {
	// Deposit moves amount of the external asset from caller into custody
	// and mints the same amount to caller at the current global rate
	Deposit(ctx context.Context, caller string, amount int64) (*models.DepositResult, error)

	// Redeem burns amount (or the caller's entire settled balance for the
	// models.EntireBalance sentinel) and pays out the same amount of the
	// external asset from custody
	Redeem(ctx context.Context, caller string, amount int64) (*models.RedeemResult, error)

	// FundCustody credits the custody pool with external asset, covering
	// interest owed beyond what depositors paid in
	FundCustody(ctx context.Context, amount int64) error

	// AssetBalanceOf returns a holder's external-asset balance
	AssetBalanceOf(ctx context.Context, address string) (int64, error)

	// CustodyAddress returns the identity of the custody pool
	CustodyAddress() string

	// Ledger returns the ledger this custodian is bound to, fixed at
	// construction
	Ledger() LedgerService
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	RateRepository() RateRepository
	EntryRepository() EntryRepository
	AssetRepository() AssetRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
