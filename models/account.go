package models

import (
	"math"
	"time"
)

// RatePrecision is the fixed-point scaling factor shared by every rate in the
// system. A stored rate of RatePrecision means 100% interest per second; the
// per-second rates actually configured are tiny integers on this scale.
// Settlement multiplies principal * rate * elapsed seconds and divides by
// RatePrecision exactly once, truncating, so a single settlement is off by at
// most one smallest-denomination unit.
const RatePrecision int64 = 1_000_000_000_000

// EntireBalance is the sentinel amount accepted by burn and redeem meaning
// "the account's whole settled balance", resolved after settlement.
const EntireBalance int64 = math.MaxInt64

// Account is one ledger account. Principal is the settled balance in
// smallest-denomination units and excludes interest accrued since
// LastAccrualAt. Rate is the per-second rate (scaled by RatePrecision) locked
// in when the account last went from empty to funded; later global rate
// changes do not touch it.
type Account struct {
	Address       string    `db:"address"`
	Principal     int64     `db:"principal"`
	Rate          int64     `db:"rate"`
	LastAccrualAt time.Time `db:"last_accrual_at"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Funded reports whether the account currently holds a non-zero settled
// principal. Accounts that drained back to zero keep their row (and stale
// rate) but are re-stamped on the next funding.
func (a *Account) Funded() bool {
	return a != nil && a.Principal > 0
}
