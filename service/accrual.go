package service

import (
	"fmt"
	"math"
	"math/big"
	"time"

	"yieldvault/models"
)

// accruedInterest computes the linear interest earned by principal at the
// given per-second rate (scaled by models.RatePrecision) over elapsed whole
// seconds. The triple product can exceed 64 bits long before the final
// division, so it runs through math/big; the one truncating division keeps
// each settlement within one smallest-denomination unit of the exact value.
func accruedInterest(principal, rate, elapsedSeconds int64) (int64, error) {
	if principal <= 0 || rate <= 0 || elapsedSeconds <= 0 {
		return 0, nil
	}

	product := new(big.Int).SetInt64(principal)
	product.Mul(product, big.NewInt(rate))
	product.Mul(product, big.NewInt(elapsedSeconds))
	product.Quo(product, big.NewInt(models.RatePrecision))

	if !product.IsInt64() {
		return 0, fmt.Errorf("accrued interest overflows int64 for principal %d rate %d elapsed %ds", principal, rate, elapsedSeconds)
	}
	return product.Int64(), nil
}

// elapsedSeconds returns the whole seconds between the account's last
// settlement and now, never negative. Sub-second remainders are dropped; they
// settle on a later call once a full second has passed.
func elapsedSeconds(lastAccrualAt, now time.Time) int64 {
	if !now.After(lastAccrualAt) {
		return 0
	}
	return int64(now.Sub(lastAccrualAt) / time.Second)
}

// projectPrincipal returns the principal the account would hold after
// settling at now. Both the read-only balance query and the settling
// mutations call this, so the two paths cannot drift apart.
func projectPrincipal(account *models.Account, now time.Time) (int64, error) {
	if account == nil {
		return 0, nil
	}

	interest, err := accruedInterest(account.Principal, account.Rate, elapsedSeconds(account.LastAccrualAt, now))
	if err != nil {
		return 0, err
	}
	if interest > math.MaxInt64-account.Principal {
		return 0, fmt.Errorf("settled principal overflows int64 for account %s", account.Address)
	}
	return account.Principal + interest, nil
}
