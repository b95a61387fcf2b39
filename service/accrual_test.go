package service

import (
	"testing"
	"time"

	"yieldvault/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 10% annual, per second, scaled by RatePrecision: 0.10 * 1e12 / 31_536_000
const testRate int64 = 3170

func TestAccruedInterest(t *testing.T) {
	t.Run("linear growth", func(t *testing.T) {
		// 1e8 units at 10% annual over one hour
		interest, err := accruedInterest(100_000_000, testRate, 3600)
		require.NoError(t, err)
		assert.Equal(t, int64(1141), interest)
	})

	t.Run("truncates toward zero", func(t *testing.T) {
		// Product below one unit of precision disappears entirely
		interest, err := accruedInterest(1, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), interest)
	})

	t.Run("zero principal accrues nothing", func(t *testing.T) {
		interest, err := accruedInterest(0, testRate, 86_400)
		require.NoError(t, err)
		assert.Equal(t, int64(0), interest)
	})

	t.Run("zero rate accrues nothing", func(t *testing.T) {
		interest, err := accruedInterest(100_000, 0, 86_400)
		require.NoError(t, err)
		assert.Equal(t, int64(0), interest)
	})

	t.Run("zero elapsed accrues nothing", func(t *testing.T) {
		interest, err := accruedInterest(100_000, testRate, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), interest)
	})

	t.Run("overflow is rejected", func(t *testing.T) {
		_, err := accruedInterest(1<<62, 1<<40, 1<<30)
		assert.Error(t, err)
	})

	t.Run("equal windows accrue equally within one unit", func(t *testing.T) {
		const window = 3600
		principal := int64(100_000_000)

		first, err := accruedInterest(principal, testRate, window)
		require.NoError(t, err)
		require.Greater(t, first, int64(0))

		// Second window accrues on the already-settled principal, the way
		// back-to-back settlements do.
		second, err := accruedInterest(principal+first, testRate, window)
		require.NoError(t, err)

		assert.LessOrEqual(t, second-first, int64(1))
		assert.GreaterOrEqual(t, second, first)
	})
}

func TestElapsedSeconds(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(0), elapsedSeconds(base, base))
	assert.Equal(t, int64(0), elapsedSeconds(base, base.Add(-time.Hour)))
	assert.Equal(t, int64(0), elapsedSeconds(base, base.Add(900*time.Millisecond)))
	assert.Equal(t, int64(1), elapsedSeconds(base, base.Add(1900*time.Millisecond)))
	assert.Equal(t, int64(3600), elapsedSeconds(base, base.Add(time.Hour)))
}

func TestProjectPrincipal(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil account projects to zero", func(t *testing.T) {
		balance, err := projectPrincipal(nil, base)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})

	t.Run("no elapsed time returns stored principal", func(t *testing.T) {
		account := &models.Account{Address: "alice", Principal: 5000, Rate: testRate, LastAccrualAt: base}
		balance, err := projectPrincipal(account, base)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), balance)
	})

	t.Run("projection adds accrued interest", func(t *testing.T) {
		account := &models.Account{Address: "alice", Principal: 100_000_000, Rate: testRate, LastAccrualAt: base}
		balance, err := projectPrincipal(account, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(100_001_141), balance)
	})

	t.Run("projection never mutates the account", func(t *testing.T) {
		account := &models.Account{Address: "alice", Principal: 100_000_000, Rate: testRate, LastAccrualAt: base}
		_, err := projectPrincipal(account, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(100_000_000), account.Principal)
		assert.Equal(t, base, account.LastAccrualAt)
	})
}
