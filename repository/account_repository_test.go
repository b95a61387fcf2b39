package repository

import (
	"context"
	"testing"
	"time"

	"yieldvault/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)

	t.Run("GetByAddress returns nil for unknown account", func(t *testing.T) {
		account, err := repo.GetByAddress(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("Save inserts and reads back", func(t *testing.T) {
		account := testutil.CreateTestAccount("alice", 100_000, 3170)
		require.NoError(t, repo.Save(ctx, account))
		assert.False(t, account.CreatedAt.IsZero())
		assert.False(t, account.UpdatedAt.IsZero())

		loaded, err := repo.GetByAddress(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, int64(100_000), loaded.Principal)
		assert.Equal(t, int64(3170), loaded.Rate)
		assert.WithinDuration(t, account.LastAccrualAt, loaded.LastAccrualAt, time.Millisecond)
	})

	t.Run("Save upserts principal, rate and accrual clock", func(t *testing.T) {
		account := testutil.CreateTestAccount("bob", 500, 3170)
		require.NoError(t, repo.Save(ctx, account))

		account.Principal = 750
		account.Rate = 1585
		account.LastAccrualAt = account.LastAccrualAt.Add(time.Hour)
		require.NoError(t, repo.Save(ctx, account))

		loaded, err := repo.GetByAddress(ctx, "bob")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, int64(750), loaded.Principal)
		assert.Equal(t, int64(1585), loaded.Rate)
		assert.WithinDuration(t, account.LastAccrualAt, loaded.LastAccrualAt, time.Millisecond)
	})

	t.Run("TotalPrincipal sums all accounts", func(t *testing.T) {
		total, err := repo.TotalPrincipal(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(100_000+750), total)
	})

	t.Run("GetFunded skips drained accounts", func(t *testing.T) {
		drained := testutil.CreateTestAccount("carol", 0, 3170)
		require.NoError(t, repo.Save(ctx, drained))

		funded, err := repo.GetFunded(ctx)
		require.NoError(t, err)
		require.Len(t, funded, 2)

		// Largest principal first
		assert.Equal(t, "alice", funded[0].Address)
		assert.Equal(t, "bob", funded[1].Address)
	})
}
