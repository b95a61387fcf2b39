package repository

import (
	"context"
	"testing"

	"yieldvault/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRateRepository(testDB.DB)

	t.Run("Get returns nil before initialization", func(t *testing.T) {
		state, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("Set fails before initialization", func(t *testing.T) {
		err := repo.Set(ctx, 100, "admin")
		assert.Error(t, err)
	})

	t.Run("Init writes the first rate", func(t *testing.T) {
		require.NoError(t, repo.Init(ctx, 3170))

		state, err := repo.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, int64(3170), state.Rate)
	})

	t.Run("Init leaves an existing rate untouched", func(t *testing.T) {
		require.NoError(t, repo.Init(ctx, 9_999))

		state, err := repo.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, int64(3170), state.Rate)
	})

	t.Run("Set overwrites rate and records who changed it", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, 1585, "admin"))

		state, err := repo.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, int64(1585), state.Rate)
		assert.Equal(t, "admin", state.UpdatedBy)
	})
}
