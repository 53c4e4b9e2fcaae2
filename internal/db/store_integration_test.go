package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoreIntegration runs against TEST_DATABASE_URL and is skipped without it.
func TestStoreIntegration(t *testing.T) {
	if err := InitTestDB("../../migrations"); err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	store := TestStore
	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())

	userID, err := store.CreateUser(email, "hashedpassword", nil)
	require.NoError(t, err)
	require.Greater(t, userID, 0)

	t.Run("User Management", func(t *testing.T) {
		user, err := store.GetUserByEmail(email)
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)

		name := "Updated Name"
		require.NoError(t, store.UpdateUserProfile(userID, email, &name))
		user, err = store.GetUserByID(userID)
		require.NoError(t, err)
		require.NotNil(t, user.Name)
		assert.Equal(t, name, *user.Name)
	})

	t.Run("Availability", func(t *testing.T) {
		a, err := store.CreateAvailability(userID, "MONDAY", "07:00", "09:30")
		require.NoError(t, err)
		assert.Equal(t, "07:00", a.StartTime)
		assert.Equal(t, "09:30", a.EndTime)

		list, err := store.ListAvailability(userID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a.ID, list[0].ID)

		_, err = store.CreateAvailability(userID, "MONDAY", "10:00", "09:00")
		assert.Error(t, err, "check constraint rejects reversed ranges")

		require.NoError(t, store.DeleteAvailability(userID, a.ID))
		assert.ErrorIs(t, store.DeleteAvailability(userID, a.ID), ErrNotFound)
	})
}
