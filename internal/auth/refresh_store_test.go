package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRefreshStoreIssueAndRedeem(t *testing.T) {
	store := NewRefreshStore(time.Hour)

	token, err := store.Issue("01HQZX3Y4K6F7G8H9J0K1M2N3P")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	accountID, err := store.Redeem(token)
	require.NoError(t, err)
	require.Equal(t, "01HQZX3Y4K6F7G8H9J0K1M2N3P", accountID)
}

func TestRefreshStoreSingleUse(t *testing.T) {
	store := NewRefreshStore(time.Hour)

	token, err := store.Issue("01HQZX3Y4K6F7G8H9J0K1M2N3P")
	require.NoError(t, err)

	_, err = store.Redeem(token)
	require.NoError(t, err)

	_, err = store.Redeem(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshStoreUnknownToken(t *testing.T) {
	store := NewRefreshStore(time.Hour)

	_, err := store.Redeem("never-issued")

	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshStoreExpiry(t *testing.T) {
	store := NewRefreshStore(time.Hour)
	current := time.Now()
	store.now = func() time.Time { return current }

	token, err := store.Issue("01HQZX3Y4K6F7G8H9J0K1M2N3P")
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)

	_, err = store.Redeem(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshStorePurge(t *testing.T) {
	store := NewRefreshStore(time.Hour)
	current := time.Now()
	store.now = func() time.Time { return current }

	_, err := store.Issue("01HQZX3Y4K6F7G8H9J0K1M2N3P")
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	store.Purge()

	require.Empty(t, store.tokens)
}

func TestRefreshStoreRequiresAccount(t *testing.T) {
	store := NewRefreshStore(time.Hour)

	_, err := store.Issue("")

	require.ErrorIs(t, err, ErrInvalidToken)
}
