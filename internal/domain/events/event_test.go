package events

import (
	"testing"

	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/stretchr/testify/require"
)

func TestDeriveComputedFree(t *testing.T) {
	cases := []struct {
		basePrice int
		maxPrice  int
		free      bool
	}{
		{0, 0, true},
		{100, 0, false},
		{0, 100, false},
		{100, 200, false},
	}

	for _, tc := range cases {
		event := &Event{BasePrice: tc.basePrice, MaxPrice: tc.maxPrice}

		event.DeriveComputed()

		require.Equal(t, tc.free, event.Free,
			"basePrice=%d maxPrice=%d", tc.basePrice, tc.maxPrice)
	}
}

func TestDeriveComputedOffline(t *testing.T) {
	cases := []struct {
		location string
		offline  bool
	}{
		{"강남", true},
		{"", false},
		{"        ", false},
	}

	for _, tc := range cases {
		event := &Event{Location: tc.location}

		event.DeriveComputed()

		require.Equal(t, tc.offline, event.Offline, "location=%q", tc.location)
	}
}

func TestDeriveComputedIdempotent(t *testing.T) {
	event := &Event{BasePrice: 0, MaxPrice: 0, Location: "군포시"}

	event.DeriveComputed()
	first := *event
	event.DeriveComputed()

	require.Equal(t, first.Free, event.Free)
	require.Equal(t, first.Offline, event.Offline)
}

func TestDeriveComputedNegativePricesNotFree(t *testing.T) {
	// Negative prices are not rejected anywhere; they are simply not zero.
	event := &Event{BasePrice: -1, MaxPrice: 0}

	event.DeriveComputed()

	require.False(t, event.Free)
}

func TestManagedBy(t *testing.T) {
	owner := &accounts.Account{ID: "01HQZX3Y4K6F7G8H9J0K1M2N3P"}
	event := &Event{Manager: owner}

	require.True(t, event.ManagedBy(owner.ID))
	require.False(t, event.ManagedBy("01HQZX3Y4K6F7G8H9J0K1M2N3Q"))
	require.False(t, event.ManagedBy(""))

	orphan := &Event{}
	require.False(t, orphan.ManagedBy(owner.ID))

	var nilEvent *Event
	require.False(t, nilEvent.ManagedBy(owner.ID))
}

func TestManagedByIgnoresAdminRole(t *testing.T) {
	owner := &accounts.Account{ID: "01HQZX3Y4K6F7G8H9J0K1M2N3P", Roles: []accounts.Role{accounts.RoleUser}}
	admin := &accounts.Account{ID: "01HQZX3Y4K6F7G8H9J0K1M2N3Q", Roles: []accounts.Role{accounts.RoleAdmin}}
	event := &Event{Manager: owner}

	require.False(t, event.ManagedBy(admin.ID))
}

func TestApplyInputRecomputesFlags(t *testing.T) {
	event := &Event{ID: "01HQZX3Y4K6F7G8H9J0K1M2N3P", Status: StatusDraft, Free: false, Offline: true}

	event.ApplyInput(Input{Name: "updated", BasePrice: 0, MaxPrice: 0, Location: "   "})

	require.Equal(t, "updated", event.Name)
	require.True(t, event.Free)
	require.False(t, event.Offline)
	require.Equal(t, StatusDraft, event.Status)
	require.Equal(t, "01HQZX3Y4K6F7G8H9J0K1M2N3P", event.ID)
}
