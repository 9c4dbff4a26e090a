package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Invitations().All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	inv := rsvp("copy@example.com", "yes", 1, "Original")
	_, err := s.Invitations().Upsert(ctx, inv, t0)
	require.NoError(t, err)

	inv.Names[0] = "Mutated"
	all, err := s.Invitations().All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Original", all[0].Names[0])
}

func TestDemoStore(t *testing.T) {
	ctx := context.Background()
	s := NewDemoStore()

	totals, err := s.Invitations().Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 12, totals.TotalInvitations)
	assert.EqualValues(t, totals.TotalInvitations, totals.Pending()+totals.Responded)

	items, total, err := s.Invitations().List(ctx, ListQuery{Search: "maria", Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Positive(t, total)
	assert.LessOrEqual(t, len(items), 3)

	// each call gets its own copy of the fixture
	require.NoError(t, s.Invitations().Delete(ctx, "demo-rsvp-01"))
	fresh, err := NewDemoStore().Invitations().Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 12, fresh.TotalInvitations)
}
