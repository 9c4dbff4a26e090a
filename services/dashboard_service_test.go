package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-backend/models"
	"wedding-backend/store"
)

func testDashboard(p store.Provider, fallback bool) *DashboardService {
	s := NewDashboardService(p, zerolog.Nop(), 0, testNow.Add(36*time.Hour), fallback)
	s.Now = fixedNow
	return s
}

func seed(t *testing.T, m *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	five := 5

	records := []struct {
		inv     models.Invitation
		created time.Time
	}{
		{models.Invitation{Email: "yes@example.com", Names: []string{"A", "B"}, Response: strp("yes"), GuestCount: 2, PossibleInvitesInvited: &five, Message: "veggie", InvitationValid: true}, testNow.Add(-time.Hour)},
		{models.Invitation{Email: "no@example.com", Names: []string{"C"}, Response: strp("no"), GuestCount: 1}, testNow.AddDate(0, 0, -2)},
		{models.Invitation{Email: "pending@example.com", Names: []string{"D"}, GuestCount: 1}, TrackingStart.Add(-time.Hour)},
	}
	for _, r := range records {
		inv := r.inv
		_, err := m.Invitations().Upsert(ctx, &inv, r.created)
		require.NoError(t, err)
	}
	require.NoError(t, m.WellWishes().Create(ctx, &models.WellWish{Name: "Rosa", Message: "hi", CreatedAt: testNow}))
	for i, v := range []models.Visit{
		{InvitedBy: "maria", SessionID: "s1", VisitedAt: testNow.Add(-time.Hour)},
		{InvitedBy: "maria", SessionID: "s1", VisitedAt: testNow.AddDate(0, 0, -3)},
		{InvitedBy: "daniel", SessionID: "s2", VisitedAt: testNow.AddDate(0, 0, -1)},
		{InvitedBy: "maria", SessionID: "s3", VisitedAt: testNow.AddDate(0, 0, -45)},
	} {
		require.NoError(t, m.Visits().Create(ctx, &v), i)
	}
}

func strp(s string) *string { return &s }

func TestDashboardService_Stats(t *testing.T) {
	p, mem := memProvider()
	seed(t, mem)

	stats, err := testDashboard(p, true).Stats(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, stats.IsDemo)

	m := stats.Metrics
	assert.EqualValues(t, 3, m.TotalInvitations)
	assert.EqualValues(t, 2, m.ConfirmedGuests)
	assert.EqualValues(t, 1, m.Declined)
	assert.EqualValues(t, 1, m.Pending)
	assert.EqualValues(t, 2, m.Responded)
	assert.EqualValues(t, m.TotalInvitations, m.Pending+m.Responded)
	assert.EqualValues(t, 67, m.ResponseRate)
	assert.EqualValues(t, 5, m.TotalPossibleInvites)
	assert.EqualValues(t, 1, m.ValidInvitations)
	assert.EqualValues(t, 3, m.AvailableSpots)
	assert.EqualValues(t, 2, m.DaysUntilWedding)
	assert.EqualValues(t, 1, m.DietaryRestrictions)
	assert.EqualValues(t, 1, m.TotalWellWishes)
	assert.EqualValues(t, 4, m.TotalVisits)
	assert.EqualValues(t, 3, m.UniqueVisitors)
	assert.EqualValues(t, 1, m.VisitsToday)
	// two RSVPs after tracking started over four visits
	assert.EqualValues(t, 50, m.ConversionRate)

	c := stats.Charts
	require.Len(t, c.DailyRSVPs, 30)
	require.Len(t, c.DailyVisits, 30)
	assert.Equal(t, "2026-03-10", c.DailyVisits[29].Date)
	assert.EqualValues(t, 1, c.DailyVisits[29].Count)
	assert.EqualValues(t, 1, c.DailyRSVPs[29].Count)
	assert.EqualValues(t, 1, c.DailyRSVPs[27].Count)
	assert.Equal(t, []StatusCount{
		{Status: store.StatusAttending, Count: 1},
		{Status: store.StatusDeclined, Count: 1},
		{Status: store.StatusPending, Count: 1},
	}, c.StatusBreakdown)
	assert.Equal(t, []store.InviterCount{{InvitedBy: "maria", Count: 3}, {InvitedBy: "daniel", Count: 1}}, c.VisitsByInviter)

	require.Len(t, stats.RecentRSVPs, 3)
	assert.Equal(t, "yes@example.com", stats.RecentRSVPs[0].Email)
	assert.Len(t, stats.RecentWellWishes, 1)
}

func TestDashboardService_EmptyCollections(t *testing.T) {
	p, _ := memProvider()
	stats, err := testDashboard(p, true).Stats(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, stats.Metrics.ResponseRate)
	assert.Zero(t, stats.Metrics.ConversionRate)
	assert.NotNil(t, stats.RecentRSVPs)
	assert.NotNil(t, stats.Charts.VisitsByInviter)
}

func TestDashboardService_DemoFallback(t *testing.T) {
	stats, err := testDashboard(downProvider{}, true).Stats(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, stats.IsDemo)
	assert.EqualValues(t, 12, stats.Metrics.TotalInvitations)

	_, err = testDashboard(downProvider{}, false).Stats(context.Background(), false)
	assert.ErrorIs(t, err, ErrUnavailable)

	page, err := testDashboard(downProvider{}, true).List(context.Background(), store.ListQuery{Limit: 5}, false)
	require.NoError(t, err)
	assert.True(t, page.IsDemo)
	assert.Len(t, page.RSVPs, 5)
	assert.EqualValues(t, 12, page.Pagination.TotalItems)

	_, err = testDashboard(downProvider{}, false).List(context.Background(), store.ListQuery{}, false)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDashboardService_TimeoutFallsBackToDemo(t *testing.T) {
	svc := testDashboard(stalledProvider{}, true)
	svc.Timeout = 50 * time.Millisecond

	started := time.Now()
	stats, err := svc.Stats(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, stats.IsDemo)
	assert.Less(t, time.Since(started), time.Second)

	svc.DemoFallback = false
	_, err = svc.Stats(context.Background(), false)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDashboardService_DemoRequested(t *testing.T) {
	p, mem := memProvider()
	seed(t, mem)

	page, err := testDashboard(p, false).List(context.Background(), store.ListQuery{Status: store.StatusDeclined}, true)
	require.NoError(t, err)
	assert.True(t, page.IsDemo)
	for _, inv := range page.RSVPs {
		assert.Equal(t, "no", inv.ResponseValue())
	}
}

func TestDashboardService_List(t *testing.T) {
	p, mem := memProvider()
	seed(t, mem)

	page, err := testDashboard(p, true).List(context.Background(), store.ListQuery{Status: store.StatusPending}, false)
	require.NoError(t, err)
	assert.False(t, page.IsDemo)
	require.Len(t, page.RSVPs, 1)
	assert.Equal(t, "pending@example.com", page.RSVPs[0].Email)
	assert.Equal(t, store.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1, Limit: 10}, page.Pagination)
}

func TestDashboardService_Delete(t *testing.T) {
	ctx := context.Background()
	p, mem := memProvider()
	seed(t, mem)
	svc := testDashboard(p, true)

	_, ok := IsValidation(svc.Delete(ctx, " "))
	assert.True(t, ok)
	assert.ErrorIs(t, svc.Delete(ctx, "missing"), store.ErrNotFound)

	all, err := mem.Invitations().All(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, all[0].ID))

	after, err := mem.Invitations().All(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(all)-1)

	assert.ErrorIs(t, testDashboard(downProvider{}, true).Delete(ctx, "x"), ErrUnavailable)
}

func TestDaysUntil(t *testing.T) {
	assert.EqualValues(t, 1, DaysUntil(testNow, testNow.Add(time.Hour)))
	assert.EqualValues(t, 0, DaysUntil(testNow, testNow))
	assert.EqualValues(t, 3, DaysUntil(testNow, testNow.AddDate(0, 0, 3)))
}
