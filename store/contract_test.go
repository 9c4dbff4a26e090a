package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-backend/models"
)

var t0 = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func rsvp(email, response string, guests int, names ...string) *models.Invitation {
	inv := &models.Invitation{
		Email:      email,
		Names:      names,
		GuestCount: guests,
		Timestamp:  t0,
	}
	if response != "" {
		inv.Response = strPtr(response)
	}
	return inv
}

// runStoreContract checks behaviour every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("upsert is last write wins", func(t *testing.T) {
		s := newStore(t)
		repo := s.Invitations()

		created, err := repo.Upsert(ctx, rsvp("ana@example.com", "yes", 2, "Ana", "Luis"), t0)
		require.NoError(t, err)
		assert.True(t, created)

		second := rsvp("ana@example.com", "no", 1, "Ana")
		created, err = repo.Upsert(ctx, second, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, created)

		all, err := repo.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		got := all[0]
		assert.Equal(t, []string{"Ana"}, []string(got.Names))
		assert.Equal(t, "no", got.ResponseValue())
		assert.Equal(t, 1, got.GuestCount)
		assert.True(t, got.CreatedAt.Equal(t0))
		require.NotNil(t, got.UpdatedAt)
		assert.True(t, got.UpdatedAt.Equal(t0.Add(time.Hour)))
		assert.Equal(t, second.ID, got.ID)
	})

	t.Run("find by name is literal and case insensitive", func(t *testing.T) {
		s := newStore(t)
		repo := s.Invitations()

		odd := rsvp("obrien@example.com", "yes", 1, "A. O'Brien (Jr.)")
		_, err := repo.Upsert(ctx, odd, t0)
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, rsvp("abrien@example.com", "yes", 1, "AB O'Brien (Jr)"), t0)
		require.NoError(t, err)
		person := rsvp("maria@example.com", "", 1, "Someone Else")
		person.InvitedPerson = "María 100%"
		_, err = repo.Upsert(ctx, person, t0)
		require.NoError(t, err)

		found, err := repo.FindByName(ctx, "a. o'brien (jr.)")
		require.NoError(t, err)
		assert.Equal(t, "obrien@example.com", found.Email)

		_, err = repo.FindByName(ctx, "A. O'Brien")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.FindByName(ctx, ".*")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.FindByName(ctx, "María 1%")
		assert.ErrorIs(t, err, ErrNotFound)

		found, err = repo.FindByName(ctx, "maría 100%")
		require.NoError(t, err)
		assert.Equal(t, "maria@example.com", found.Email)
	})

	t.Run("names with escaped or accented characters", func(t *testing.T) {
		s := newStore(t)
		repo := s.Invitations()

		names := []string{"Ana & Luis", "Tom <Jr>", `Say "Hi"`, `Back\Slash`, "JOSÉ PÉREZ"}
		for i, name := range names {
			_, err := repo.Upsert(ctx, rsvp(fmt.Sprintf("n%d@example.com", i), "yes", 1, name), t0)
			require.NoError(t, err)
		}

		for i, name := range names {
			found, err := repo.FindByName(ctx, strings.ToLower(name))
			require.NoError(t, err, name)
			assert.Equal(t, fmt.Sprintf("n%d@example.com", i), found.Email)

			items, total, err := repo.List(ctx, ListQuery{Search: strings.ToLower(name)})
			require.NoError(t, err, name)
			assert.EqualValues(t, 1, total, name)
			require.Len(t, items, 1)
			assert.Equal(t, fmt.Sprintf("n%d@example.com", i), items[0].Email)
		}

		_, total, err := repo.List(ctx, ListQuery{Search: "pérez", Status: StatusDeclined})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("list filters sorts and pages", func(t *testing.T) {
		s := newStore(t)
		repo := s.Invitations()
		for i := 0; i < 12; i++ {
			response := []string{"yes", "no", ""}[i%3]
			inv := rsvp(fmt.Sprintf("guest%02d@example.com", i), response, 1, fmt.Sprintf("Guest %02d", i))
			inv.InvitedBy = "maria"
			_, err := repo.Upsert(ctx, inv, t0.Add(time.Duration(i)*time.Minute))
			require.NoError(t, err)
		}

		items, total, err := repo.List(ctx, ListQuery{Page: 1, Limit: 5})
		require.NoError(t, err)
		assert.EqualValues(t, 12, total)
		require.Len(t, items, 5)
		assert.Equal(t, "guest11@example.com", items[0].Email)
		assert.Equal(t, "guest07@example.com", items[4].Email)

		items, total, err = repo.List(ctx, ListQuery{Page: 3, Limit: 5})
		require.NoError(t, err)
		assert.EqualValues(t, 12, total)
		assert.Len(t, items, 2)

		items, total, err = repo.List(ctx, ListQuery{Status: StatusPending})
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		for _, inv := range items {
			assert.Equal(t, StatusPending, Classify(inv))
		}

		items, total, err = repo.List(ctx, ListQuery{Status: StatusAttending, Search: "GUEST 0"})
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Len(t, items, 4)

		_, total, err = repo.List(ctx, ListQuery{Search: "100%"})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("totals", func(t *testing.T) {
		s := newStore(t)
		repo := s.Invitations()

		yes := rsvp("yes@example.com", "yes", 2, "A", "B")
		yes.PossibleInvitesInvited = intPtr(5)
		yes.InvitationValid = true
		yes.Message = "no nuts"
		no := rsvp("no@example.com", "no", 1, "C")
		no.PossibleInvitesInvited = intPtr(2)
		no.Message = "   "
		pending := rsvp("pending@example.com", "", 1, "D")

		for _, inv := range []*models.Invitation{yes, no, pending} {
			_, err := repo.Upsert(ctx, inv, t0)
			require.NoError(t, err)
		}

		totals, err := repo.Totals(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, totals.TotalInvitations)
		assert.EqualValues(t, 2, totals.ConfirmedGuests)
		assert.EqualValues(t, 1, totals.Declined)
		assert.EqualValues(t, 2, totals.Responded)
		assert.EqualValues(t, 1, totals.Pending())
		assert.EqualValues(t, totals.TotalInvitations, totals.Pending()+totals.Responded)
		assert.EqualValues(t, 7, totals.TotalPossibleInvites)
		assert.EqualValues(t, 1, totals.ValidInvitations)
		assert.EqualValues(t, 3, totals.UnusedSpots)
		assert.EqualValues(t, 1, totals.WithMessage)
	})

	t.Run("empty totals", func(t *testing.T) {
		totals, err := newStore(t).Invitations().Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, Totals{}, totals)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		repo := s.Invitations()
		inv := rsvp("gone@example.com", "yes", 1, "Gone")
		_, err := repo.Upsert(ctx, inv, t0)
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, inv.ID))
		assert.ErrorIs(t, repo.Delete(ctx, inv.ID), ErrNotFound)
		all, err := repo.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("created since", func(t *testing.T) {
		s := newStore(t)
		repo := s.Invitations()
		_, err := repo.Upsert(ctx, rsvp("old@example.com", "yes", 1, "Old"), t0.AddDate(0, 0, -40))
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, rsvp("new@example.com", "yes", 1, "New"), t0)
		require.NoError(t, err)

		n, err := repo.CountCreatedSince(ctx, t0.AddDate(0, 0, -1))
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		times, err := repo.CreatedTimes(ctx, t0.AddDate(0, 0, -1))
		require.NoError(t, err)
		require.Len(t, times, 1)
		assert.True(t, times[0].Equal(t0))
	})

	t.Run("well wishes newest first", func(t *testing.T) {
		s := newStore(t)
		repo := s.WellWishes()
		for i := 0; i < 3; i++ {
			at := t0.Add(time.Duration(i) * time.Minute)
			require.NoError(t, repo.Create(ctx, &models.WellWish{Name: fmt.Sprint("w", i), Message: "hi", Timestamp: at, CreatedAt: at}))
		}
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		recent, err := repo.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "w2", recent[0].Name)
		assert.Equal(t, "w1", recent[1].Name)
	})

	t.Run("visits", func(t *testing.T) {
		s := newStore(t)
		repo := s.Visits()
		add := func(inviter, session, ip string, at time.Time) {
			require.NoError(t, repo.Create(ctx, &models.Visit{InvitedBy: inviter, SessionID: session, IPHash: ip, VisitedAt: at}))
		}
		add("maria", "s1", "ip1", t0.Add(-2*time.Minute))
		add("maria", "s2", "ip2", t0.Add(-26*time.Hour))
		add("daniel", "s3", "ip1", t0.Add(-time.Minute))

		since := t0.Add(-5 * time.Minute)
		seen, err := repo.FindRecent(ctx, VisitMatch{InvitedBy: "maria", SessionID: "s1", Since: since})
		require.NoError(t, err)
		assert.True(t, seen)

		seen, err = repo.FindRecent(ctx, VisitMatch{InvitedBy: "maria", SessionID: "other", IPHash: "ip1", Since: since})
		require.NoError(t, err)
		assert.True(t, seen, "same ip counts")

		seen, err = repo.FindRecent(ctx, VisitMatch{InvitedBy: "maria", SessionID: "s2", Since: since})
		require.NoError(t, err)
		assert.False(t, seen, "outside window")

		seen, err = repo.FindRecent(ctx, VisitMatch{InvitedBy: "abuela", SessionID: "s1", IPHash: "ip1", Since: since})
		require.NoError(t, err)
		assert.False(t, seen, "other inviter")

		today := time.Date(t0.Year(), t0.Month(), t0.Day(), 0, 0, 0, 0, time.UTC)
		summary, err := repo.Summary(ctx, today, today.AddDate(0, 0, -29))
		require.NoError(t, err)
		assert.EqualValues(t, 3, summary.Total)
		assert.EqualValues(t, 3, summary.UniqueSessions)
		assert.EqualValues(t, 2, summary.Today)
		assert.Len(t, summary.Times, 3)
		assert.Equal(t, []InviterCount{{InvitedBy: "maria", Count: 2}, {InvitedBy: "daniel", Count: 1}}, summary.ByInviter)

		all, err := repo.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "daniel", all[0].InvitedBy)
	})

	t.Run("visits without a session are not visitors", func(t *testing.T) {
		s := newStore(t)
		repo := s.Visits()
		for _, session := range []string{"", "", "s1"} {
			require.NoError(t, repo.Create(ctx, &models.Visit{InvitedBy: "maria", SessionID: session, IPHash: "ip", VisitedAt: t0}))
		}

		summary, err := repo.Summary(ctx, t0.Add(-time.Hour), t0.AddDate(0, 0, -29))
		require.NoError(t, err)
		assert.EqualValues(t, 3, summary.Total)
		assert.EqualValues(t, 1, summary.UniqueSessions)
	})
}
