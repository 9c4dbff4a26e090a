package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wedding-backend/models"
)

// MemoryStore keeps every collection in process memory. It backs demo mode
// and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	invitations []models.Invitation
	wellWishes  []models.WellWish
	visits      []models.Visit
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Invitations() InvitationRepository { return memInvitations{m} }
func (m *MemoryStore) WellWishes() WellWishRepository    { return memWellWishes{m} }
func (m *MemoryStore) Visits() VisitRepository           { return memVisits{m} }
func (m *MemoryStore) Ping(ctx context.Context) error    { return ctx.Err() }
func (m *MemoryStore) Close() error                      { return nil }

type memInvitations struct{ m *MemoryStore }

func (r memInvitations) Upsert(ctx context.Context, inv *models.Invitation, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for i, existing := range r.m.invitations {
		if existing.Email == inv.Email {
			inv.ID = existing.ID
			inv.CreatedAt = existing.CreatedAt
			inv.UpdatedAt = &now
			r.m.invitations[i] = cloneInvitation(*inv)
			return false, nil
		}
	}
	inv.EnsureID()
	inv.CreatedAt = now
	inv.UpdatedAt = nil
	r.m.invitations = append(r.m.invitations, cloneInvitation(*inv))
	return true, nil
}

func (r memInvitations) FindByName(ctx context.Context, name string) (*models.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, inv := range r.m.invitations {
		if NameMatches(inv, name) {
			found := cloneInvitation(inv)
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r memInvitations) All(ctx context.Context) ([]models.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := r.snapshot()
	SortNewestFirst(items)
	return items, nil
}

func (r memInvitations) List(ctx context.Context, q ListQuery) ([]models.Invitation, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	items, total := ApplyQuery(r.snapshot(), q)
	return items, total, nil
}

func (r memInvitations) Recent(ctx context.Context, n int) ([]models.Invitation, error) {
	items, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func (r memInvitations) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for i, inv := range r.m.invitations {
		if inv.ID == id {
			r.m.invitations = append(r.m.invitations[:i], r.m.invitations[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r memInvitations) Totals(ctx context.Context) (Totals, error) {
	if err := ctx.Err(); err != nil {
		return Totals{}, err
	}
	return TotalsOf(r.snapshot()), nil
}

func (r memInvitations) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	times, err := r.CreatedTimes(ctx, since)
	return int64(len(times)), err
}

func (r memInvitations) CreatedTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var out []time.Time
	for _, inv := range r.m.invitations {
		if !inv.CreatedAt.Before(since) {
			out = append(out, inv.CreatedAt)
		}
	}
	return out, nil
}

func (r memInvitations) snapshot() []models.Invitation {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]models.Invitation, len(r.m.invitations))
	for i, inv := range r.m.invitations {
		out[i] = cloneInvitation(inv)
	}
	return out
}

func cloneInvitation(inv models.Invitation) models.Invitation {
	inv.Names = append(inv.Names[:0:0], inv.Names...)
	return inv
}

type memWellWishes struct{ m *MemoryStore }

func (r memWellWishes) Create(ctx context.Context, w *models.WellWish) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	w.EnsureID()
	r.m.wellWishes = append(r.m.wellWishes, *w)
	return nil
}

func (r memWellWishes) All(ctx context.Context) ([]models.WellWish, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	out := append([]models.WellWish(nil), r.m.wellWishes...)
	r.m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r memWellWishes) Recent(ctx context.Context, n int) ([]models.WellWish, error) {
	items, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func (r memWellWishes) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.m.wellWishes)), nil
}

type memVisits struct{ m *MemoryStore }

func (r memVisits) Create(ctx context.Context, v *models.Visit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v.EnsureID()
	r.m.visits = append(r.m.visits, *v)
	return nil
}

func (r memVisits) FindRecent(ctx context.Context, m VisitMatch) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, v := range r.m.visits {
		if v.InvitedBy != m.InvitedBy || v.VisitedAt.Before(m.Since) {
			continue
		}
		if (m.SessionID != "" && v.SessionID == m.SessionID) || (m.IPHash != "" && v.IPHash == m.IPHash) {
			return true, nil
		}
	}
	return false, nil
}

func (r memVisits) All(ctx context.Context) ([]models.Visit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	out := append([]models.Visit(nil), r.m.visits...)
	r.m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].VisitedAt.After(out[j].VisitedAt) })
	return out, nil
}

func (r memVisits) Summary(ctx context.Context, dayStart, timelineSince time.Time) (VisitSummary, error) {
	if err := ctx.Err(); err != nil {
		return VisitSummary{}, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var s VisitSummary
	sessions := map[string]struct{}{}
	inviters := map[string]int64{}
	for _, v := range r.m.visits {
		s.Total++
		if v.SessionID != "" {
			sessions[v.SessionID] = struct{}{}
		}
		inviters[v.InvitedBy]++
		if !v.VisitedAt.Before(dayStart) {
			s.Today++
		}
		if !v.VisitedAt.Before(timelineSince) {
			s.Times = append(s.Times, v.VisitedAt)
		}
	}
	s.UniqueSessions = int64(len(sessions))
	for who, n := range inviters {
		s.ByInviter = append(s.ByInviter, InviterCount{InvitedBy: who, Count: n})
	}
	SortInviterCounts(s.ByInviter)
	return s, nil
}

// SortInviterCounts orders by count descending, then inviter name.
func SortInviterCounts(c []InviterCount) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].Count != c[j].Count {
			return c[i].Count > c[j].Count
		}
		return strings.ToLower(c[i].InvitedBy) < strings.ToLower(c[j].InvitedBy)
	})
}
