package store

import (
	"sort"
	"strings"

	"wedding-backend/models"
)

type Status string

const (
	StatusAll       Status = ""
	StatusAttending Status = "attending"
	StatusDeclined  Status = "declined"
	StatusPending   Status = "pending"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ParseStatus accepts the dashboard filter values and their response aliases.
// Unknown values mean no filter.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "attending", "confirmed", "yes":
		return StatusAttending
	case "declined", "no":
		return StatusDeclined
	case "pending":
		return StatusPending
	default:
		return StatusAll
	}
}

// Classify puts every record in exactly one of attending, declined, pending.
func Classify(inv models.Invitation) Status {
	switch inv.ResponseValue() {
	case models.ResponseYes:
		return StatusAttending
	case models.ResponseNo:
		return StatusDeclined
	default:
		return StatusPending
	}
}

// ListQuery is the dashboard listing filter. Page is 1-based.
type ListQuery struct {
	Search string
	Status Status
	Page   int
	Limit  int
}

// Normalize clamps page and limit into range.
func (q ListQuery) Normalize() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Matches applies the search and status filter to a single record.
func (q ListQuery) Matches(inv models.Invitation) bool {
	if q.Status != StatusAll && Classify(inv) != q.Status {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	if needle == "" {
		return true
	}
	fields := []string{inv.InvitedPerson, inv.Email, inv.InvitedBy}
	fields = append(fields, inv.Names...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	Limit       int   `json:"limit"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

func Paginate(q ListQuery, total int64) Pagination {
	q = q.Normalize()
	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Pagination{
		CurrentPage: q.Page,
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       q.Limit,
		HasNext:     q.Page < pages,
		HasPrev:     q.Page > 1,
	}
}

// SortNewestFirst orders by CreatedAt descending, ties broken by ID descending.
func SortNewestFirst(items []models.Invitation) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}

// ApplyQuery filters, sorts and pages an in-memory slice.
func ApplyQuery(all []models.Invitation, q ListQuery) ([]models.Invitation, int64) {
	q = q.Normalize()
	matched := make([]models.Invitation, 0, len(all))
	for _, inv := range all {
		if q.Matches(inv) {
			matched = append(matched, inv)
		}
	}
	SortNewestFirst(matched)
	total := int64(len(matched))
	start := q.Offset()
	if start >= len(matched) {
		return []models.Invitation{}, total
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total
}

// TotalsOf computes the aggregate counters over a slice of records.
func TotalsOf(items []models.Invitation) Totals {
	var t Totals
	for _, inv := range items {
		t.TotalInvitations++
		if inv.PossibleInvitesInvited != nil {
			t.TotalPossibleInvites += int64(*inv.PossibleInvitesInvited)
		}
		if inv.InvitationValid {
			t.ValidInvitations++
		}
		if strings.TrimSpace(inv.Message) != "" {
			t.WithMessage++
		}
		switch Classify(inv) {
		case StatusAttending:
			t.Responded++
			t.ConfirmedGuests += int64(inv.GuestCount)
			t.UnusedSpots += int64(inv.Capacity() - inv.GuestCount)
		case StatusDeclined:
			t.Responded++
			t.Declined++
		}
	}
	return t
}

// NameMatches reports whether name equals, ignoring case, one of the
// attendee names or the invited person.
func NameMatches(inv models.Invitation, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(inv.InvitedPerson), name) {
		return true
	}
	for _, n := range inv.Names {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}
