// Package store holds the persistence contract shared by the live (gorm,
// mongo) backends and the in-memory/demo backend.
package store

import (
	"context"
	"errors"
	"time"

	"wedding-backend/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNotSupported = errors.New("unsupported database url")
)

// Store vends the three collections and a health check.
type Store interface {
	Invitations() InvitationRepository
	WellWishes() WellWishRepository
	Visits() VisitRepository
	Ping(ctx context.Context) error
	Close() error
}

type InvitationRepository interface {
	// Upsert matches on email. Existing records get every mutable field
	// replaced and UpdatedAt set to now; new records get CreatedAt = now.
	// Returns true when a new record was inserted.
	Upsert(ctx context.Context, inv *models.Invitation, now time.Time) (bool, error)
	// FindByName does a case-insensitive exact match against attendee
	// names and the invited person.
	FindByName(ctx context.Context, name string) (*models.Invitation, error)
	All(ctx context.Context) ([]models.Invitation, error)
	List(ctx context.Context, q ListQuery) ([]models.Invitation, int64, error)
	Recent(ctx context.Context, n int) ([]models.Invitation, error)
	Delete(ctx context.Context, id string) error
	Totals(ctx context.Context) (Totals, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CreatedTimes(ctx context.Context, since time.Time) ([]time.Time, error)
}

type WellWishRepository interface {
	Create(ctx context.Context, w *models.WellWish) error
	All(ctx context.Context) ([]models.WellWish, error)
	Recent(ctx context.Context, n int) ([]models.WellWish, error)
	Count(ctx context.Context) (int64, error)
}

type VisitRepository interface {
	Create(ctx context.Context, v *models.Visit) error
	// FindRecent reports whether a visit for m.InvitedBy exists at or after
	// m.Since with the same session id or the same ip hash.
	FindRecent(ctx context.Context, m VisitMatch) (bool, error)
	All(ctx context.Context) ([]models.Visit, error)
	Summary(ctx context.Context, dayStart, timelineSince time.Time) (VisitSummary, error)
}

// Totals are the aggregate counters over the invitation collection.
type Totals struct {
	TotalInvitations     int64 `json:"totalInvitations"`
	ConfirmedGuests      int64 `json:"confirmedGuests"`
	Declined             int64 `json:"declined"`
	Responded            int64 `json:"responded"`
	TotalPossibleInvites int64 `json:"totalPossibleInvites"`
	ValidInvitations     int64 `json:"validInvitations"`
	UnusedSpots          int64 `json:"availableSpots"`
	WithMessage          int64 `json:"withMessage"`
}

// Pending is derived so that Pending + Responded == TotalInvitations.
func (t Totals) Pending() int64 {
	return t.TotalInvitations - t.Responded
}

type VisitMatch struct {
	InvitedBy string
	SessionID string
	IPHash    string
	Since     time.Time
}

type VisitSummary struct {
	Total          int64
	UniqueSessions int64
	Today          int64
	// visit timestamps since timelineSince, bucketed by the caller
	Times     []time.Time
	ByInviter []InviterCount
}

type InviterCount struct {
	InvitedBy string `json:"invitedBy" bson:"_id"`
	Count     int64  `json:"count" bson:"count"`
}
