package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"wedding-backend/models"
)

// GormStore is the SQL backend (MySQL in production, SQLite locally).
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// AutoMigrate creates or updates the three tables.
func (s *GormStore) AutoMigrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(&models.Invitation{}, &models.WellWish{}, &models.Visit{})
}

func (s *GormStore) Invitations() InvitationRepository { return gormInvitations{s.DB} }
func (s *GormStore) WellWishes() WellWishRepository    { return gormWellWishes{s.DB} }
func (s *GormStore) Visits() VisitRepository           { return gormVisits{s.DB} }

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormInvitations struct{ db *gorm.DB }

func (r gormInvitations) Upsert(ctx context.Context, inv *models.Invitation, now time.Time) (bool, error) {
	created, err := r.upsert(ctx, inv, now)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent first submission won the insert; overwrite it
		created, err = r.upsert(ctx, inv, now)
	}
	return created, err
}

func (r gormInvitations) upsert(ctx context.Context, inv *models.Invitation, now time.Time) (bool, error) {
	db := r.db.WithContext(ctx)

	var existing models.Invitation
	err := db.Where("email = ?", inv.Email).First(&existing).Error
	switch {
	case err == nil:
		inv.ID = existing.ID
		inv.CreatedAt = existing.CreatedAt
		inv.UpdatedAt = &now
		// Select("*") so zero values (nil response, empty message) overwrite too.
		if err := db.Model(&existing).Select("*").Omit("id", "email", "created_at").Updates(inv).Error; err != nil {
			return false, fmt.Errorf("update invitation: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		inv.CreatedAt = now
		inv.UpdatedAt = nil
		if err := db.Create(inv).Error; err != nil {
			return false, fmt.Errorf("create invitation: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("find invitation: %w", err)
	}
}

// FindByName compares in Go: names is a JSON column, so its text carries
// escapes and SQL LOWER only folds ASCII.
func (r gormInvitations) FindByName(ctx context.Context, name string) (*models.Invitation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNotFound
	}
	candidates, err := r.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("find invitation by name: %w", err)
	}
	for i := range candidates {
		if NameMatches(candidates[i], name) {
			return &candidates[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r gormInvitations) All(ctx context.Context) ([]models.Invitation, error) {
	var items []models.Invitation
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return items, nil
}

func (r gormInvitations) List(ctx context.Context, q ListQuery) ([]models.Invitation, int64, error) {
	q = q.Normalize()
	scope := statusScope(q.Status)

	if q.Search != "" {
		// search spans the names JSON column, filtered in Go like FindByName
		var rows []models.Invitation
		if err := r.db.WithContext(ctx).Scopes(scope).Find(&rows).Error; err != nil {
			return nil, 0, fmt.Errorf("list invitations: %w", err)
		}
		items, total := ApplyQuery(rows, q)
		return items, total, nil
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Invitation{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count invitations: %w", err)
	}

	items := []models.Invitation{}
	err := r.db.WithContext(ctx).Model(&models.Invitation{}).Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	return items, total, nil
}

func statusScope(status Status) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case StatusAttending:
			db = db.Where("response = ?", models.ResponseYes)
		case StatusDeclined:
			db = db.Where("response = ?", models.ResponseNo)
		case StatusPending:
			db = db.Where("(response IS NULL OR response NOT IN ?)", []string{models.ResponseYes, models.ResponseNo})
		}
		return db
	}
}

func (r gormInvitations) Recent(ctx context.Context, n int) ([]models.Invitation, error) {
	var items []models.Invitation
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(n).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("recent invitations: %w", err)
	}
	return items, nil
}

func (r gormInvitations) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invitation{})
	if result.Error != nil {
		return fmt.Errorf("delete invitation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type totalsRow struct {
	Total         int64
	Confirmed     int64
	Declined      int64
	Responded     int64
	PossibleTotal int64
	Valid         int64
	Unused        int64
	WithMessage   int64
}

func (r gormInvitations) Totals(ctx context.Context) (Totals, error) {
	var row totalsRow
	err := r.db.WithContext(ctx).Model(&models.Invitation{}).Select(`
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN response = ? THEN guest_count ELSE 0 END), 0) AS confirmed,
		COALESCE(SUM(CASE WHEN response = ? THEN 1 ELSE 0 END), 0) AS declined,
		COALESCE(SUM(CASE WHEN response IN (?, ?) THEN 1 ELSE 0 END), 0) AS responded,
		COALESCE(SUM(COALESCE(possible_invites_invited, 0)), 0) AS possible_total,
		COALESCE(SUM(CASE WHEN invitation_valid = ? THEN 1 ELSE 0 END), 0) AS valid,
		COALESCE(SUM(CASE WHEN response = ? THEN COALESCE(possible_invites_invited, guest_count) - guest_count ELSE 0 END), 0) AS unused,
		COALESCE(SUM(CASE WHEN message IS NOT NULL AND TRIM(message) <> '' THEN 1 ELSE 0 END), 0) AS with_message`,
		models.ResponseYes,
		models.ResponseNo,
		models.ResponseYes, models.ResponseNo,
		true,
		models.ResponseYes,
	).Scan(&row).Error
	if err != nil {
		return Totals{}, fmt.Errorf("invitation totals: %w", err)
	}
	return Totals{
		TotalInvitations:     row.Total,
		ConfirmedGuests:      row.Confirmed,
		Declined:             row.Declined,
		Responded:            row.Responded,
		TotalPossibleInvites: row.PossibleTotal,
		ValidInvitations:     row.Valid,
		UnusedSpots:          row.Unused,
		WithMessage:          row.WithMessage,
	}, nil
}

func (r gormInvitations) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Invitation{}).Where("created_at >= ?", since).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count invitations since: %w", err)
	}
	return n, nil
}

func (r gormInvitations) CreatedTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.Invitation{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("invitation timeline: %w", err)
	}
	return times, nil
}

type gormWellWishes struct{ db *gorm.DB }

func (r gormWellWishes) Create(ctx context.Context, w *models.WellWish) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("create well wish: %w", err)
	}
	return nil
}

func (r gormWellWishes) All(ctx context.Context) ([]models.WellWish, error) {
	var items []models.WellWish
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list well wishes: %w", err)
	}
	return items, nil
}

func (r gormWellWishes) Recent(ctx context.Context, n int) ([]models.WellWish, error) {
	var items []models.WellWish
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(n).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("recent well wishes: %w", err)
	}
	return items, nil
}

func (r gormWellWishes) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.WellWish{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count well wishes: %w", err)
	}
	return n, nil
}

type gormVisits struct{ db *gorm.DB }

func (r gormVisits) Create(ctx context.Context, v *models.Visit) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	return nil
}

func (r gormVisits) FindRecent(ctx context.Context, m VisitMatch) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Visit{}).
		Where("invited_by = ? AND visited_at >= ?", m.InvitedBy, m.Since)

	switch {
	case m.SessionID != "" && m.IPHash != "":
		tx = tx.Where("(session_id = ? OR ip_hash = ?)", m.SessionID, m.IPHash)
	case m.SessionID != "":
		tx = tx.Where("session_id = ?", m.SessionID)
	case m.IPHash != "":
		tx = tx.Where("ip_hash = ?", m.IPHash)
	default:
		return false, nil
	}

	var n int64
	if err := tx.Limit(1).Count(&n).Error; err != nil {
		return false, fmt.Errorf("find recent visit: %w", err)
	}
	return n > 0, nil
}

func (r gormVisits) All(ctx context.Context) ([]models.Visit, error) {
	var items []models.Visit
	if err := r.db.WithContext(ctx).Order("visited_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return items, nil
}

func (r gormVisits) Summary(ctx context.Context, dayStart, timelineSince time.Time) (VisitSummary, error) {
	db := r.db.WithContext(ctx)
	var s VisitSummary

	if err := db.Model(&models.Visit{}).Count(&s.Total).Error; err != nil {
		return s, fmt.Errorf("count visits: %w", err)
	}
	if err := db.Model(&models.Visit{}).Where("session_id <> ?", "").Distinct("session_id").Count(&s.UniqueSessions).Error; err != nil {
		return s, fmt.Errorf("count sessions: %w", err)
	}
	if err := db.Model(&models.Visit{}).Where("visited_at >= ?", dayStart).Count(&s.Today).Error; err != nil {
		return s, fmt.Errorf("count visits today: %w", err)
	}
	if err := db.Model(&models.Visit{}).Where("visited_at >= ?", timelineSince).Pluck("visited_at", &s.Times).Error; err != nil {
		return s, fmt.Errorf("visit timeline: %w", err)
	}
	err := db.Model(&models.Visit{}).
		Select("invited_by, COUNT(*) AS count").
		Group("invited_by").
		Scan(&s.ByInviter).Error
	if err != nil {
		return s, fmt.Errorf("visits by inviter: %w", err)
	}
	SortInviterCounts(s.ByInviter)
	return s, nil
}
