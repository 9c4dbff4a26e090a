package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wedding-backend/models"
	"wedding-backend/store"
)

// TrackingStart is when visit tracking went live. RSVPs created earlier
// have no visit to convert from and are left out of the conversion rate.
var TrackingStart = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

const (
	timelineDays = 30
	recentCount  = 5
)

type DashboardService struct {
	Store        store.Provider
	Demo         store.Store
	Log          zerolog.Logger
	Timeout      time.Duration
	WeddingDate  time.Time
	DemoFallback bool
	Now          func() time.Time
}

func NewDashboardService(p store.Provider, log zerolog.Logger, timeout time.Duration, weddingDate time.Time, demoFallback bool) *DashboardService {
	return &DashboardService{
		Store:        p,
		Demo:         store.NewDemoStore(),
		Log:          log.With().Str("component", "dashboard").Logger(),
		Timeout:      timeout,
		WeddingDate:  weddingDate,
		DemoFallback: demoFallback,
		Now:          time.Now,
	}
}

// Metrics is the headline block of the dashboard. DietaryRestrictions counts
// every RSVP with a non-empty message, whatever the message says.
type Metrics struct {
	TotalInvitations     int64 `json:"totalInvitations"`
	ConfirmedGuests      int64 `json:"confirmedGuests"`
	Declined             int64 `json:"declined"`
	Pending              int64 `json:"pending"`
	Responded            int64 `json:"responded"`
	ResponseRate         int64 `json:"responseRate"`
	TotalPossibleInvites int64 `json:"totalPossibleInvites"`
	ValidInvitations     int64 `json:"validInvitations"`
	AvailableSpots       int64 `json:"availableSpots"`
	DaysUntilWedding     int64 `json:"daysUntilWedding"`
	DietaryRestrictions  int64 `json:"dietaryRestrictions"`
	TotalWellWishes      int64 `json:"totalWellWishes"`
	TotalVisits          int64 `json:"totalVisits"`
	UniqueVisitors       int64 `json:"uniqueVisitors"`
	VisitsToday          int64 `json:"visitsToday"`
	ConversionRate       int64 `json:"conversionRate"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type StatusCount struct {
	Status store.Status `json:"status"`
	Count  int64        `json:"count"`
}

type Charts struct {
	DailyRSVPs      []DailyCount         `json:"dailyRSVPs"`
	DailyVisits     []DailyCount         `json:"dailyVisits"`
	StatusBreakdown []StatusCount        `json:"statusBreakdown"`
	VisitsByInviter []store.InviterCount `json:"visitsByInviter"`
}

type Stats struct {
	Metrics          Metrics             `json:"metrics"`
	Charts           Charts              `json:"charts"`
	RecentRSVPs      []models.Invitation `json:"recentRSVPs"`
	RecentWellWishes []models.WellWish   `json:"recentWellWishes"`
	IsDemo           bool                `json:"isDemo"`
	GeneratedAt      time.Time           `json:"generatedAt"`
}

type RSVPPage struct {
	RSVPs      []models.Invitation `json:"rsvps"`
	Pagination store.Pagination    `json:"pagination"`
	IsDemo     bool                `json:"isDemo"`
}

// percent is round(part/whole*100), 0 when whole is 0.
func percent(part, whole int64) int64 {
	if whole <= 0 {
		return 0
	}
	return int64(math.Round(float64(part) / float64(whole) * 100))
}

// DaysUntil is the ceiling of the remaining days; negative after the date.
func DaysUntil(now, date time.Time) int64 {
	return int64(math.Ceil(date.Sub(now).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dailySeries buckets times into one entry per UTC day from since to today.
func dailySeries(times []time.Time, since time.Time, days int) []DailyCount {
	counts := make(map[string]int64, days)
	for _, t := range times {
		counts[t.UTC().Format("2006-01-02")]++
	}
	out := make([]DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, DailyCount{Date: day, Count: counts[day]})
	}
	return out
}

// Stats aggregates the dashboard. A live failure falls back to the demo
// dataset when enabled; demo forces it.
func (s *DashboardService) Stats(ctx context.Context, demo bool) (*Stats, error) {
	if demo {
		return s.computeStats(ctx, s.Demo, true)
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err == nil {
		var stats *Stats
		if stats, err = s.computeStats(ctx, st, false); err == nil {
			return stats, nil
		}
	}
	if !s.DemoFallback {
		return nil, unavailable("dashboard stats", err)
	}
	s.Log.Warn().Err(err).Msg("stats unavailable, serving demo data")
	return s.computeStats(context.Background(), s.Demo, true)
}

func (s *DashboardService) computeStats(ctx context.Context, st store.Store, isDemo bool) (*Stats, error) {
	now := s.Now().UTC()
	today := startOfDay(now)
	since := today.AddDate(0, 0, -(timelineDays - 1))

	totals, err := st.Invitations().Totals(ctx)
	if err != nil {
		return nil, err
	}
	wishCount, err := st.WellWishes().Count(ctx)
	if err != nil {
		return nil, err
	}
	visits, err := st.Visits().Summary(ctx, today, since)
	if err != nil {
		return nil, err
	}
	rsvpTimes, err := st.Invitations().CreatedTimes(ctx, since)
	if err != nil {
		return nil, err
	}
	tracked, err := st.Invitations().CountCreatedSince(ctx, TrackingStart)
	if err != nil {
		return nil, err
	}
	recent, err := st.Invitations().Recent(ctx, recentCount)
	if err != nil {
		return nil, err
	}
	recentWishes, err := st.WellWishes().Recent(ctx, recentCount)
	if err != nil {
		return nil, err
	}

	byInviter := visits.ByInviter
	if byInviter == nil {
		byInviter = []store.InviterCount{}
	}

	return &Stats{
		Metrics: Metrics{
			TotalInvitations:     totals.TotalInvitations,
			ConfirmedGuests:      totals.ConfirmedGuests,
			Declined:             totals.Declined,
			Pending:              totals.Pending(),
			Responded:            totals.Responded,
			ResponseRate:         percent(totals.Responded, totals.TotalInvitations),
			TotalPossibleInvites: totals.TotalPossibleInvites,
			ValidInvitations:     totals.ValidInvitations,
			AvailableSpots:       totals.UnusedSpots,
			DaysUntilWedding:     DaysUntil(now, s.WeddingDate),
			DietaryRestrictions:  totals.WithMessage,
			TotalWellWishes:      wishCount,
			TotalVisits:          visits.Total,
			UniqueVisitors:       visits.UniqueSessions,
			VisitsToday:          visits.Today,
			ConversionRate:       percent(tracked, visits.Total),
		},
		Charts: Charts{
			DailyRSVPs:  dailySeries(rsvpTimes, since, timelineDays),
			DailyVisits: dailySeries(visits.Times, since, timelineDays),
			StatusBreakdown: []StatusCount{
				{Status: store.StatusAttending, Count: totals.Responded - totals.Declined},
				{Status: store.StatusDeclined, Count: totals.Declined},
				{Status: store.StatusPending, Count: totals.Pending()},
			},
			VisitsByInviter: byInviter,
		},
		RecentRSVPs:      nonNil(recent),
		RecentWellWishes: nonNil(recentWishes),
		IsDemo:           isDemo,
		GeneratedAt:      now,
	}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// List pages the RSVP collection with the same fallback rules as Stats.
func (s *DashboardService) List(ctx context.Context, q store.ListQuery, demo bool) (*RSVPPage, error) {
	q = q.Normalize()
	if demo {
		return s.listFrom(ctx, s.Demo, q, true)
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err == nil {
		var page *RSVPPage
		if page, err = s.listFrom(ctx, st, q, false); err == nil {
			return page, nil
		}
	}
	if !s.DemoFallback {
		return nil, unavailable("dashboard list", err)
	}
	s.Log.Warn().Err(err).Msg("rsvp list unavailable, serving demo data")
	return s.listFrom(context.Background(), s.Demo, q, true)
}

func (s *DashboardService) listFrom(ctx context.Context, st store.Store, q store.ListQuery, isDemo bool) (*RSVPPage, error) {
	items, total, err := st.Invitations().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &RSVPPage{
		RSVPs:      nonNil(items),
		Pagination: store.Paginate(q, total),
		IsDemo:     isDemo,
	}, nil
}

// Delete removes one RSVP by id. store.ErrNotFound passes through.
func (s *DashboardService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("id", "id is required")
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err != nil {
		return unavailable("connect", err)
	}
	err = st.Invitations().Delete(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return err
	case err != nil:
		return unavailable("delete rsvp", err)
	}
	s.Log.Info().Str("id", id).Msg("rsvp deleted")
	return nil
}
