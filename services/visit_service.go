package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"wedding-backend/models"
	"wedding-backend/store"
)

const (
	// DuplicateWindow is how far back a repeat beacon is suppressed. It is a
	// heuristic; two concurrent beacons can both be written.
	DuplicateWindow = 5 * time.Minute
	maxMetaLength   = 200
)

type VisitService struct {
	Store   store.Provider
	Log     zerolog.Logger
	Timeout time.Duration
	Salt    string
	Now     func() time.Time
}

func NewVisitService(p store.Provider, log zerolog.Logger, timeout time.Duration, salt string) *VisitService {
	return &VisitService{
		Store:   p,
		Log:     log.With().Str("component", "visit").Logger(),
		Timeout: timeout,
		Salt:    salt,
		Now:     time.Now,
	}
}

type VisitInput struct {
	InvitedBy          string `json:"invitedBy"`
	InvitedPerson      string `json:"invitedPerson"`
	PersonalizedGender string `json:"personalizedGender"`
	GuestLimit         int    `json:"guestLimit"`
	SessionID          string `json:"sessionId"`
}

// VisitMeta is taken from the request, never from the body.
type VisitMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

type VisitResult struct {
	Duplicate bool          `json:"duplicate"`
	Visit     *models.Visit `json:"visit,omitempty"`
}

// HashIP is the hex sha256 of salt+ip. Empty ip hashes to "".
func HashIP(salt, ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(salt + ip))
	return hex.EncodeToString(sum[:])
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// Track records a beacon unless the same inviter was seen from the same
// session or ip within DuplicateWindow.
func (s *VisitService) Track(ctx context.Context, in VisitInput, meta VisitMeta) (*VisitResult, error) {
	invitedBy := strings.ToLower(strings.TrimSpace(in.InvitedBy))
	if invitedBy == "" {
		return nil, invalid("invitedBy", "invitedBy is required")
	}

	now := s.Now().UTC()
	visit := &models.Visit{
		InvitedBy:          invitedBy,
		InvitedPerson:      strings.TrimSpace(in.InvitedPerson),
		PersonalizedGender: normalizeGender(in.PersonalizedGender),
		GuestLimit:         in.GuestLimit,
		SessionID:          strings.TrimSpace(in.SessionID),
		IPHash:             HashIP(s.Salt, meta.IP),
		UserAgent:          truncate(meta.UserAgent, maxMetaLength),
		Referrer:           truncate(meta.Referrer, maxMetaLength),
		VisitedAt:          now,
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	seen, err := st.Visits().FindRecent(ctx, store.VisitMatch{
		InvitedBy: visit.InvitedBy,
		SessionID: visit.SessionID,
		IPHash:    visit.IPHash,
		Since:     now.Add(-DuplicateWindow),
	})
	if err != nil {
		return nil, unavailable("find recent visit", err)
	}
	if seen {
		s.Log.Debug().Str("invitedBy", invitedBy).Msg("duplicate visit ignored")
		return &VisitResult{Duplicate: true}, nil
	}

	if err := st.Visits().Create(ctx, visit); err != nil {
		return nil, unavailable("create visit", err)
	}
	visit.IPHash = ""
	return &VisitResult{Visit: visit}, nil
}

// List returns every visit with the ip hash removed.
func (s *VisitService) List(ctx context.Context) ([]models.Visit, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	items, err := st.Visits().All(ctx)
	if err != nil {
		return nil, unavailable("list visits", err)
	}
	for i := range items {
		items[i].IPHash = ""
	}
	return items, nil
}
