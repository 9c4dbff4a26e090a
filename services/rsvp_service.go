package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wedding-backend/models"
	"wedding-backend/store"
)

type RSVPService struct {
	Store   store.Provider
	Log     zerolog.Logger
	Timeout time.Duration
	Now     func() time.Time
}

func NewRSVPService(p store.Provider, log zerolog.Logger, timeout time.Duration) *RSVPService {
	return &RSVPService{
		Store:   p,
		Log:     log.With().Str("component", "rsvp").Logger(),
		Timeout: timeout,
		Now:     time.Now,
	}
}

// PersonalizedInvite is the greeting target carried over from the landing page.
type PersonalizedInvite struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

type RSVPInput struct {
	Email                  string              `json:"email"`
	Names                  []string            `json:"names"`
	Response               string              `json:"response"`
	Message                string              `json:"message"`
	GuestCount             int                 `json:"guestCount"`
	InvitedBy              string              `json:"invitedBy"`
	InvitationValid        bool                `json:"invitationValid"`
	PersonalizedInvite     *PersonalizedInvite `json:"personalizedInvite"`
	InvitedPerson          string              `json:"invitedPerson"`
	PersonalizedGender     string              `json:"personalizedGender"`
	PossibleInvitesInvited *int                `json:"possibleInvitesInvited"`
	Timestamp              *time.Time          `json:"timestamp"`
}

type RSVPResult struct {
	Created    bool               `json:"created"`
	Invitation *models.Invitation `json:"rsvp"`
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeResponse maps accepted spellings onto yes/no.
func normalizeResponse(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "si", "sí", "attending":
		return models.ResponseYes, true
	case "no", "declined":
		return models.ResponseNo, true
	}
	return "", false
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func normalizeGender(g string) string {
	g = strings.ToLower(strings.TrimSpace(g))
	if g == "a" || g == "o" {
		return g
	}
	return ""
}

// Build validates the input and produces the record to store.
func (s *RSVPService) Build(in RSVPInput) (*models.Invitation, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, invalid("email", "email is required")
	}
	if len(in.Names) == 0 {
		return nil, invalid("names", "at least one name is required")
	}
	names := cleanNames(in.Names)
	if len(names) == 0 {
		return nil, invalid("names", "names cannot be blank")
	}
	if strings.TrimSpace(in.Response) == "" {
		return nil, invalid("response", "response is required")
	}
	response, ok := normalizeResponse(in.Response)
	if !ok {
		return nil, invalid("response", "response must be yes or no")
	}

	guestCount := in.GuestCount
	if guestCount <= 0 {
		guestCount = len(names)
	}

	now := s.Now().UTC()
	inv := &models.Invitation{
		Email:                  email,
		Names:                  names,
		Response:               &response,
		Message:                strings.TrimSpace(in.Message),
		GuestCount:             guestCount,
		InvitedBy:              strings.ToLower(strings.TrimSpace(in.InvitedBy)),
		InvitationValid:        in.InvitationValid,
		InvitedPerson:          strings.TrimSpace(in.InvitedPerson),
		PersonalizedGender:     normalizeGender(in.PersonalizedGender),
		PossibleInvitesInvited: in.PossibleInvitesInvited,
		Timestamp:              now,
	}
	if p := in.PersonalizedInvite; p != nil {
		if name := strings.TrimSpace(p.Name); name != "" {
			inv.InvitedPerson = name
		}
		if g := normalizeGender(p.Gender); g != "" {
			inv.PersonalizedGender = g
		}
	}
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		inv.Timestamp = in.Timestamp.UTC()
	}
	return inv, nil
}

// Submit validates and upserts by email. Storage problems come back wrapped
// in ErrUnavailable together with the record that would have been written.
func (s *RSVPService) Submit(ctx context.Context, in RSVPInput) (*RSVPResult, error) {
	inv, err := s.Build(in)
	if err != nil {
		return nil, err
	}
	result := &RSVPResult{Invitation: inv}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err != nil {
		return result, unavailable("connect", err)
	}
	created, err := st.Invitations().Upsert(ctx, inv, s.Now().UTC())
	if err != nil {
		return result, unavailable("upsert rsvp", err)
	}
	result.Created = created

	s.Log.Info().
		Str("email", inv.Email).
		Str("response", *inv.Response).
		Int("guests", inv.GuestCount).
		Bool("created", created).
		Msg("rsvp saved")
	return result, nil
}

type CheckResult struct {
	Exists bool   `json:"exists"`
	Email  string `json:"email,omitempty"`
}

// Check reports whether name already answered.
func (s *RSVPService) Check(ctx context.Context, name string) (*CheckResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	inv, err := st.Invitations().FindByName(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &CheckResult{Exists: false}, nil
	case err != nil:
		return nil, unavailable("check name", err)
	}
	return &CheckResult{Exists: true, Email: inv.Email}, nil
}

func (s *RSVPService) List(ctx context.Context) ([]models.Invitation, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	items, err := st.Invitations().All(ctx)
	if err != nil {
		return nil, unavailable("list rsvps", err)
	}
	return items, nil
}
