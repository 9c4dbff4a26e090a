package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wedding-backend/models"
	"wedding-backend/store"
)

type ExportKind string

type ExportFormat string

const (
	ExportRSVPs      ExportKind = "rsvps"
	ExportWellWishes ExportKind = "wellwishes"

	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

func ParseExportKind(raw string) (ExportKind, error) {
	switch ExportKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportRSVPs, "":
		return ExportRSVPs, nil
	case ExportWellWishes, "well-wishes":
		return ExportWellWishes, nil
	}
	return "", invalid("type", "type must be rsvps or wellwishes")
}

func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", invalid("format", "format must be csv or json")
}

func (f ExportFormat) ContentType() string {
	if f == FormatJSON {
		return "application/json; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Filename is e.g. rsvps-2026-05-01.csv.
func Filename(kind ExportKind, format ExportFormat, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", kind, now.UTC().Format("2006-01-02"), format)
}

type ExportService struct {
	Store   store.Provider
	Log     zerolog.Logger
	Timeout time.Duration
}

func NewExportService(p store.Provider, log zerolog.Logger, timeout time.Duration) *ExportService {
	return &ExportService{
		Store:   p,
		Log:     log.With().Str("component", "export").Logger(),
		Timeout: timeout,
	}
}

// Export loads the whole collection first so a storage failure never
// leaves a half-written file behind.
func (s *ExportService) Export(ctx context.Context, w io.Writer, kind ExportKind, format ExportFormat) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err != nil {
		return unavailable("connect", err)
	}

	switch kind {
	case ExportWellWishes:
		items, err := st.WellWishes().All(ctx)
		if err != nil {
			return unavailable("export well wishes", err)
		}
		s.Log.Info().Int("rows", len(items)).Str("format", string(format)).Msg("exporting well wishes")
		if format == FormatJSON {
			return writeJSON(w, nonNil(items))
		}
		return WriteWellWishesCSV(w, items)
	default:
		items, err := st.Invitations().All(ctx)
		if err != nil {
			return unavailable("export rsvps", err)
		}
		s.Log.Info().Int("rows", len(items)).Str("format", string(format)).Msg("exporting rsvps")
		if format == FormatJSON {
			return writeJSON(w, nonNil(items))
		}
		return WriteRSVPsCSV(w, items)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func WriteRSVPsCSV(w io.Writer, items []models.Invitation) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "email", "names", "response", "guestCount", "message", "invitedBy",
		"invitationValid", "invitedPerson", "personalizedGender",
		"possibleInvitesInvited", "createdAt", "updatedAt",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, inv := range items {
		possible := ""
		if inv.PossibleInvitesInvited != nil {
			possible = strconv.Itoa(*inv.PossibleInvitesInvited)
		}
		created := inv.CreatedAt
		row := []string{
			inv.ID,
			inv.Email,
			strings.Join(inv.Names, "; "),
			inv.ResponseValue(),
			strconv.Itoa(inv.GuestCount),
			inv.Message,
			inv.InvitedBy,
			strconv.FormatBool(inv.InvitationValid),
			inv.InvitedPerson,
			inv.PersonalizedGender,
			possible,
			formatTime(&created),
			formatTime(inv.UpdatedAt),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteWellWishesCSV(w io.Writer, items []models.WellWish) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "email", "message", "createdAt"}); err != nil {
		return err
	}
	for _, wish := range items {
		created := wish.CreatedAt
		if err := cw.Write([]string{wish.ID, wish.Name, wish.Email, wish.Message, formatTime(&created)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
