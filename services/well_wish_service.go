package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wedding-backend/models"
	"wedding-backend/store"
)

type WellWishService struct {
	Store   store.Provider
	Log     zerolog.Logger
	Timeout time.Duration
	Now     func() time.Time
}

func NewWellWishService(p store.Provider, log zerolog.Logger, timeout time.Duration) *WellWishService {
	return &WellWishService{
		Store:   p,
		Log:     log.With().Str("component", "well_wish").Logger(),
		Timeout: timeout,
		Now:     time.Now,
	}
}

type WellWishInput struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp"`
}

// Submit always appends; there is no fallback success.
func (s *WellWishService) Submit(ctx context.Context, in WellWishInput) (*models.WellWish, error) {
	name := strings.TrimSpace(in.Name)
	message := strings.TrimSpace(in.Message)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	if message == "" {
		return nil, invalid("message", "message is required")
	}

	now := s.Now().UTC()
	wish := &models.WellWish{
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		Message:   message,
		Timestamp: now,
		CreatedAt: now,
	}
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		wish.Timestamp = in.Timestamp.UTC()
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	if err := st.WellWishes().Create(ctx, wish); err != nil {
		return nil, unavailable("create well wish", err)
	}
	s.Log.Info().Str("id", wish.ID).Str("name", wish.Name).Msg("well wish saved")
	return wish, nil
}

func (s *WellWishService) List(ctx context.Context) ([]models.WellWish, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	st, err := s.Store.Get(ctx)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	items, err := st.WellWishes().All(ctx)
	if err != nil {
		return nil, unavailable("list well wishes", err)
	}
	return items, nil
}
