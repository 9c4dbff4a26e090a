package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWellWishService_Submit(t *testing.T) {
	ctx := context.Background()
	p, mem := memProvider()
	svc := NewWellWishService(p, zerolog.Nop(), 0)
	svc.Now = fixedNow

	wish, err := svc.Submit(ctx, WellWishInput{Name: " Rosa ", Email: " rosa@example.com ", Message: " ¡Felicidades! "})
	require.NoError(t, err)
	assert.Equal(t, "Rosa", wish.Name)
	assert.Equal(t, "rosa@example.com", wish.Email)
	assert.Equal(t, "¡Felicidades!", wish.Message)
	assert.Equal(t, testNow, wish.CreatedAt)
	assert.Equal(t, testNow, wish.Timestamp)
	assert.NotEmpty(t, wish.ID)

	n, err := mem.WellWishes().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWellWishService_Validation(t *testing.T) {
	svc := NewWellWishService(downProvider{}, zerolog.Nop(), 0)

	_, err := svc.Submit(context.Background(), WellWishInput{Message: "hi"})
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "name", ve.Field)

	_, err = svc.Submit(context.Background(), WellWishInput{Name: "Rosa", Message: "  "})
	ve, ok = IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "message", ve.Field)
}

func TestWellWishService_NoFallback(t *testing.T) {
	svc := NewWellWishService(downProvider{}, zerolog.Nop(), 0)
	wish, err := svc.Submit(context.Background(), WellWishInput{Name: "Rosa", Message: "hi"})
	assert.Nil(t, wish)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWellWishService_ClientTimestamp(t *testing.T) {
	p, _ := memProvider()
	svc := NewWellWishService(p, zerolog.Nop(), 0)
	svc.Now = fixedNow

	sent := time.Date(2026, time.March, 9, 21, 30, 0, 0, time.FixedZone("CET", 3600))
	wish, err := svc.Submit(context.Background(), WellWishInput{Name: "Rosa", Message: "hi", Timestamp: &sent})
	require.NoError(t, err)
	assert.Equal(t, sent.UTC(), wish.Timestamp)
	assert.Equal(t, testNow, wish.CreatedAt)
}

func TestWellWishService_TimeoutIsUnavailable(t *testing.T) {
	svc := NewWellWishService(stalledProvider{}, zerolog.Nop(), 50*time.Millisecond)

	started := time.Now()
	_, err := svc.Submit(context.Background(), WellWishInput{Name: "Rosa", Message: "hi"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(started), time.Second)
}
