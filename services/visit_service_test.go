package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitService_DuplicateWithinWindow(t *testing.T) {
	ctx := context.Background()
	p, mem := memProvider()
	svc := NewVisitService(p, zerolog.Nop(), 0, "salt")
	now := testNow
	svc.Now = func() time.Time { return now }

	first, err := svc.Track(ctx, VisitInput{InvitedBy: "maria", SessionID: "s1"}, VisitMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	assert.Empty(t, first.Visit.IPHash)

	second, err := svc.Track(ctx, VisitInput{InvitedBy: "maria", SessionID: "s1"}, VisitMeta{IP: "10.0.0.2"})
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	all, err := mem.Visits().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// same ip, new session, still inside the window
	now = now.Add(4 * time.Minute)
	third, err := svc.Track(ctx, VisitInput{InvitedBy: "maria", SessionID: "s9"}, VisitMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.True(t, third.Duplicate)

	// outside the window the beacon is written again
	now = now.Add(2 * time.Minute)
	fourth, err := svc.Track(ctx, VisitInput{InvitedBy: "maria", SessionID: "s1"}, VisitMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.False(t, fourth.Duplicate)

	// another inviter is never a duplicate
	fifth, err := svc.Track(ctx, VisitInput{InvitedBy: "daniel", SessionID: "s1"}, VisitMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.False(t, fifth.Duplicate)
}

func TestVisitService_StoresHashAndTruncates(t *testing.T) {
	ctx := context.Background()
	p, mem := memProvider()
	svc := NewVisitService(p, zerolog.Nop(), 0, "salt")
	svc.Now = fixedNow

	long := strings.Repeat("ñ", 250)
	_, err := svc.Track(ctx, VisitInput{InvitedBy: " Maria ", SessionID: "s1", GuestLimit: 3}, VisitMeta{
		IP:        "192.168.1.7",
		UserAgent: long,
		Referrer:  long,
	})
	require.NoError(t, err)

	all, err := mem.Visits().All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	v := all[0]
	assert.Equal(t, "maria", v.InvitedBy)
	assert.Equal(t, HashIP("salt", "192.168.1.7"), v.IPHash)
	assert.Len(t, v.IPHash, 64)
	assert.NotContains(t, v.IPHash, "192.168")
	assert.Equal(t, 200, len([]rune(v.UserAgent)))
	assert.Equal(t, 200, len([]rune(v.Referrer)))
	assert.Equal(t, testNow, v.VisitedAt)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].IPHash)
}

func TestHashIP(t *testing.T) {
	assert.Equal(t, HashIP("a", "1.1.1.1"), HashIP("a", "1.1.1.1"))
	assert.NotEqual(t, HashIP("a", "1.1.1.1"), HashIP("b", "1.1.1.1"))
	assert.Empty(t, HashIP("a", ""))
}

func TestVisitService_Errors(t *testing.T) {
	svc := NewVisitService(downProvider{}, zerolog.Nop(), 0, "salt")

	_, err := svc.Track(context.Background(), VisitInput{SessionID: "s1"}, VisitMeta{})
	_, ok := IsValidation(err)
	assert.True(t, ok)

	_, err = svc.Track(context.Background(), VisitInput{InvitedBy: "maria"}, VisitMeta{})
	assert.ErrorIs(t, err, ErrUnavailable)
}
