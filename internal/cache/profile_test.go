package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/mposter-be/internal/models"
)

func newTestCache(t *testing.T) (*ProfileCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewProfileCache(context.Background(), mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestProfileCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	party := int64(4)
	want := models.Profile{ID: "u1", Name: "Ann", Email: "ann@x.com", Mobile: "9876543210", Role: "user", PartyRef: &party}
	require.NoError(t, c.Put(ctx, want))

	got, ok, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, c.Invalidate(ctx, "u1"))
	_, ok, err = c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileCacheExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	stored, err := c.Fill(ctx, models.Profile{ID: "u2"})
	require.NoError(t, err)
	require.True(t, stored)
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFillKeepsNewerProfile(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, models.Profile{ID: "u3", Name: "Annie"}))
	stored, err := c.Fill(ctx, models.Profile{ID: "u3", Name: "Ann"})
	require.NoError(t, err)
	assert.False(t, stored)

	got, ok, err := c.Get(ctx, "u3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Annie", got.Name)

	require.NoError(t, c.Put(ctx, models.Profile{ID: "u3", Name: "Anne"}))
	got, _, err = c.Get(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, "Anne", got.Name)
}

func TestNewProfileCacheFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewProfileCache(context.Background(), addr, time.Minute)
	assert.Error(t, err)
}
