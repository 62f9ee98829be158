package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_LoadsOnceThenServesFromCache(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (uint, error) {
		calls++
		return 7, nil
	}

	v, err := Aside(ctx, TokenKey("abc"), TokenTTL, load)
	require.NoError(t, err)
	assert.Equal(t, uint(7), v)

	v, err = Aside(ctx, TokenKey("abc"), TokenTTL, load)
	require.NoError(t, err)
	assert.Equal(t, uint(7), v)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("auth:token:abc"))

	InvalidateToken(ctx, "abc")
	assert.False(t, mr.Exists("auth:token:abc"))
}

func TestAside_DoesNotCacheErrors(t *testing.T) {
	mr := useMiniredis(t)
	boom := errors.New("boom")

	_, err := Aside(context.Background(), UserKey(1), UserTTL, func(context.Context) (uint, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:1"))
}

func TestAside_WithoutClient(t *testing.T) {
	SetClient(nil)
	v, err := Aside(context.Background(), UserKey(2), UserTTL, func(context.Context) (string, error) {
		return "loaded", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)
}
