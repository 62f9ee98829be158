package service

import (
	"context"
	"strings"
	"testing"

	"pantry/internal/cache"
	"pantry/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "token@example.com")

	token, issuedFor, err := f.tokens.IssueToken(ctx, "Token@Example.com", "testpass123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, issuedFor.ID)
	assert.Len(t, token, TokenLength)
	assert.True(t, wellFormedToken(token))

	resolved, err := f.tokens.ResolveCurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	var stored []string
	require.NoError(t, f.db.Model(&models.AuthToken{}).Pluck("digest", &stored).Error)
	assert.Equal(t, []string{digestToken(token)}, stored, "only the digest is persisted")
}

func TestTokenService_IssueRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.register(t, "bad@example.com")

	_, _, err := f.tokens.IssueToken(context.Background(), "bad@example.com", "badpass")
	assertCode(t, err, models.CodeAuthFailed)

	var count int64
	require.NoError(t, f.db.Model(&models.AuthToken{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTokenService_ReissueInvalidatesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "again@example.com")

	first, _, err := f.tokens.IssueToken(ctx, "again@example.com", "testpass123")
	require.NoError(t, err)
	second, _, err := f.tokens.IssueToken(ctx, "again@example.com", "testpass123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = f.tokens.ResolveCurrentUser(ctx, first)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	_, err = f.tokens.ResolveCurrentUser(ctx, second)
	assert.NoError(t, err)
}

func TestTokenService_ResolveErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "inactive@example.com")
	token, _, err := f.tokens.IssueToken(ctx, "inactive@example.com", "testpass123")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrTokenMalformed},
		{"too short", "abc", ErrTokenMalformed},
		{"upper hex", strings.ToUpper(token), ErrTokenMalformed},
		{"unknown", strings.Repeat("a", TokenLength), ErrTokenNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tokens.ResolveCurrentUser(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	user.IsActive = false
	require.NoError(t, f.users.userRepo.Update(ctx, user))
	_, err = f.tokens.ResolveCurrentUser(ctx, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenService_RevokeWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "cached@example.com")

	token, user, err := f.tokens.IssueToken(ctx, "cached@example.com", "testpass123")
	require.NoError(t, err)

	_, err = f.tokens.ResolveCurrentUser(ctx, token)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.TokenKey(digestToken(token))), "lookup is cached")

	require.NoError(t, f.tokens.Revoke(ctx, user.ID))
	assert.False(t, mr.Exists(cache.TokenKey(digestToken(token))), "revoke drops the cache entry")

	_, err = f.tokens.ResolveCurrentUser(ctx, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
