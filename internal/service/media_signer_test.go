package service

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaSigner_RoundTrip(t *testing.T) {
	t.Parallel()
	signer := NewMediaSigner("test-secret-test-secret-test-secret", time.Hour)

	u := signer.URL("uploads/recipes/a.jpg")
	require.NotNil(t, u)
	assert.True(t, strings.HasPrefix(*u, "/media/uploads/recipes/a.jpg?sig="))

	parsed, err := url.Parse(*u)
	require.NoError(t, err)
	assert.NoError(t, signer.Verify("uploads/recipes/a.jpg", parsed.Query().Get("sig")))

	assert.Nil(t, signer.URL(""))
}

func TestMediaSigner_Rejects(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := NewMediaSigner("secret-one-secret-one-secret-one", time.Minute)
	signer.now = func() time.Time { return now }

	sig, err := signer.Sign("uploads/recipes/a.jpg")
	require.NoError(t, err)

	t.Run("other path", func(t *testing.T) {
		assert.ErrorIs(t, signer.Verify("uploads/recipes/b.jpg", sig), ErrBadSignature)
	})
	t.Run("tampered", func(t *testing.T) {
		assert.ErrorIs(t, signer.Verify("uploads/recipes/a.jpg", sig+"x"), ErrBadSignature)
	})
	t.Run("other secret", func(t *testing.T) {
		other := NewMediaSigner("secret-two-secret-two-secret-two", time.Minute)
		other.now = signer.now
		assert.ErrorIs(t, other.Verify("uploads/recipes/a.jpg", sig), ErrBadSignature)
	})
	t.Run("expired", func(t *testing.T) {
		later := NewMediaSigner("secret-one-secret-one-secret-one", time.Minute)
		later.now = func() time.Time { return now.Add(2 * time.Minute) }
		assert.ErrorIs(t, later.Verify("uploads/recipes/a.jpg", sig), ErrBadSignature)
	})
}
