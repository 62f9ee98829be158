package service

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadSignature is returned for media signatures that are invalid, expired or for another path.
var ErrBadSignature = errors.New("invalid media signature")

const mediaURLPrefix = "/media/"

type mediaClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// MediaSigner produces and verifies expiring signed URLs for stored images.
type MediaSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewMediaSigner(secret string, ttl time.Duration) *MediaSigner {
	return &MediaSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// URL returns /media/<key>?sig=<token>, or nil when key is empty.
func (m *MediaSigner) URL(key string) *string {
	if key == "" {
		return nil
	}
	sig, err := m.Sign(key)
	if err != nil {
		return nil
	}
	u := mediaURLPrefix + key + "?sig=" + url.QueryEscape(sig)
	return &u
}

// Sign returns an HS256 token binding key to an expiry.
func (m *MediaSigner) Sign(key string) (string, error) {
	now := m.now()
	claims := mediaClaims{
		Path: key,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "media",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks that sig is a valid, unexpired signature for key.
func (m *MediaSigner) Verify(key, sig string) error {
	claims := &mediaClaims{}
	token, err := jwt.ParseWithClaims(sig, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithSubject("media"))
	if err != nil || !token.Valid {
		return ErrBadSignature
	}
	if claims.Path != key {
		return ErrBadSignature
	}
	return nil
}
