package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"

	"pantry/internal/cache"
	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/repository"
)

// TokenLength is the length of an API token in hex characters.
const TokenLength = 40

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenNotFound  = errors.New("token not found")
)

// TokenService issues and resolves opaque API tokens. Only SHA-256 digests are stored.
type TokenService struct {
	users     *UserService
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
}

func NewTokenService(users *UserService, userRepo repository.UserRepository, tokenRepo repository.TokenRepository) *TokenService {
	return &TokenService{users: users, userRepo: userRepo, tokenRepo: tokenRepo}
}

// IssueToken authenticates the credentials and returns a fresh token that replaces the previous one.
func (s *TokenService) IssueToken(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := newToken()
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	previous, err := s.tokenRepo.Replace(ctx, user.ID, digestToken(token))
	if err != nil {
		return "", nil, err
	}
	if previous != "" {
		cache.InvalidateToken(ctx, previous)
	}
	middleware.Logger.InfoContext(ctx, "token issued", slog.Uint64("user_id", uint64(user.ID)))
	return token, user, nil
}

// ResolveCurrentUser maps a presented token to its active user.
func (s *TokenService) ResolveCurrentUser(ctx context.Context, token string) (*models.User, error) {
	if !wellFormedToken(token) {
		return nil, ErrTokenMalformed
	}
	digest := digestToken(token)

	userID, err := cache.Aside(ctx, cache.TokenKey(digest), cache.TokenTTL, func(ctx context.Context) (uint, error) {
		return s.tokenRepo.GetUserID(ctx, digest)
	})
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			cache.InvalidateToken(ctx, digest)
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrTokenNotFound
	}
	return user, nil
}

// Revoke deletes the user's current token, if any.
func (s *TokenService) Revoke(ctx context.Context, userID uint) error {
	return revokeToken(ctx, s.tokenRepo, userID)
}

func revokeToken(ctx context.Context, repo repository.TokenRepository, userID uint) error {
	digest, err := repo.DeleteForUser(ctx, userID)
	if err != nil {
		return err
	}
	if digest != "" {
		cache.InvalidateToken(ctx, digest)
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, TokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func digestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func wellFormedToken(token string) bool {
	if len(token) != TokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
