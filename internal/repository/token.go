package repository

import (
	"context"
	"errors"

	"pantry/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository stores one API token digest per user.
type TokenRepository interface {
	// Replace stores digest as the user's only token and returns the digest it replaced, if any.
	Replace(ctx context.Context, userID uint, digest string) (previous string, err error)
	// GetUserID resolves a digest; NotFound when unknown.
	GetUserID(ctx context.Context, digest string) (uint, error)
	// DigestForUser returns the user's current digest ("" when none) without changing it.
	DigestForUser(ctx context.Context, userID uint) (string, error)
	// DeleteForUser removes the user's token and returns its digest ("" when none).
	DeleteForUser(ctx context.Context, userID uint) (string, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository returns a new TokenRepository implementation.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Replace upserts on user_id so concurrent logins for one user never trip the
// unique index; the later write wins.
func (r *tokenRepository) Replace(ctx context.Context, userID uint, digest string) (string, error) {
	var previous []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AuthToken{}).Where("user_id = ?", userID).Pluck("digest", &previous).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"digest", "created_at"}),
		}).Create(&models.AuthToken{Digest: digest, UserID: userID}).Error
	})
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if len(previous) == 0 {
		return "", nil
	}
	return previous[0], nil
}

func (r *tokenRepository) DigestForUser(ctx context.Context, userID uint) (string, error) {
	var digests []string
	if err := r.db.WithContext(ctx).Model(&models.AuthToken{}).Where("user_id = ?", userID).Limit(1).Pluck("digest", &digests).Error; err != nil {
		return "", models.NewInternalError(err)
	}
	if len(digests) == 0 {
		return "", nil
	}
	return digests[0], nil
}

func (r *tokenRepository) GetUserID(ctx context.Context, digest string) (uint, error) {
	var token models.AuthToken
	if err := r.db.WithContext(ctx).Where("digest = ?", digest).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Token", "(redacted)")
		}
		return 0, models.NewInternalError(err)
	}
	return token.UserID, nil
}

func (r *tokenRepository) DeleteForUser(ctx context.Context, userID uint) (string, error) {
	var digests []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AuthToken{}).Where("user_id = ?", userID).Pluck("digest", &digests).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error
	})
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if len(digests) == 0 {
		return "", nil
	}
	return digests[0], nil
}
