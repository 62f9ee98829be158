// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"log/slog"
	"strings"

	"pantry/internal/cache"
	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/storage"
	"pantry/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt cost used for new hashes.
var passwordCost = bcrypt.DefaultCost

type UserService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	store     storage.Storage
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// UpdateProfileInput carries a partial profile update. Nil fields are left unchanged.
type UpdateProfileInput struct {
	TargetID uint
	Email    *string
	Password *string
	Name     *string
}

func NewUserService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, store storage.Storage) *UserService {
	return &UserService{userRepo: userRepo, tokenRepo: tokenRepo, store: store}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewFieldValidationError("email", err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewWeakCredentialError(err.Error())
	}
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateOptionalLength(name, validation.MaxNameLength); err != nil {
		return nil, models.NewFieldValidationError("name", err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewFieldValidationError("email", "user with this email already exists.")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Email: email, Password: hash, Name: name}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// CreateSuperuser registers a staff superuser. Used by bootstrap paths only.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.Register(ctx, RegisterInput{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	user.IsStaff = true
	user.IsSuperuser = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the active user owning email and password.
// Every failure is the same AuthError.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		middleware.AuthFailures.WithLabelValues("unknown_email").Inc()
		return nil, models.NewAuthError()
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		middleware.AuthFailures.WithLabelValues("bad_password").Inc()
		return nil, models.NewAuthError()
	}
	if !user.IsActive {
		middleware.AuthFailures.WithLabelValues("inactive").Inc()
		return nil, models.NewAuthError()
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, callerID uint, in UpdateProfileInput) (*models.User, error) {
	if in.TargetID != callerID {
		return nil, models.NewNotFoundError("User", in.TargetID)
	}
	user, err := s.userRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := validation.NormalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewFieldValidationError("email", err.Error())
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewFieldValidationError("email", "user with this email already exists.")
			}
			user.Email = email
		}
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateOptionalLength(name, validation.MaxNameLength); err != nil {
			return nil, models.NewFieldValidationError("name", err.Error())
		}
		user.Name = name
	}
	passwordChanged := false
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewWeakCredentialError(err.Error())
		}
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = hash
		passwordChanged = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if passwordChanged {
		if err := revokeToken(ctx, s.tokenRepo, user.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// DeleteAccount removes the user with everything they own, then their recipe image files.
// The token row goes with the user; only its cache entry is dropped afterwards.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	digest, err := s.tokenRepo.DigestForUser(ctx, userID)
	if err != nil {
		return err
	}
	images, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if digest != "" {
		cache.InvalidateToken(ctx, digest)
	}
	for _, key := range images {
		removeImageFiles(ctx, s.store, key)
	}
	middleware.Logger.InfoContext(ctx, "user deleted",
		slog.Uint64("user_id", uint64(userID)),
		slog.Int("images_removed", len(images)),
	)
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
