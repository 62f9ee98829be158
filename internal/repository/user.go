package repository

import (
	"context"

	"pantry/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByEmail returns nil, nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user and everything they own, returning the
	// storage keys of recipe images that must be removed afterwards.
	Delete(ctx context.Context, id uint) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user := new(models.User)
	if err := r.db.WithContext(ctx).First(user, id).Error; err != nil {
		return nil, dbError(err, "User", id)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.write(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.write(r.db.WithContext(ctx).Save(user).Error)
}

// write maps a failed insert or update; the only unique column is email.
func (r *userRepository) write(err error) error {
	if isUniqueConstraintError(err) {
		return models.NewFieldValidationError("email", "user with this email already exists.")
	}
	return dbError(err, "User", nil)
}

// ownedModels are removed with their owner, after the recipe junction rows.
var ownedModels = []any{&models.Recipe{}, &models.Tag{}, &models.Ingredient{}, &models.AuthToken{}}

func (r *userRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var images []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Take(&models.User{}, id).Error; err != nil {
			return err
		}

		owned := tx.Session(&gorm.Session{NewDB: true}).Model(&models.Recipe{}).Where("user_id = ?", id)
		if err := owned.Where("image <> ''").Pluck("image", &images).Error; err != nil {
			return err
		}

		recipeIDs := tx.Session(&gorm.Session{NewDB: true}).Model(&models.Recipe{}).Select("id").Where("user_id = ?", id)
		for _, junction := range []any{&models.RecipeTag{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id IN (?)", recipeIDs).Delete(junction).Error; err != nil {
				return err
			}
		}
		for _, model := range ownedModels {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, dbError(err, "User", id)
	}
	return images, nil
}
