package repository

import (
	"context"
	"errors"

	"pantry/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows a recipe list. IDs within one dimension are ORed;
// the two dimensions are ANDed. Empty slices do not filter.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeChanges carries the fields of an update. Nil fields are left as they are;
// non-nil TagIDs/IngredientIDs replace the whole set.
type RecipeChanges struct {
	Title         *string
	TimeMinutes   *int
	Price         *models.Price
	Link          *string
	TagIDs        *[]uint
	IngredientIDs *[]uint
}

// RecipeRepository defines owner-scoped persistence operations for recipes.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe, tagIDs, ingredientIDs []uint) error
	GetForOwner(ctx context.Context, ownerID, id uint) (*models.Recipe, error)
	Update(ctx context.Context, ownerID, id uint, changes RecipeChanges) error
	// Delete removes the recipe and its links and returns the deleted row.
	Delete(ctx context.Context, ownerID, id uint) (*models.Recipe, error)
	List(ctx context.Context, ownerID uint, filter RecipeFilter) ([]models.Recipe, error)
	// SetImage stores key as the recipe image and returns the key it replaced.
	SetImage(ctx context.Context, ownerID, id uint, key string) (previous string, err error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *recipeRepository) withLinks(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", orderByID).Preload("Ingredients", orderByID)
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, tagIDs, ingredientIDs []uint) error {
	tagIDs = uniqueIDs(tagIDs)
	ingredientIDs = uniqueIDs(ingredientIDs)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkLinks(ctx, tx, recipe.UserID, &tagIDs, &ingredientIDs); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := AddRecipeTags(tx, recipe.ID, tagIDs); err != nil {
			return err
		}
		return AddRecipeIngredients(tx, recipe.ID, ingredientIDs)
	})
	return wrapTxError(err)
}

// checkLinks rejects tag or ingredient IDs the owner does not own, reporting both fields at once.
func checkLinks(ctx context.Context, tx *gorm.DB, ownerID uint, tagIDs, ingredientIDs *[]uint) error {
	var combined *models.AppError
	for _, check := range []struct {
		table labelTable
		ids   *[]uint
	}{{tagTable, tagIDs}, {ingredientTable, ingredientIDs}} {
		if check.ids == nil {
			continue
		}
		err := check.table.checkOwned(ctx, tx, ownerID, *check.ids)
		if err == nil {
			continue
		}
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			return err
		}
		if combined == nil {
			combined = models.NewValidationError("Invalid recipe links")
		}
		for field, msgs := range appErr.Fields {
			for _, msg := range msgs {
				combined.WithField(field, msg)
			}
		}
	}
	if combined != nil {
		return combined
	}
	return nil
}

func (r *recipeRepository) GetForOwner(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.withLinks(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &recipe, nil
}

func (r *recipeRepository) Update(ctx context.Context, ownerID, id uint, changes RecipeChanges) error {
	if changes.TagIDs != nil {
		ids := uniqueIDs(*changes.TagIDs)
		changes.TagIDs = &ids
	}
	if changes.IngredientIDs != nil {
		ids := uniqueIDs(*changes.IngredientIDs)
		changes.IngredientIDs = &ids
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, ownerID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Recipe", id)
			}
			return err
		}
		if err := checkLinks(ctx, tx, ownerID, changes.TagIDs, changes.IngredientIDs); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if changes.Title != nil {
			updates["title"] = *changes.Title
		}
		if changes.TimeMinutes != nil {
			updates["time_minutes"] = *changes.TimeMinutes
		}
		if changes.Price != nil {
			updates["price"] = *changes.Price
		}
		if changes.Link != nil {
			updates["link"] = *changes.Link
		}
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return err
			}
		}

		if changes.TagIDs != nil {
			if err := ReplaceRecipeTags(tx, id, *changes.TagIDs); err != nil {
				return err
			}
		}
		if changes.IngredientIDs != nil {
			if err := ReplaceRecipeIngredients(tx, id, *changes.IngredientIDs); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapTxError(err)
}

func (r *recipeRepository) Delete(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Recipe", id)
			}
			return err
		}
		if err := deleteRecipeLinks(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		return nil, wrapTxError(err)
	}
	return &recipe, nil
}

func (r *recipeRepository) List(ctx context.Context, ownerID uint, filter RecipeFilter) ([]models.Recipe, error) {
	db := r.db.WithContext(ctx)
	q := db.Model(&models.Recipe{}).Where("recipes.user_id = ?", ownerID)

	if len(filter.TagIDs) > 0 {
		byTag := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.RecipeTag{}).Select("recipe_id").Where("tag_id IN ?", uniqueIDs(filter.TagIDs))
		q = q.Where("recipes.id IN (?)", byTag)
	}
	if len(filter.IngredientIDs) > 0 {
		byIngredient := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.RecipeIngredient{}).Select("recipe_id").Where("ingredient_id IN ?", uniqueIDs(filter.IngredientIDs))
		q = q.Where("recipes.id IN (?)", byIngredient)
	}

	var recipes []models.Recipe
	if err := r.withLinks(q).Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (r *recipeRepository) SetImage(ctx context.Context, ownerID, id uint, key string) (string, error) {
	var previous string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id", "image").Where("id = ? AND user_id = ?", id, ownerID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Recipe", id)
			}
			return err
		}
		previous = recipe.Image
		return tx.Model(&recipe).Update("image", key).Error
	})
	if err != nil {
		return "", wrapTxError(err)
	}
	return previous, nil
}
