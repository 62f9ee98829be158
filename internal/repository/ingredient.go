package repository

import (
	"context"
	"errors"

	"pantry/internal/models"

	"gorm.io/gorm"
)

// IngredientRepository defines owner-scoped persistence operations for ingredients.
type IngredientRepository interface {
	Create(ctx context.Context, ingredient *models.Ingredient) error
	GetForOwner(ctx context.Context, ownerID, id uint) (*models.Ingredient, error)
	Rename(ctx context.Context, ownerID, id uint, name string) (*models.Ingredient, error)
	Delete(ctx context.Context, ownerID, id uint) error
	List(ctx context.Context, ownerID uint, assignedOnly bool) ([]models.Ingredient, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository returns a new IngredientRepository implementation.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *models.Ingredient) error {
	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *ingredientRepository) GetForOwner(ctx context.Context, ownerID, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Ingredient", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &ingredient, nil
}

func (r *ingredientRepository) Rename(ctx context.Context, ownerID, id uint, name string) (*models.Ingredient, error) {
	ingredient, err := r.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(ingredient).Update("name", name).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ingredient, nil
}

func (r *ingredientRepository) Delete(ctx context.Context, ownerID, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Ingredient
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, ownerID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Ingredient", id)
			}
			return err
		}
		if err := ingredientTable.deleteJunctionRows(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Ingredient{}, id).Error
	})
	return wrapTxError(err)
}

func (r *ingredientRepository) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := ingredientTable.listScope(r.db.WithContext(ctx), ownerID, assignedOnly).Find(&ingredients).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ingredients, nil
}
