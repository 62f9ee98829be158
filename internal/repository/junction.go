package repository

import (
	"pantry/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddRecipeTags links tagIDs to the recipe, ignoring links that already exist.
func AddRecipeTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	tagIDs = uniqueIDs(tagIDs)
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, models.RecipeTag{RecipeID: recipeID, TagID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// ReplaceRecipeTags makes tagIDs the recipe's complete tag set.
func ReplaceRecipeTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return err
	}
	return AddRecipeTags(tx, recipeID, tagIDs)
}

// AddRecipeIngredients links ingredientIDs to the recipe, ignoring links that already exist.
func AddRecipeIngredients(tx *gorm.DB, recipeID uint, ingredientIDs []uint) error {
	ingredientIDs = uniqueIDs(ingredientIDs)
	if len(ingredientIDs) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, 0, len(ingredientIDs))
	for _, id := range ingredientIDs {
		rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// ReplaceRecipeIngredients makes ingredientIDs the recipe's complete ingredient set.
func ReplaceRecipeIngredients(tx *gorm.DB, recipeID uint, ingredientIDs []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	return AddRecipeIngredients(tx, recipeID, ingredientIDs)
}

func deleteRecipeLinks(tx *gorm.DB, recipeID uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return err
	}
	return tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error
}
