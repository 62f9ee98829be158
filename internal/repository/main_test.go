package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"pantry/internal/models"
	"pantry/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var emailSeq atomic.Int64

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewTestDB(t)
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("user%d@example.com", emailSeq.Add(1)),
		Password: "hash",
		Name:     "Test User",
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createTag(t *testing.T, db *gorm.DB, ownerID uint, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, UserID: ownerID}
	require.NoError(t, NewTagRepository(db).Create(context.Background(), tag))
	return tag
}

func createIngredient(t *testing.T, db *gorm.DB, ownerID uint, name string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, UserID: ownerID}
	require.NoError(t, NewIngredientRepository(db).Create(context.Background(), ing))
	return ing
}

func createRecipe(t *testing.T, db *gorm.DB, ownerID uint, title string, tagIDs, ingredientIDs []uint) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{Title: title, TimeMinutes: 10, Price: models.NewPrice(5, 50), UserID: ownerID}
	require.NoError(t, NewRecipeRepository(db).Create(context.Background(), recipe, tagIDs, ingredientIDs))
	return recipe
}
