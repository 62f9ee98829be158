package service

import (
	"context"
	"errors"
	"testing"

	"pantry/internal/models"
	"pantry/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() RecipeInput {
	return RecipeInput{
		Title:       ptr("Sample recipe"),
		TimeMinutes: ptr(22),
		Price:       ptr(models.NewPrice(5, 25)),
		Link:        ptr("http://example.com/recipe.pdf"),
	}
}

func TestRecipeService_CreateRequiresFields(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "chef@example.com")

	_, err := f.recipes.Create(context.Background(), user.ID, RecipeInput{Link: ptr("x")})
	assertCode(t, err, models.CodeValidation)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, []string{"price", "time_minutes", "title"}, appErr.FieldNames())
}

func TestRecipeService_CreateRejectsNegativeTime(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "chef@example.com")

	in := sampleInput()
	in.TimeMinutes = ptr(-1)
	_, err := f.recipes.Create(context.Background(), user.ID, in)
	assertCode(t, err, models.CodeValidation)
}

func TestRecipeService_CreateWithNewLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "chef@example.com")
	thai, err := f.tags.Create(ctx, user.ID, "Thai")
	require.NoError(t, err)

	in := sampleInput()
	in.TagIDs = ptr([]uint{thai.ID, thai.ID})
	recipe, err := f.recipes.Create(ctx, user.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Sample recipe", recipe.Title)
	assert.Equal(t, "5.25", recipe.Price.String())
	assert.Equal(t, []uint{thai.ID}, recipe.TagIDs())
	assert.Empty(t, recipe.Ingredients)
}

func TestRecipeService_CrossOwnerLinksRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "chef@example.com")
	other := f.register(t, "other@example.com")
	foreign, err := f.tags.Create(ctx, other.ID, "Foreign")
	require.NoError(t, err)

	in := sampleInput()
	in.TagIDs = ptr([]uint{foreign.ID})
	_, err = f.recipes.Create(ctx, user.ID, in)
	assertCode(t, err, models.CodeValidation)

	list, err := f.recipes.List(ctx, user.ID, repository.RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecipeService_PartialUpdatePreserves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "chef@example.com")
	tag, err := f.tags.Create(ctx, user.ID, "Breakfast")
	require.NoError(t, err)

	in := sampleInput()
	in.TagIDs = ptr([]uint{tag.ID})
	recipe, err := f.recipes.Create(ctx, user.ID, in)
	require.NoError(t, err)

	updated, err := f.recipes.Update(ctx, user.ID, recipe.ID, RecipeInput{Title: ptr("New recipe title")}, true)
	require.NoError(t, err)
	assert.Equal(t, "New recipe title", updated.Title)
	assert.Equal(t, "http://example.com/recipe.pdf", updated.Link)
	assert.Equal(t, 22, updated.TimeMinutes)
	assert.Equal(t, []uint{tag.ID}, updated.TagIDs())
}

func TestRecipeService_FullUpdateResetsOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "chef@example.com")
	tag, err := f.tags.Create(ctx, user.ID, "Breakfast")
	require.NoError(t, err)
	ing, err := f.ings.Create(ctx, user.ID, "Oats")
	require.NoError(t, err)

	in := sampleInput()
	in.TagIDs = ptr([]uint{tag.ID})
	in.IngredientIDs = ptr([]uint{ing.ID})
	recipe, err := f.recipes.Create(ctx, user.ID, in)
	require.NoError(t, err)

	_, err = f.recipes.Update(ctx, user.ID, recipe.ID, RecipeInput{Title: ptr("Only title")}, false)
	assertCode(t, err, models.CodeValidation)

	lunch, err := f.tags.Create(ctx, user.ID, "Lunch")
	require.NoError(t, err)
	updated, err := f.recipes.Update(ctx, user.ID, recipe.ID, RecipeInput{
		Title:       ptr("New title"),
		TimeMinutes: ptr(5),
		Price:       ptr(models.NewPrice(2, 50)),
		TagIDs:      ptr([]uint{lunch.ID}),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Empty(t, updated.Link)
	assert.Equal(t, []uint{lunch.ID}, updated.TagIDs())
	assert.Empty(t, updated.Ingredients)
}

func TestRecipeService_OtherUsersRecipeIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	other := f.register(t, "other@example.com")

	recipe, err := f.recipes.Create(ctx, owner.ID, sampleInput())
	require.NoError(t, err)

	_, err = f.recipes.Get(ctx, other.ID, recipe.ID)
	assertCode(t, err, models.CodeNotFound)
	_, err = f.recipes.Update(ctx, other.ID, recipe.ID, RecipeInput{Title: ptr("x")}, true)
	assertCode(t, err, models.CodeNotFound)
	assertCode(t, f.recipes.Delete(ctx, other.ID, recipe.ID), models.CodeNotFound)

	still, err := f.recipes.Get(ctx, owner.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sample recipe", still.Title)
}

func TestRecipeService_DeleteRemovesImageFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "chef@example.com")

	recipe, err := f.recipes.Create(ctx, user.ID, sampleInput())
	require.NoError(t, err)
	withImage, err := f.images.SetRecipeImage(ctx, user.ID, recipe.ID, UploadInput{Filename: "x.png", Content: pngBytes()})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{withImage.Image, ThumbnailPath(withImage.Image)}, f.store.Keys())

	require.NoError(t, f.recipes.Delete(ctx, user.ID, recipe.ID))
	assert.Empty(t, f.store.Keys())

	assertCode(t, f.recipes.Delete(ctx, user.ID, recipe.ID), models.CodeNotFound)
}
