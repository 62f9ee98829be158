package service

import (
	"context"
	"strings"
	"testing"

	"pantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_CreateValidatesName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "tags@example.com")

	tag, err := f.tags.Create(ctx, user.ID, "  Breakfast ")
	require.NoError(t, err)
	assert.Equal(t, "Breakfast", tag.Name)
	assert.Equal(t, user.ID, tag.UserID)

	_, err = f.tags.Create(ctx, user.ID, "   ")
	assertCode(t, err, models.CodeValidation)

	_, err = f.tags.Create(ctx, user.ID, strings.Repeat("t", 256))
	assertCode(t, err, models.CodeValidation)
}

func TestTagService_UpdateAndDeleteAreOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	other := f.register(t, "other@example.com")

	tag, err := f.tags.Create(ctx, owner.ID, "After Dinner")
	require.NoError(t, err)

	_, err = f.tags.Update(ctx, other.ID, tag.ID, "Mine now")
	assertCode(t, err, models.CodeNotFound)
	assertCode(t, f.tags.Delete(ctx, other.ID, tag.ID), models.CodeNotFound)

	updated, err := f.tags.Update(ctx, owner.ID, tag.ID, "Dessert")
	require.NoError(t, err)
	assert.Equal(t, "Dessert", updated.Name)

	require.NoError(t, f.tags.Delete(ctx, owner.ID, tag.ID))
	tags, err := f.tags.List(ctx, owner.ID, false)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestIngredientService_AssignedOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "ings@example.com")

	eggs, err := f.ings.Create(ctx, user.ID, "Eggs")
	require.NoError(t, err)
	_, err = f.ings.Create(ctx, user.ID, "Lentils")
	require.NoError(t, err)

	for _, title := range []string{"Eggs Benedict", "Herb Eggs"} {
		_, err := f.recipes.Create(ctx, user.ID, RecipeInput{
			Title:         ptr(title),
			TimeMinutes:   ptr(60),
			Price:         ptr(models.NewPrice(7, 0)),
			IngredientIDs: ptr([]uint{eggs.ID}),
		})
		require.NoError(t, err)
	}

	assigned, err := f.ings.List(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Eggs", assigned[0].Name)

	_, err = f.ings.Create(ctx, user.ID, "")
	assertCode(t, err, models.CodeValidation)
}
