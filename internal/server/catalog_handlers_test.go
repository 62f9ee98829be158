package server

import (
	"fmt"
	"net/http"
	"testing"

	"pantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsRequireAuth(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/api/recipe/tags", "/api/recipe/ingredients", "/api/recipe/recipes"} {
		resp, _ := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestTagCRUD(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup()

	resp, data := api.do(http.MethodPost, "/api/recipe/tags", token, map[string]string{"name": "  Vegan "})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	tag := decodeJSON[models.Tag](t, data)
	assert.Equal(t, "Vegan", tag.Name)

	t.Run("blank name rejected", func(t *testing.T) {
		resp, data := api.do(http.MethodPost, "/api/recipe/tags", token, map[string]string{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeJSON[models.ErrorResponse](t, data).Fields, "name")
	})

	t.Run("missing name rejected", func(t *testing.T) {
		resp, _ := api.do(http.MethodPost, "/api/recipe/tags", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rename with patch and put", func(t *testing.T) {
		for _, method := range []string{http.MethodPatch, http.MethodPut} {
			name := "Dessert " + method
			resp, data := api.do(method, fmt.Sprintf("/api/recipe/tags/%d", tag.ID), token, map[string]string{"name": name})
			require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
			assert.Equal(t, name, decodeJSON[models.Tag](t, data).Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		resp, _ := api.do(http.MethodDelete, fmt.Sprintf("/api/recipe/tags/%d", tag.ID), token, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/recipe/tags/%d", tag.ID), token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTagsAreIsolatedPerUser(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup()
	bob := api.signup()

	aliceTag := api.createTag(alice, "Breakfast")
	api.createTag(bob, "Dinner")

	resp, data := api.do(http.MethodGet, "/api/recipe/tags", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tags := decodeJSON[[]models.Tag](t, data)
	require.Len(t, tags, 1)
	assert.Equal(t, "Breakfast", tags[0].Name)

	resp, _ = api.do(http.MethodPatch, fmt.Sprintf("/api/recipe/tags/%d", aliceTag), bob, map[string]string{"name": "Stolen"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/recipe/tags/%d", aliceTag), bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTagsEmptyIsArray(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup()

	resp, data := api.do(http.MethodGet, "/api/recipe/tags", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(data))
}

func TestAssignedOnlyFilter(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup()

	used := api.createTag(token, "Used")
	api.createTag(token, "Unused")
	egg := api.createIngredient(token, "Egg")
	api.createIngredient(token, "Flour")

	api.createRecipe(token, map[string]any{"title": "Omelette", "tags": []uint{used}, "ingredients": []uint{egg}})
	api.createRecipe(token, map[string]any{"title": "Scramble", "tags": []uint{used}, "ingredients": []uint{egg}})

	t.Run("tags", func(t *testing.T) {
		resp, data := api.do(http.MethodGet, "/api/recipe/tags?assigned_only=1", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		tags := decodeJSON[[]models.Tag](t, data)
		require.Len(t, tags, 1)
		assert.Equal(t, used, tags[0].ID)
	})

	t.Run("ingredients", func(t *testing.T) {
		resp, data := api.do(http.MethodGet, "/api/recipe/ingredients?assigned_only=true", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		ings := decodeJSON[[]models.Ingredient](t, data)
		require.Len(t, ings, 1)
		assert.Equal(t, egg, ings[0].ID)
	})

	t.Run("falsy returns all", func(t *testing.T) {
		resp, data := api.do(http.MethodGet, "/api/recipe/tags?assigned_only=0", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decodeJSON[[]models.Tag](t, data), 2)
	})

	t.Run("invalid flag", func(t *testing.T) {
		resp, data := api.do(http.MethodGet, "/api/recipe/ingredients?assigned_only=maybe", token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeJSON[models.ErrorResponse](t, data).Fields, "assigned_only")
	})
}

func TestIngredientCRUD(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup()
	other := api.signup()

	id := api.createIngredient(token, "Salt")

	resp, data := api.do(http.MethodPatch, fmt.Sprintf("/api/recipe/ingredients/%d", id), token, map[string]string{"name": "Sea salt"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "Sea salt", decodeJSON[models.Ingredient](t, data).Name)

	resp, _ = api.do(http.MethodGet, "/api/recipe/ingredients", other, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/recipe/ingredients/%d", id), other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/recipe/ingredients/%d", id), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = api.do(http.MethodPatch, "/api/recipe/ingredients/abc", token, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
