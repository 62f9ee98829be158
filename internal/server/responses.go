package server

import (
	"pantry/internal/models"
	"pantry/internal/service"
)

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenResponse carries a freshly issued API token.
type TokenResponse struct {
	Token string `json:"token"`
}

// RecipeListItem is the list representation of a recipe: links are IDs.
type RecipeListItem struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	TimeMinutes int          `json:"time_minutes"`
	Price       models.Price `json:"price"`
	Link        string       `json:"link"`
	Tags        []uint       `json:"tags"`
	Ingredients []uint       `json:"ingredients"`
	Image       *string      `json:"image"`
}

// RecipeDetail is the detail representation of a recipe: links are nested objects.
type RecipeDetail struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	TimeMinutes int                 `json:"time_minutes"`
	Price       models.Price        `json:"price"`
	Link        string              `json:"link"`
	Tags        []models.Tag        `json:"tags"`
	Ingredients []models.Ingredient `json:"ingredients"`
	Image       *string             `json:"image"`
}

// RecipeImageResponse is returned after a successful image upload.
type RecipeImageResponse struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toRecipeListItem(signer *service.MediaSigner, r *models.Recipe) RecipeListItem {
	return RecipeListItem{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        r.TagIDs(),
		Ingredients: r.IngredientIDs(),
		Image:       signer.URL(r.Image),
	}
}

func toRecipeDetail(signer *service.MediaSigner, r *models.Recipe) RecipeDetail {
	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}
	return RecipeDetail{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        tags,
		Ingredients: ingredients,
		Image:       signer.URL(r.Image),
	}
}
