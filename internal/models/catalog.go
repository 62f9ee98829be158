package models

import "time"

// Tag labels recipes within a single user's catalog.
type Tag struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"index;not null" json:"-"`
}

// Ingredient is a user-owned ingredient that recipes can reference.
type Ingredient struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"index;not null" json:"-"`
}

// Recipe is a user-owned recipe with optional image and tag/ingredient links.
type Recipe struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	TimeMinutes int          `gorm:"not null" json:"time_minutes"`
	Price       Price        `gorm:"type:numeric(5,2);not null" json:"price"`
	Link        string       `gorm:"size:255;not null;default:''" json:"link"`
	Image       string       `gorm:"size:255;not null;default:''" json:"-"`
	UserID      uint         `gorm:"index;not null" json:"-"`
	Tags        []Tag        `gorm:"many2many:recipe_tags" json:"tags"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients" json:"ingredients"`
	CreatedAt   time.Time    `json:"-"`
	UpdatedAt   time.Time    `json:"-"`
}

// RecipeTag is a row of the recipe/tag junction table.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID    uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName returns the database table name for RecipeTag.
func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// RecipeIngredient is a row of the recipe/ingredient junction table.
type RecipeIngredient struct {
	RecipeID     uint `gorm:"primaryKey;autoIncrement:false"`
	IngredientID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName returns the database table name for RecipeIngredient.
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// TagIDs returns the IDs of the recipe's loaded tags.
func (r *Recipe) TagIDs() []uint {
	ids := make([]uint, 0, len(r.Tags))
	for _, t := range r.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// IngredientIDs returns the IDs of the recipe's loaded ingredients.
func (r *Recipe) IngredientIDs() []uint {
	ids := make([]uint, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ids = append(ids, i.ID)
	}
	return ids
}
