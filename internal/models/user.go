// Package models contains data structures for the application's domain models.
package models

import "time"

// User is an account owning a private catalog of tags, ingredients and recipes.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"size:255;not null" json:"-"`
	Name        string    `gorm:"size:255;not null;default:''" json:"name"`
	IsActive    bool      `gorm:"not null;default:true" json:"-"`
	IsStaff     bool      `gorm:"not null;default:false" json:"-"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// AuthToken stores the SHA-256 digest of a user's current opaque API token.
type AuthToken struct {
	Digest    string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}
