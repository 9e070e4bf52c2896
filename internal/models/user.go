// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is a back-office account. Posts reference users as their author.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username" validate:"required,max=64"`
	Email    string `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Password string `gorm:"not null" json:"-"`
	// PlainPassword carries a new password until the user manager hashes it.
	PlainPassword string    `gorm:"-" json:"plainPassword,omitempty"`
	Enabled       bool      `gorm:"not null" json:"enabled"`
	IsAdmin       bool      `gorm:"not null;index" json:"isAdmin"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) String() string {
	return u.Username
}

// Validate checks the struct tags.
func (u *User) Validate() error {
	return validateStruct(u)
}
