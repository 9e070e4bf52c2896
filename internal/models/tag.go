package models

import (
	"strings"
	"time"
	"unicode"

	"newsdesk/internal/validation"

	"gorm.io/gorm"
)

// Tag labels posts.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name" validate:"required,max=64"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Tag) String() string {
	return t.Name
}

// Validate checks the struct tags and, once set, the slug format.
func (t *Tag) Validate() error {
	if err := validateStruct(t); err != nil {
		return err
	}
	if t.Slug != "" {
		if err := validation.ValidateSlug(t.Slug); err != nil {
			return NewValidationError(err.Error())
		}
	}
	return nil
}

// BeforeSave derives the slug from the name when it is empty.
func (t *Tag) BeforeSave(*gorm.DB) error {
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	return nil
}

// Slugify lowercases s and joins its ASCII alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
