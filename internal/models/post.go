package models

import (
	"time"
)

// Post is a news article managed from the back office.
type Post struct {
	ID                    uint          `gorm:"primaryKey" json:"id"`
	Title                 string        `gorm:"not null" json:"title" validate:"required,max=255"`
	Abstract              string        `gorm:"type:text;not null" json:"abstract" validate:"required"`
	Content               string        `gorm:"type:text;not null" json:"content" validate:"required"`
	Enabled               bool          `gorm:"not null;index" json:"enabled"`
	AuthorID              *uint         `gorm:"index" json:"authorId,omitempty"`
	Author                *User         `gorm:"foreignKey:AuthorID" json:"author,omitempty" validate:"required"`
	Tags                  []Tag         `gorm:"many2many:post_tags" json:"tags"`
	Comments              []Comment     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CommentsEnabled       bool          `gorm:"not null" json:"commentsEnabled"`
	CommentsCloseAt       *time.Time    `json:"commentsCloseAt,omitempty"`
	CommentsDefaultStatus CommentStatus `gorm:"not null" json:"commentsDefaultStatus"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

func (p *Post) String() string {
	return p.Title
}

// Validate checks the struct tags and the default comment status.
func (p *Post) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if !p.CommentsDefaultStatus.Valid() {
		return NewValidationError("commentsDefaultStatus is not a known comment status")
	}
	return nil
}

// IsCommentable reports whether new comments are accepted at now.
func (p *Post) IsCommentable(now time.Time) bool {
	if !p.CommentsEnabled {
		return false
	}
	return p.CommentsCloseAt == nil || p.CommentsCloseAt.After(now)
}
