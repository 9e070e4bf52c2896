package models

import (
	"time"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus int

const (
	CommentStatusInvalid  CommentStatus = 0
	CommentStatusValid    CommentStatus = 1
	CommentStatusModerate CommentStatus = 2
)

// StatusChoice is one entry of a status choice widget.
type StatusChoice struct {
	Value CommentStatus `json:"value"`
	Label string        `json:"label"`
}

var commentStatusList = []StatusChoice{
	{Value: CommentStatusModerate, Label: "moderate"},
	{Value: CommentStatusInvalid, Label: "invalid"},
	{Value: CommentStatusValid, Label: "valid"},
}

// CommentStatusList returns the allowed comment statuses in display order.
func CommentStatusList() []StatusChoice {
	out := make([]StatusChoice, len(commentStatusList))
	copy(out, commentStatusList)
	return out
}

// Valid reports whether s is one of the known statuses.
func (s CommentStatus) Valid() bool {
	for _, c := range commentStatusList {
		if c.Value == s {
			return true
		}
	}
	return false
}

func (s CommentStatus) String() string {
	for _, c := range commentStatusList {
		if c.Value == s {
			return c.Label
		}
	}
	return "unknown"
}

// Comment is a reader comment attached to a post.
type Comment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	PostID    uint          `gorm:"not null;index" json:"postId"`
	Post      *Post         `gorm:"foreignKey:PostID" json:"post,omitempty" validate:"-"`
	Name      string        `gorm:"not null" json:"name" validate:"required,max=255"`
	Email     string        `json:"email" validate:"omitempty,email"`
	URL       string        `json:"url" validate:"omitempty,url"`
	Message   string        `gorm:"type:text;not null" json:"message" validate:"required"`
	Status    CommentStatus `gorm:"not null;index" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (c *Comment) String() string {
	return c.Name
}

// Validate checks the struct tags and the status enum.
func (c *Comment) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if !c.Status.Valid() {
		return NewValidationError("status is not a known comment status")
	}
	return nil
}
