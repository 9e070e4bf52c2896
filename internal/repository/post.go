package repository

import (
	"context"
	"errors"

	"newsdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	CountWithOpenComments(ctx context.Context) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts post and links its existing author and tags.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if post.Author != nil {
			post.AuthorID = &post.Author.ID
		}
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return models.NewInternalError(err)
		}
		if len(post.Tags) > 0 {
			if err := tx.Model(post).Association("Tags").Replace(post.Tags); err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := conn(ctx, r.db).Preload("Author").Preload("Tags").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// CountWithOpenComments counts posts holding at least one comment awaiting
// moderation.
func (r *postRepository) CountWithOpenComments(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.Post{}).
		Where("EXISTS (SELECT 1 FROM comments c WHERE c.post_id = posts.id AND c.status = ?)", models.CommentStatusModerate).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
