package repository

import (
	"context"

	"newsdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	CountByStatus(ctx context.Context) (map[models.CommentStatus]int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.Post != nil {
		comment.PostID = comment.Post.ID
	}
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CountByStatus returns the number of comments in each moderation status.
// Statuses without comments are reported as zero.
func (r *commentRepository) CountByStatus(ctx context.Context) (map[models.CommentStatus]int64, error) {
	var rows []struct {
		Status models.CommentStatus
		Total  int64
	}
	err := conn(ctx, r.db).Model(&models.Comment{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.CommentStatus]int64, len(rows))
	for _, s := range models.CommentStatusList() {
		out[s.Value] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
