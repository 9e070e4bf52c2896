package repository

import (
	"context"

	"newsdesk/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	// FindOrCreate returns the tag named name, creating it when missing.
	FindOrCreate(ctx context.Context, name string) (*models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	tag := models.Tag{Name: name, Slug: models.Slugify(name), Enabled: true}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	err := conn(ctx, r.db).
		Where(models.Tag{Slug: tag.Slug}).
		Attrs(tag).
		FirstOrCreate(&tag).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}
