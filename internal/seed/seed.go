package seed

import (
	"context"
	"fmt"
	"log/slog"

	"newsdesk/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxComments int
	MaxDays     int
	ShouldClean bool
	// DryRun builds everything without writing to the database.
	DryRun bool
	// Fast hashes passwords at the minimum bcrypt cost.
	Fast bool
	// RandSeed makes generated content reproducible. Zero picks one.
	RandSeed int64
	// Fixture is applied before random data when set.
	Fixture *Fixture
}

func (o Options) cost() int {
	if o.Fast {
		return bcrypt.MinCost
	}
	return bcrypt.DefaultCost
}

// Summary counts what a seeding run created.
type Summary struct {
	Users    int
	Tags     int
	Posts    int
	Comments int
}

// cleanOrder lists tables children first so foreign keys hold while
// deleting.
var cleanOrder = []string{"comments", "post_tags", "posts", "tags", "users"}

// Seed populates the database with the fixture and random data.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	f := NewFactory(db, opts)
	f.logger.InfoContext(ctx, "starting database seeding",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts", opts.NumPosts),
		slog.Bool("dry_run", opts.DryRun),
	)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	sum := &Summary{}
	var users []*models.User
	var tags []models.Tag

	if opts.Fixture != nil {
		fu, ft, err := applyFixture(ctx, f, opts.Fixture, sum)
		if err != nil {
			return nil, fmt.Errorf("failed to apply fixture: %w", err)
		}
		users, tags = fu, ft
	}

	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, u)
		sum.Users++
	}
	if opts.NumPosts > 0 && len(users) == 0 {
		return nil, fmt.Errorf("cannot create %d posts without authors", opts.NumPosts)
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		post := f.BuildPost(author, pickTags(f, tags))
		if err := f.CreatePost(ctx, post); err != nil {
			return nil, fmt.Errorf("failed to create posts: %w", err)
		}
		sum.Posts++

		if opts.MaxComments <= 0 {
			continue
		}
		for n := f.faker.Number(0, opts.MaxComments); n > 0; n-- {
			if err := f.CreateComment(ctx, f.BuildComment(post)); err != nil {
				return nil, fmt.Errorf("failed to create comments: %w", err)
			}
			sum.Comments++
		}
	}

	f.logger.InfoContext(ctx, "database seeding completed",
		slog.Int("users", sum.Users),
		slog.Int("tags", sum.Tags),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

// pickTags returns up to two distinct tags.
func pickTags(f *Factory, tags []models.Tag) []models.Tag {
	if len(tags) == 0 {
		return nil
	}
	first := f.faker.Number(0, len(tags)-1)
	picked := []models.Tag{tags[first]}
	if len(tags) > 1 && f.faker.Bool() {
		second := (first + f.faker.Number(1, len(tags)-1)) % len(tags)
		picked = append(picked, tags[second])
	}
	return picked
}

func applyFixture(ctx context.Context, f *Factory, fx *Fixture, sum *Summary) ([]*models.User, []models.Tag, error) {
	tagsByName := make(map[string]models.Tag, len(fx.Tags))
	tags := make([]models.Tag, 0, len(fx.Tags))
	for _, name := range fx.Tags {
		tag, err := f.CreateTag(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		tagsByName[name] = *tag
		tags = append(tags, *tag)
		sum.Tags++
	}

	usersByName := make(map[string]*models.User, len(fx.Users))
	users := make([]*models.User, 0, len(fx.Users))
	for _, fu := range fx.Users {
		user, err := f.CreateAccount(ctx, fu)
		if err != nil {
			return nil, nil, fmt.Errorf("user %s: %w", fu.Username, err)
		}
		usersByName[fu.Username] = user
		users = append(users, user)
		sum.Users++
	}

	now := f.now()
	for _, fp := range fx.Posts {
		status, _ := parseStatus(fp.CommentsDefaultStatus, models.CommentStatusModerate)
		closeAt, _ := fp.closeAt(now)
		author := usersByName[fp.Author]

		post := &models.Post{
			Title:                 fp.Title,
			Abstract:              fp.Abstract,
			Content:               fp.Content,
			Enabled:               fp.Enabled == nil || *fp.Enabled,
			Author:                author,
			AuthorID:              &author.ID,
			CommentsEnabled:       fp.CommentsEnabled,
			CommentsCloseAt:       closeAt,
			CommentsDefaultStatus: status,
		}
		for _, name := range fp.Tags {
			post.Tags = append(post.Tags, tagsByName[name])
		}
		if err := post.Validate(); err != nil {
			return nil, nil, fmt.Errorf("post %q: %w", fp.Title, err)
		}
		if err := f.CreatePost(ctx, post); err != nil {
			return nil, nil, fmt.Errorf("post %q: %w", fp.Title, err)
		}
		sum.Posts++

		for _, fc := range fp.Comments {
			cs, _ := parseStatus(fc.Status, status)
			comment := &models.Comment{
				Post:    post,
				Name:    fc.Name,
				Email:   fc.Email,
				URL:     fc.URL,
				Message: fc.Message,
				Status:  cs,
			}
			if err := f.CreateComment(ctx, comment); err != nil {
				return nil, nil, fmt.Errorf("comment by %q: %w", fc.Name, err)
			}
			sum.Comments++
		}
	}
	return users, tags, nil
}

func clearData(ctx context.Context, db *gorm.DB) error {
	for _, table := range cleanOrder {
		if err := db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
