// Package seed creates demo data for the news back office. These helpers
// are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"newsdesk/internal/middleware"
	"newsdesk/internal/models"
	"newsdesk/internal/repository"
	"newsdesk/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated account.
const DemoPassword = "Newsdesk-Demo1"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by Seed and tests.
type Factory struct {
	opts     Options
	faker    *gofakeit.Faker
	users    *service.UserManager
	userRepo repository.UserRepository
	tags     repository.TagRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	logger   *slog.Logger
	now      func() time.Time

	// synthetic ID counter when running in DryRun mode
	nextID uint
	seq    int
	hash   string
}

// NewFactory creates a new Factory bound to db. db may be nil in DryRun
// mode.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	userRepo := repository.NewUserRepository(db)
	return &Factory{
		opts:     opts,
		faker:    gofakeit.New(seed),
		users:    service.NewUserManager(userRepo).WithCost(opts.cost()),
		userRepo: userRepo,
		tags:     repository.NewTagRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		logger:   middleware.Logger,
		now:      time.Now,
		nextID:   1000,
	}
}

func (f *Factory) syntheticID() uint {
	f.nextID++
	return f.nextID
}

// username turns a fake first name into a unique, valid username.
func (f *Factory) username() string {
	f.seq++
	var b strings.Builder
	for _, r := range f.faker.FirstName() {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	name := b.String()
	if len(name) > 20 {
		name = name[:20]
	}
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("%s%d%d", name, f.seq, f.faker.Number(100, 999))
}

// BuildUser constructs an enabled account that logs in with DemoPassword.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	if f.hash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), f.opts.cost())
		if err != nil {
			return nil, err
		}
		f.hash = string(hashed)
	}
	name := f.username()
	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: f.hash,
		Enabled:  true,
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser builds and persists an account.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		user.ID = f.syntheticID()
		f.logger.Debug("[dry-run] CreateUser", slog.String("username", user.Username))
		return user, nil
	}
	if err := f.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAccount registers a fixture account through the user manager, so
// its password must be strong. An existing account with the same username
// is returned unchanged.
func (f *Factory) CreateAccount(ctx context.Context, u FixtureUser) (*models.User, error) {
	if f.opts.DryRun {
		return &models.User{ID: f.syntheticID(), Username: u.Username, Email: u.Email, IsAdmin: u.Admin, Enabled: true}, nil
	}
	existing, err := f.userRepo.GetByLogin(ctx, u.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return f.users.CreateUser(ctx, u.Username, u.Email, u.Password, u.Admin)
}

// CreateTag returns the tag named name, creating it when missing.
func (f *Factory) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	if f.opts.DryRun {
		return &models.Tag{ID: f.syntheticID(), Name: name, Slug: models.Slugify(name), Enabled: true}, nil
	}
	return f.tags.FindOrCreate(ctx, name)
}

// BuildPost constructs a post by author. Most posts are published and
// open for comments; some closed their comments in the past.
func (f *Factory) BuildPost(author *models.User, tags []models.Tag, overrides ...func(*models.Post)) *models.Post {
	statuses := models.CommentStatusList()
	post := &models.Post{
		Title:                 strings.TrimSuffix(f.faker.Sentence(6), "."),
		Abstract:              f.faker.Sentence(16),
		Content:               f.faker.Paragraph(3, 4, 12, "\n\n"),
		Enabled:               f.faker.Number(1, 10) > 1,
		Author:                author,
		AuthorID:              &author.ID,
		Tags:                  tags,
		CommentsEnabled:       f.faker.Number(1, 10) > 2,
		CommentsDefaultStatus: statuses[f.faker.Number(0, len(statuses)-1)].Value,
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.faker.Number(0, maxDays-1)
	post.CreatedAt = f.now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(f.faker.Number(0, 23))*time.Hour)

	if post.CommentsEnabled && f.faker.Number(1, 4) == 1 {
		closeAt := post.CreatedAt.Add(time.Duration(f.faker.Number(1, 30)) * 24 * time.Hour)
		post.CommentsCloseAt = &closeAt
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost persists post with its author and tag links.
func (f *Factory) CreatePost(ctx context.Context, post *models.Post) error {
	if f.opts.DryRun {
		post.ID = f.syntheticID()
		return nil
	}
	return f.posts.Create(ctx, post)
}

// BuildComment constructs a reader comment on post carrying the post's
// default status.
func (f *Factory) BuildComment(post *models.Post, overrides ...func(*models.Comment)) *models.Comment {
	comment := &models.Comment{
		Post:    post,
		PostID:  post.ID,
		Name:    f.faker.Name(),
		Email:   f.faker.Email(),
		Message: f.faker.Sentence(14),
		Status:  post.CommentsDefaultStatus,
	}
	if f.faker.Number(1, 3) == 1 {
		comment.URL = f.faker.URL()
	}
	for _, override := range overrides {
		override(comment)
	}
	return comment
}

func (f *Factory) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := comment.Validate(); err != nil {
		return err
	}
	if f.opts.DryRun {
		comment.ID = f.syntheticID()
		return nil
	}
	return f.comments.Create(ctx, comment)
}
