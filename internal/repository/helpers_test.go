package repository

import (
	"testing"
	"time"

	"newsdesk/internal/database"
	"newsdesk/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLite opens a migrated in-memory database on a single connection.
func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

type blog struct {
	alice, bob   *models.User
	golang, sql  *models.Tag
	first        *models.Post
	second       *models.Post
	third        *models.Post
	openComments int
}

// seedBlog creates three posts. Only the first has comments awaiting
// moderation (two of them); the second has a valid one.
func seedBlog(t *testing.T, db *gorm.DB) *blog {
	t.Helper()
	b := &blog{
		alice:  &models.User{Username: "alice", Email: "alice@example.com", Password: "x", Enabled: true, IsAdmin: true},
		bob:    &models.User{Username: "bob", Email: "bob@example.com", Password: "x", Enabled: true},
		golang: &models.Tag{Name: "Go", Enabled: true},
		sql:    &models.Tag{Name: "SQL", Enabled: true},
	}
	require.NoError(t, db.Create(b.alice).Error)
	require.NoError(t, db.Create(b.bob).Error)
	require.NoError(t, db.Create(b.golang).Error)
	require.NoError(t, db.Create(b.sql).Error)

	posts := NewPostRepository(db)
	mk := func(title string, author *models.User, tags ...models.Tag) *models.Post {
		p := &models.Post{
			Title: title, Abstract: title + " abstract", Content: title + " content",
			Enabled: true, Author: author, Tags: tags, CommentsEnabled: true,
			CommentsDefaultStatus: models.CommentStatusModerate,
		}
		require.NoError(t, posts.Create(t.Context(), p))
		return p
	}
	b.first = mk("First", b.alice, *b.golang)
	b.second = mk("Second", b.bob, *b.golang, *b.sql)
	b.third = mk("Third", b.alice)

	comments := NewCommentRepository(db)
	for _, c := range []*models.Comment{
		{PostID: b.first.ID, Name: "r1", Message: "hi", Status: models.CommentStatusModerate},
		{PostID: b.first.ID, Name: "r2", Message: "hey", Status: models.CommentStatusModerate},
		{PostID: b.second.ID, Name: "r3", Message: "ok", Status: models.CommentStatusValid},
	} {
		require.NoError(t, comments.Create(t.Context(), c))
	}
	b.openComments = 2
	return b
}

func closeAt(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}
