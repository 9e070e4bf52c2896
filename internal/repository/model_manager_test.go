package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"newsdesk/internal/admin"
	"newsdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestManager(t *testing.T) (*ModelManager, *gorm.DB, *blog) {
	t.Helper()
	db := setupSQLite(t)
	b := seedBlog(t, db)
	return NewModelManager(db, slog.New(slog.DiscardHandler)), db, b
}

func postForm() *admin.FormMapper {
	m := admin.NewFormMapper()
	m.With("General").Add("enabled").Add("author").Add("title").Add("abstract").Add("content").End().
		With("Tags").Add("tags").End().
		With("Options").Add("commentsCloseAt").Add("commentsEnabled").Add("commentsDefaultStatus").End()
	return m
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestModelManager_BindCreateFind(t *testing.T) {
	mm, _, b := newTestManager(t)
	ctx := context.Background()

	post := &models.Post{}
	err := mm.Bind(ctx, post, postForm(), admin.FormData{
		"title":                 "Fresh",
		"abstract":              "Short",
		"content":               "Long",
		"enabled":               "1",
		"author":                map[string]any{"id": float64(b.bob.ID), "plainPassword": "N3w-Secret-Pass"},
		"tags":                  []any{float64(b.sql.ID), float64(b.golang.ID)},
		"commentsCloseAt":       "2030-01-02T15:04:05Z",
		"commentsEnabled":       true,
		"commentsDefaultStatus": float64(models.CommentStatusValid),
		"ignored":               "not a form field",
	})
	require.NoError(t, err)

	assert.True(t, post.Enabled)
	require.NotNil(t, post.Author)
	assert.Equal(t, "bob", post.Author.Username)
	assert.Equal(t, "N3w-Secret-Pass", post.Author.PlainPassword, "nested fields reach the referenced row")
	require.NotNil(t, post.AuthorID)
	assert.Equal(t, b.bob.ID, *post.AuthorID)
	assert.Len(t, post.Tags, 2)
	assert.Equal(t, closeAt("2030-01-02T15:04:05Z").UTC(), post.CommentsCloseAt.UTC())
	assert.Equal(t, models.CommentStatusValid, post.CommentsDefaultStatus)

	require.NoError(t, mm.Create(ctx, post))
	require.NotZero(t, post.ID)
	assert.Equal(t, post.ID, mm.Identifier(post))

	loaded := &models.Post{}
	require.NoError(t, mm.Find(ctx, loaded, "4"))
	assert.Equal(t, "Fresh", loaded.Title)
	require.NotNil(t, loaded.Author)
	assert.Equal(t, "bob", loaded.Author.Username)
	assert.Len(t, loaded.Tags, 2)
	assert.Empty(t, loaded.Comments, "has-many rows are not loaded")

	var bob models.User
	require.NoError(t, mm.db.First(&bob, b.bob.ID).Error)
	assert.Equal(t, "x", bob.Password, "the referenced author row is not rewritten")
}

func TestModelManager_UpdateReplacesLinks(t *testing.T) {
	mm, db, b := newTestManager(t)
	ctx := context.Background()

	post := &models.Post{}
	require.NoError(t, mm.Find(ctx, post, "2"))
	require.Len(t, post.Tags, 2)

	require.NoError(t, mm.Bind(ctx, post, postForm(), admin.FormData{
		"title":           "Second, edited",
		"tags":            "",
		"author":          float64(b.alice.ID),
		"commentsCloseAt": "",
	}))
	require.NoError(t, mm.Update(ctx, post))

	reloaded := &models.Post{}
	require.NoError(t, mm.Find(ctx, reloaded, "2"))
	assert.Equal(t, "Second, edited", reloaded.Title)
	assert.Empty(t, reloaded.Tags)
	assert.Equal(t, "alice", reloaded.Author.Username)
	assert.Nil(t, reloaded.CommentsCloseAt)

	var tags int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.EqualValues(t, 2, tags, "unlinking keeps the tags")
}

func TestModelManager_Delete(t *testing.T) {
	mm, db, b := newTestManager(t)
	ctx := context.Background()

	post := &models.Post{}
	require.NoError(t, mm.Find(ctx, post, "1"))
	require.NoError(t, mm.Delete(ctx, post))

	var comments, links int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", b.first.ID).Count(&comments).Error)
	require.NoError(t, db.Table("post_tags").Where("post_id = ?", b.first.ID).Count(&links).Error)
	assert.Zero(t, comments)
	assert.Zero(t, links)

	err := mm.Find(ctx, &models.Post{}, "1")
	assertCode(t, err, models.CodeNotFound)
}

func TestModelManager_BindErrors(t *testing.T) {
	mm, _, _ := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		name string
		data admin.FormData
	}{
		{"unknown author", admin.FormData{"author": float64(99)}},
		{"unknown tag", admin.FormData{"tags": []any{float64(1), float64(42)}}},
		{"bad tag id", admin.FormData{"tags": "1,x"}},
		{"bad date", admin.FormData{"commentsCloseAt": "tomorrow"}},
		{"bad status", admin.FormData{"commentsDefaultStatus": "moderate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mm.Bind(ctx, &models.Post{}, postForm(), tt.data)
			assertCode(t, err, models.CodeValidation)
		})
	}

	post := &models.Post{Author: &models.User{ID: 1}}
	require.NoError(t, mm.Bind(ctx, post, postForm(), admin.FormData{"author": nil}))
	assert.Nil(t, post.Author)
	assert.Nil(t, post.AuthorID)
}

func TestModelManager_Find(t *testing.T) {
	mm, _, _ := newTestManager(t)
	ctx := context.Background()

	assertCode(t, mm.Find(ctx, &models.Post{}, "abc"), models.CodeNotFound)
	assertCode(t, mm.Find(ctx, &models.Post{}, "99"), models.CodeNotFound)

	c := &models.Comment{}
	require.NoError(t, mm.Find(ctx, c, "1"))
	require.NotNil(t, c.Post, "belongs-to is loaded")
	assert.Equal(t, "First", c.Post.Title)
}

func TestModelManager_GuessType(t *testing.T) {
	mm := NewModelManager(setupSQLite(t), slog.New(slog.DiscardHandler))
	post := &models.Post{}

	tests := map[string]string{
		"title":                 admin.TypeString,
		"abstract":              admin.TypeText,
		"enabled":               admin.TypeBoolean,
		"author":                admin.TypeModel,
		"tags":                  admin.TypeManyToMany,
		"comments":              admin.TypeManyToMany,
		"commentsCloseAt":       admin.TypeDatetime,
		"commentsDefaultStatus": admin.TypeInteger,
		"nope":                  "",
	}
	for field, want := range tests {
		assert.Equal(t, want, mm.GuessType(post, field), field)
	}
	assert.Equal(t, admin.TypeModel, mm.GuessType(&models.Comment{}, "post"))
}

func TestModelManager_Choices(t *testing.T) {
	mm, _, b := newTestManager(t)
	ctx := context.Background()

	choices, err := mm.Choices(ctx, &models.Post{}, "author")
	require.NoError(t, err)
	assert.Equal(t, []admin.Choice{
		{Value: b.alice.ID, Label: "alice"},
		{Value: b.bob.ID, Label: "bob"},
	}, choices)

	choices, err = mm.Choices(ctx, &models.Post{}, "tags")
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.Equal(t, "Go", choices[0].Label)

	_, err = mm.Choices(ctx, &models.Post{}, "title")
	assertCode(t, err, models.CodeValidation)
}

func TestModelManager_CreateQueryUsesDatagridFilters(t *testing.T) {
	mm, _, b := newTestManager(t)
	ctx := context.Background()

	dm := admin.NewDatagridMapper()
	dm.Add("title").Add("enabled", admin.WithType(admin.TypeBoolean)).Add("tags", admin.WithType(admin.TypeManyToMany))
	grid, err := admin.NewDatagrid(dm)
	require.NoError(t, err)

	q := mm.CreateQuery(ctx, &models.Post{}, "o")
	applied, err := grid.Apply(q, mapValues{
		admin.FilterKey("title"): "ond",
		admin.FilterKey("tags"):  "2",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "tags"}, applied)

	var posts []*models.Post
	total, err := q.Execute(ctx, &posts, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, b.second.ID, posts[0].ID)
}

type mapValues map[string]string

func (v mapValues) Get(key string) string { return v[key] }

func TestCoerce(t *testing.T) {
	v, err := coerce(timeType, "2030-01-02T15:04:05Z")
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, v)

	v, err = coerce(timeType, " ")
	require.NoError(t, err)
	assert.Nil(t, v)

	ids, err := toIDs([]any{float64(3), "1", map[string]any{"id": float64(3)}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, ids)
}

func TestIDValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want uint64
		ok   bool
	}{
		{"string", " 12 ", 12, true},
		{"json float", float64(1000000), 1000000, true},
		{"large json float", float64(1 << 40), 1 << 40, true},
		{"json number", json.Number("2500000"), 2500000, true},
		{"int", 7, 7, true},
		{"uint64", uint64(9), 9, true},
		{"zero", float64(0), 0, false},
		{"fraction", 1.5, 0, false},
		{"negative", -3, 0, false},
		{"exponent string", "1e+06", 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idValue(tt.in)
			if !tt.ok {
				assertCode(t, err, models.CodeValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModelManager_BindLargeIDs(t *testing.T) {
	mm, db, _ := newTestManager(t)
	ctx := context.Background()

	author := &models.User{ID: 1000000, Username: "million", Email: "million@example.com", Password: "x", Enabled: true}
	require.NoError(t, db.Create(author).Error)
	tag := &models.Tag{ID: 2000000, Name: "Scale", Slug: "scale", Enabled: true}
	require.NoError(t, db.Create(tag).Error)

	post := &models.Post{}
	require.NoError(t, mm.Bind(ctx, post, postForm(), admin.FormData{
		"title":    "Big ids",
		"abstract": "a",
		"content":  "c",
		"author":   float64(1000000),
		"tags":     []any{float64(2000000), json.Number("2000000")},
	}))
	require.NotNil(t, post.AuthorID)
	assert.EqualValues(t, 1000000, *post.AuthorID)
	assert.Equal(t, "million", post.Author.Username)
	require.Len(t, post.Tags, 1)
	assert.EqualValues(t, 2000000, post.Tags[0].ID)
}

func TestModelManager_TransactionSharesRepositories(t *testing.T) {
	mm, db, b := newTestManager(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	rollback := errors.New("rollback")
	err := mm.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, users.UpdatePassword(ctx, b.bob.ID, "discarded"))
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	var bob models.User
	require.NoError(t, db.First(&bob, b.bob.ID).Error)
	assert.Equal(t, "x", bob.Password)

	require.NoError(t, mm.Transaction(ctx, func(ctx context.Context) error {
		if err := users.UpdatePassword(ctx, b.bob.ID, "kept"); err != nil {
			return err
		}
		post := &models.Post{}
		if err := mm.Find(ctx, post, "3"); err != nil {
			return err
		}
		post.Title = "Third, edited"
		return mm.Update(ctx, post)
	}))
	require.NoError(t, db.First(&bob, b.bob.ID).Error)
	assert.Equal(t, "kept", bob.Password)
	var third models.Post
	require.NoError(t, db.First(&third, b.third.ID).Error)
	assert.Equal(t, "Third, edited", third.Title)
}
