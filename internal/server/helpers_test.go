package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"newsdesk/internal/cache"
	"newsdesk/internal/config"
	"newsdesk/internal/database"
	"newsdesk/internal/middleware"
	"newsdesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret     = "test-secret-key-12345678901234567890123456789012"
	strongPassword = "Correct-Horse-9"
)

type testEnv struct {
	srv    *Server
	app    *fiber.App
	db     *gorm.DB
	mr     *miniredis.Miniredis
	editor *models.User
	reader *models.User
	open   *models.Post
	closed *models.Post
}

// newTestEnv serves the back office from an in-memory database and a
// miniredis cache. The editor is an admin, the reader is not. The open post
// has one comment awaiting moderation; the closed one accepts no comments.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:      testSecret,
		Port:           "0",
		DBDriver:       config.DriverSQLite,
		DBPath:         ":memory:",
		AllowedOrigins: "*",
		Locale:         "en",
		AdminPageSize:  10,
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	srv.users = srv.users.WithCost(bcrypt.MinCost)
	srv.admins.Posts.SetUserManager(srv.users)

	env := &testEnv{srv: srv, app: srv.NewApp(), db: db, mr: mr}
	ctx := context.Background()
	env.editor, err = srv.users.CreateUser(ctx, "editor", "editor@example.com", strongPassword, true)
	require.NoError(t, err)
	env.reader, err = srv.users.CreateUser(ctx, "reader", "reader@example.com", strongPassword, false)
	require.NoError(t, err)

	mk := func(title string, closeAt *time.Time) *models.Post {
		p := &models.Post{
			Title: title, Abstract: "a", Content: "c", Enabled: true, AuthorID: &env.editor.ID,
			CommentsEnabled: true, CommentsCloseAt: closeAt, CommentsDefaultStatus: models.CommentStatusValid,
		}
		require.NoError(t, db.Omit("Author", "Tags", "Comments").Create(p).Error)
		return p
	}
	past := time.Now().Add(-time.Hour)
	env.open = mk("Open", nil)
	env.closed = mk("Closed", &past)
	require.NoError(t, db.Create(&models.Comment{PostID: env.open.ID, Name: "a", Message: "m", Status: models.CommentStatusModerate}).Error)
	return env
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := middleware.IssueToken(testSecret, user.ID, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends a request and decodes a JSON object response. body is encoded
// as JSON when non-nil.
func (e *testEnv) do(t *testing.T, method, target, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func uitoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
