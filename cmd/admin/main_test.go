package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"newsdesk/internal/database"
	"newsdesk/internal/models"
	"newsdesk/internal/repository"
	"newsdesk/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupUsers(t *testing.T) *service.UserManager {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return service.NewUserManager(repository.NewUserRepository(db)).WithCost(bcrypt.MinCost)
}

func TestRun_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	users := setupUsers(t)
	var out bytes.Buffer

	require.NoError(t, run(ctx, users, []string{"create-admin", "chief", "chief@example.com", "Chief-Editor1"}, &out))
	assert.Contains(t, out.String(), "Created admin chief (ID: 1)")

	out.Reset()
	require.NoError(t, run(ctx, users, []string{"list-admins"}, &out))
	assert.Contains(t, out.String(), "Username: chief")

	require.NoError(t, run(ctx, users, []string{"demote", "1"}, &out))
	out.Reset()
	require.NoError(t, run(ctx, users, []string{"list-admins"}, &out))
	assert.Contains(t, out.String(), "No admins found")

	require.NoError(t, run(ctx, users, []string{"promote", "1"}, &out))
	require.NoError(t, run(ctx, users, []string{"set-password", "1", "Brand-New-Pass2"}, &out))

	user, err := users.Authenticate(ctx, "chief", "Brand-New-Pass2")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	users := setupUsers(t)
	var out bytes.Buffer

	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{name: "no command", args: nil, usage: true},
		{name: "unknown command", args: []string{"frobnicate"}, usage: true},
		{name: "missing id", args: []string{"promote"}, usage: true},
		{name: "bad id", args: []string{"promote", "abc"}},
		{name: "zero id", args: []string{"demote", "0"}},
		{name: "unknown user", args: []string{"promote", "42"}},
		{name: "weak password", args: []string{"create-admin", "chief", "chief@example.com", "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(ctx, users, tt.args, &out)
			require.Error(t, err)
			assert.Equal(t, tt.usage, errors.Is(err, errUsage))
		})
	}
}

func TestRun_UnknownUserIsNotFound(t *testing.T) {
	err := run(context.Background(), setupUsers(t), []string{"set-password", "7", "Brand-New-Pass2"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, 404, models.StatusFor(err))
}
