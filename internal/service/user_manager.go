// Package service holds the business logic that sits between handlers and
// repositories.
package service

import (
	"context"
	"errors"
	"strings"

	"newsdesk/internal/models"
	"newsdesk/internal/observability"
	"newsdesk/internal/repository"
	"newsdesk/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserManager owns user credentials: it hashes passwords and checks logins.
type UserManager struct {
	userRepo repository.UserRepository
	cost     int
}

func NewUserManager(userRepo repository.UserRepository) *UserManager {
	return &UserManager{userRepo: userRepo, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy of m hashing with cost. Tests use bcrypt.MinCost.
func (m *UserManager) WithCost(cost int) *UserManager {
	c := *m
	c.cost = cost
	return &c
}

// UpdatePassword hashes user.PlainPassword into user.Password and clears the
// plain text. Users that already exist are persisted. An empty plain password
// leaves the user untouched.
func (m *UserManager) UpdatePassword(ctx context.Context, user *models.User) error {
	if user == nil {
		observability.PasswordUpdates.WithLabelValues("rejected").Inc()
		return models.NewValidationError("user is required")
	}
	if user.PlainPassword == "" {
		observability.PasswordUpdates.WithLabelValues("skipped").Inc()
		return nil
	}
	hash, err := m.hash(user.PlainPassword)
	if err != nil {
		observability.PasswordUpdates.WithLabelValues("rejected").Inc()
		return err
	}
	user.Password = hash
	user.PlainPassword = ""

	if user.ID != 0 {
		if err := m.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
			observability.PasswordUpdates.WithLabelValues("failed").Inc()
			return err
		}
	}
	observability.PasswordUpdates.WithLabelValues("updated").Inc()
	return nil
}

func (m *UserManager) hash(plain string) (string, error) {
	if err := validation.ValidatePassword(plain); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), m.cost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

// CreateUser registers a new enabled account.
func (m *UserManager) CreateUser(ctx context.Context, username, email, plain string, isAdmin bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	hash, err := m.hash(plain)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Enabled:  true,
		IsAdmin:  isAdmin,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := m.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the enabled user matching login (username or email)
// and password. Every mismatch yields the same unauthorized error.
func (m *UserManager) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	invalid := models.NewUnauthorizedError("Invalid credentials")
	user, err := m.userRepo.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Enabled {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, invalid
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// SetAdmin grants or revokes back-office access.
func (m *UserManager) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	return m.userRepo.SetAdmin(ctx, id, isAdmin)
}

func (m *UserManager) ListAdmins(ctx context.Context) ([]models.User, error) {
	return m.userRepo.ListAdmins(ctx)
}

// SetPassword replaces the password of user id.
func (m *UserManager) SetPassword(ctx context.Context, id uint, plain string) error {
	return m.UpdatePassword(ctx, &models.User{ID: id, PlainPassword: plain})
}
