package server

import (
	"log/slog"
	"time"

	"newsdesk/internal/middleware"
	"newsdesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /auth/login. Only enabled admins get a token.
// @Summary Admin login
// @Description Authenticate an admin by username or email and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{login=string,password=string} true "Login credentials"
// @Success 200 {object} object{token=string,expiresAt=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Login == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Login and password are required"))
	}

	user, err := s.users.Authenticate(c.UserContext(), req.Login, req.Password)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if !user.IsAdmin {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Admin access required"))
	}

	token, _, err := middleware.IssueToken(s.config.JWTSecret, user.ID, tokenTTL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	s.logger.InfoContext(c.UserContext(), "admin logged in", slog.Uint64("user_id", uint64(user.ID)))
	return c.JSON(fiber.Map{
		"token":     token,
		"expiresAt": time.Now().Add(tokenTTL),
		"user":      user,
	})
}

// Logout handles POST /auth/logout by revoking the presented token.
// @Summary Admin logout
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	if err := middleware.RevokeToken(c.UserContext(), s.redis, jti, tokenTTL); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /admin/me. It returns the signed-in editor and the
// feature flags evaluated for them.
// @Summary Current editor
// @Tags admin
// @Produce json
// @Success 200 {object} object{user=models.User,features=map[string]bool}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	if user == nil {
		return s.respondError(c, models.NewUnauthorizedError("Authorization required"))
	}
	return c.JSON(fiber.Map{
		"user":     user,
		"features": s.flags.Snapshot(user.ID),
	})
}
