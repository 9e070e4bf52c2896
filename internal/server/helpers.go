package server

import (
	"errors"
	"log/slog"

	"newsdesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondError writes err with the status its AppError code maps to.
// Anything that is not an AppError is logged and reported as an internal
// error without its details.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		s.logger.ErrorContext(c.UserContext(), "admin request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}
