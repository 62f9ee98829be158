package server

import (
	"errors"
	"strings"

	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	localUser   = "user"
	localUserID = "userID"
)

const unauthenticatedMessage = "Invalid or missing authentication token."

// AuthRequired resolves the Authorization token to the current user before the handler runs.
// Accepts "Token <key>" and "Bearer <key>".
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			middleware.AuthFailures.WithLabelValues("missing").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(unauthenticatedMessage))
		}

		user, err := s.tokenService.ResolveCurrentUser(c.UserContext(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenMalformed):
				middleware.AuthFailures.WithLabelValues("malformed").Inc()
			case errors.Is(err, service.ErrTokenNotFound):
				middleware.AuthFailures.WithLabelValues("unknown").Inc()
			default:
				return respondServiceError(c, err)
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(unauthenticatedMessage))
		}

		c.Locals(localUser, user)
		c.Locals(localUserID, user.ID)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
		return c.Next()
	}
}

func extractToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// currentUser returns the user stored by AuthRequired.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}
