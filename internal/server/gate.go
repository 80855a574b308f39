package server

import (
	"warbler/internal/middleware"
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	localUser   = "user"
	localUserID = "userID"
	localToken  = "sessionToken"
)

// resolveCaller looks up the session behind the request and, when it resolves,
// stores the caller in locals and the user ID in the request context.
func (s *Server) resolveCaller(c *fiber.Ctx) (*models.User, error) {
	token := middleware.SessionToken(c)
	user, err := s.sessions.ResolveCaller(c.UserContext(), token)
	if err != nil || user == nil {
		return nil, err
	}

	c.Locals(localUser, user)
	c.Locals(localUserID, user.ID)
	c.Locals(localToken, token)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
	return user, nil
}

// SessionRequired rejects requests that carry no valid session with 401.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.resolveCaller(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if user == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}
		return c.Next()
	}
}

// SessionOptional resolves the caller when possible and never rejects.
func (s *Server) SessionOptional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := s.resolveCaller(c); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "optional session lookup failed", "error", err)
		}
		return c.Next()
	}
}

// caller returns the user resolved by the session gate, or nil.
func caller(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}
