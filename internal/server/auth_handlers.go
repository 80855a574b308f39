package server

import (
	"time"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.sessions.TTL()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// startSession logs user in and writes the token as both body and cookie.
func (s *Server) startSession(c *fiber.Ctx, status int, user *models.User) error {
	token, err := s.sessions.Login(c.UserContext(), user)
	if err != nil {
		return respondError(c, err)
	}
	s.setSessionCookie(c, token)
	return c.Status(status).JSON(AuthResponse{Token: token, User: user})
}

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new account and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := s.identity.Signup(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return s.startSession(c, fiber.StatusCreated, user)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Check credentials and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := s.identity.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	return s.startSession(c, fiber.StatusOK, user)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description End the current session
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(localToken).(string)
	if err := s.sessions.Logout(c.UserContext(), token); err != nil {
		return respondError(c, err)
	}
	s.clearSessionCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}
