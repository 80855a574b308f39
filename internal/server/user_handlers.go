package server

import (
	"strings"

	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users?q=
// @Summary Search users
// @Description Case-insensitive username substring search; a blank query lists everyone
// @Tags users
// @Produce json
// @Param q query string false "Username fragment"
// @Param limit query int false "Maximum results; every match when omitted"
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	users, err := s.identity.SearchUsers(c.UserContext(), q, max(c.QueryInt("limit", 0), 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetMe handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	return c.JSON(caller(c))
}

// UpdateMe handles PUT /api/users/me
// @Summary Edit profile
// @Description Requires the current password
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{password=string,username=string,email=string,image_url=string,header_image_url=string,bio=string,location=string} true "Profile update"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
		service.ProfileUpdate
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := s.identity.EditProfile(c.UserContext(), caller(c), req.Password, req.ProfileUpdate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteMe handles DELETE /api/users/me
// @Summary Delete account
// @Description Deletes the account with its messages, likes and follows, then ends the session.
// @Description A failed delete leaves the session usable.
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	if err := s.identity.DeleteUser(c.UserContext(), caller(c)); err != nil {
		return respondError(c, err)
	}
	token, _ := c.Locals(localToken).(string)
	if err := s.sessions.Logout(c.UserContext(), token); err != nil {
		return respondError(c, err)
	}
	s.clearSessionCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserProfile handles GET /api/users/:id
// @Summary User profile
// @Description User with message, following, follower and like counts. With a session, is_following tells whether the caller follows them.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} service.ProfileView
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.identity.Profile(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if me := caller(c); me != nil {
		following, err := s.graph.IsFollowing(c.UserContext(), me.ID, id)
		if err != nil {
			return respondError(c, err)
		}
		view.IsFollowing = &following
	}
	return c.JSON(view)
}

// GetUserMessages handles GET /api/users/:id/messages
// @Summary Messages by user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Maximum results (capped at 100)"
// @Success 200 {array} models.Message
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/messages [get]
func (s *Server) GetUserMessages(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	msgs, err := s.messages.ListByUser(c.UserContext(), id, parseLimit(c, maxListLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

// GetFollowing handles GET /api/users/:id/following
// @Summary Users followed by a user
// @Tags graph
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.graph.Following(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary Followers of a user
// @Tags graph
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.graph.Followers(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow a user
// @Tags graph
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.graph.Follow(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowUser handles DELETE /api/users/:id/follow
// @Summary Unfollow a user
// @Tags graph
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Router /users/{id}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.graph.Unfollow(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
