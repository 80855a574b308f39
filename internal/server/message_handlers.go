package server

import (
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// MessageView is a message as seen by one caller. Liked is set only with a session.
type MessageView struct {
	models.Message
	Liked *bool `json:"liked,omitempty"`
}

// PostMessage handles POST /api/messages
// @Summary Post a message
// @Description Text is trimmed and must be 1 to 140 characters
// @Tags messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{text=string} true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Router /messages [post]
func (s *Server) PostMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	msg, err := s.messages.Post(c.UserContext(), caller(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetLikedMessages handles GET /api/messages/liked
// @Summary Messages the caller liked
// @Description Most recently liked first
// @Tags likes
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Message
// @Router /messages/liked [get]
func (s *Server) GetLikedMessages(c *fiber.Ctx) error {
	msgs, err := s.likes.LikedMessages(c.UserContext(), caller(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

// GetMessage handles GET /api/messages/:id
// @Summary Get a message
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} MessageView
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id} [get]
func (s *Server) GetMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	msg, err := s.messages.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	view := MessageView{Message: *msg}
	if me := caller(c); me != nil {
		liked, err := s.likes.IsLiked(c.UserContext(), me.ID, id)
		if err != nil {
			return respondError(c, err)
		}
		view.Liked = &liked
	}
	return c.JSON(view)
}

// DeleteMessage handles DELETE /api/messages/:id
// @Summary Delete a message
// @Description Only the author may delete a message
// @Tags messages
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id} [delete]
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	msg, err := s.messages.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if msg.UserID != caller(c).ID {
		return respondError(c, models.NewForbiddenError("You can only delete your own messages"))
	}

	if err := s.messages.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeMessage handles POST /api/messages/:id/like
// @Summary Like a message
// @Description Liking your own message is forbidden; repeated likes are no-ops
// @Tags likes
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id}/like [post]
func (s *Server) LikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.likes.Like(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnlikeMessage handles DELETE /api/messages/:id/like
// @Summary Remove a like
// @Tags likes
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id}/like [delete]
func (s *Server) UnlikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.likes.Unlike(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
