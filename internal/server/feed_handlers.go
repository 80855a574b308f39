package server

import "github.com/gofiber/fiber/v2"

// GetFeed handles GET /api/feed
// @Summary Home timeline
// @Description Newest 100 messages by the caller and the users they follow. Anonymous callers get an empty list.
// @Tags feed
// @Produce json
// @Success 200 {array} models.Message
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	msgs, err := s.feed.BuildFeed(c.UserContext(), caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}
