package server

import "github.com/gofiber/fiber/v2"

// FeatureFlagsResponse lists configured flag names and their value for the caller.
type FeatureFlagsResponse struct {
	Configured []string        `json:"configured"`
	Evaluated  map[string]bool `json:"evaluated"`
}

// GetFeatureFlags handles GET /api/feature-flags
// @Summary Evaluated feature flags
// @Tags system
// @Produce json
// @Success 200 {object} FeatureFlagsResponse
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	var userID uint
	if u := caller(c); u != nil {
		userID = u.ID
	}
	configured := s.featureFlags.Names()
	if configured == nil {
		configured = []string{}
	}
	return c.JSON(FeatureFlagsResponse{
		Configured: configured,
		Evaluated:  s.featureFlags.Snapshot(userID),
	})
}
