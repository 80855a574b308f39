package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the session token for browser clients.
const SessionCookieName = "session"

// SessionToken extracts the session token from "Authorization: Bearer <token>",
// falling back to the session cookie. It returns "" when neither is present or
// the header is malformed.
func SessionToken(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return parts[1]
	}
	return c.Cookies(SessionCookieName)
}
