package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Data-Dreamersambit/Audio-Player/internal/utils"
)

const (
	// TokenCookie is the session cookie set on signup/login.
	TokenCookie = "token"
	// UserIDKey is where the resolved user id lands in c.Locals.
	UserIDKey = "userID"
)

// RequireAuth resolves the authenticated user id from the session
// cookie or a Bearer header. Everything below this middleware receives
// the id explicitly and never reads ambient auth state.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(TokenCookie)
		if token == "" {
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if token == "" {
			return utils.JSONError(c, fiber.StatusUnauthorized, "you must be logged in")
		}

		claims, err := utils.ParseToken(token, secret)
		if err != nil {
			return utils.JSONError(c, fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

// UserID returns the id resolved by RequireAuth, empty when the route
// is unauthenticated.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(UserIDKey).(string); ok {
		return v
	}
	return ""
}
