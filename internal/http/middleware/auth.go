package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"docflow/internal/model"
)

const (
	// UserIDLocalKey is the key under which the authenticated user's id is stored.
	UserIDLocalKey = "user_id"
	// UserRoleLocalKey is the key under which the authenticated user's role is stored.
	UserRoleLocalKey = "user_role"
)

// Auth verifies an HS256 bearer token and stores the caller's id and role
// in context locals. Token issuance belongs to the external identity
// service; this middleware only resolves who is calling.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "token has no subject")
		}
		role, _ := claims["role"].(string)

		c.Locals(UserIDLocalKey, sub)
		c.Locals(UserRoleLocalKey, role)

		return c.Next()
	}
}

// RequireRole rejects callers whose token role does not match.
func RequireRole(role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, _ := c.Locals(UserRoleLocalKey).(string)
		if got != string(role) {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
