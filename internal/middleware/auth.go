package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

const claimsContextKey = "currentClaims"

// Identity is the authenticated caller loaded into the request context.
type Identity struct {
	UserID uuid.UUID
	Phone  string
	Role   string
}

// AuthMiddleware validates bearer tokens and loads the caller identity
// into context. Missing, malformed and expired tokens all map to the
// same 401; the client is never told which it was.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals(claimsContextKey, Identity{
			UserID: userID,
			Phone:  claims.Phone,
			Role:   claims.Role,
		})
		return c.Next()
	}
}

// RequireRole gates a route to the listed roles. Admin is not implicitly
// included; list it where admin access is intended.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		for _, role := range roles {
			if identity.Role == role {
				return c.Next()
			}
		}

		return fiber.NewError(fiber.StatusForbidden, "insufficient permissions")
	}
}

// CurrentIdentity extracts the authenticated identity from context.
func CurrentIdentity(c *fiber.Ctx) (Identity, bool) {
	value := c.Locals(claimsContextKey)
	if value == nil {
		return Identity{}, false
	}

	if identity, ok := value.(Identity); ok {
		return identity, true
	}

	return Identity{}, false
}

// IsAdmin reports whether the caller has the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	identity, ok := CurrentIdentity(c)
	return ok && identity.Role == models.RoleAdmin
}
