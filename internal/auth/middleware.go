package auth

import (
	"strings"

	"hostadmin-backend/internal/cache"
	"hostadmin-backend/internal/config"
	"hostadmin-backend/internal/database"
	"hostadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxUserKey = "current_user"

// JWTMiddleware verifies the bearer token, resolves the user with roles and
// permissions, and rejects missing or inactive accounts. The resolved user is
// stored in locals for downstream handlers.
func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, ok := bearerToken(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
		}

		claims, err := ParseAccessToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		user, err := resolveUser(c, claims.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "Account is inactive")
		}

		c.Locals(CtxUserKey, user)
		return c.Next()
	}
}

// OptionalJWTMiddleware resolves the caller when a valid bearer token is
// present and treats everything else as anonymous. Used by endpoints like
// registration, which are open until the first master admin exists.
func OptionalJWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}

		claims, err := ParseAccessToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return c.Next()
		}

		user, err := resolveUser(c, claims.UserID)
		if err != nil || !user.IsActive {
			return c.Next()
		}

		c.Locals(CtxUserKey, user)
		return c.Next()
	}
}

func RequireUserType(allowed ...models.UserType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
		}

		for _, t := range allowed {
			if user.UserType == t {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You do not have permission for this operation")
	}
}

// RequirePermission gates a route on a permission code carried by one of the
// caller's roles.
func RequirePermission(code string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
		}
		if !user.HasPermission(code) {
			return fiber.NewError(fiber.StatusForbidden, "You do not have permission for this operation")
		}
		return c.Next()
	}
}

// CurrentUser returns the resolved user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(CtxUserKey).(*models.User)
	return user
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func resolveUser(c *fiber.Ctx, id uint) (*models.User, error) {
	if user, ok := cache.GetUser(c.Context(), id); ok {
		return user, nil
	}

	var user models.User
	if err := database.DB.
		Preload("Roles.Permissions").
		Preload("Property").
		First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}

	cache.SetUser(c.Context(), &user)
	return &user, nil
}
