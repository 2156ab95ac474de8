package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"threadline/internal/domain"
	applog "threadline/internal/log"
	"threadline/internal/services"
)

// ensureSID guarantees a session cookie so carts and logins have a stable
// key.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sid
}

// AttachUser resolves the session cookie to a user for downstream handlers.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": "error", "message": "authentication required",
			})
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil || u.Role != "ADMIN" {
			applog.Security(c, "access.denied.admin", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status": "error", "message": "access denied",
			})
		}
		return c.Next()
	}
}

// RequireSelfOrAdmin lets a user act on their own resource (path param
// carries the user id) and admins act on anyone's.
func RequireSelfOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": "error", "message": "authentication required",
			})
		}
		if u.Role != "ADMIN" && c.Params(param) != u.ID {
			applog.Security(c, "access.denied.owner", map[string]any{"param": c.Params(param)})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status": "error", "message": "access denied",
			})
		}
		return c.Next()
	}
}
