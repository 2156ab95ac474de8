package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "threadline/internal/log"
	"threadline/internal/services"
	"threadline/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	email, okEmail := validate.Email(body.Email)
	if !okEmail || !validate.Password(body.Password) {
		applog.Security(c, "auth.login.reject", map[string]any{"email": body.Email})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid email or password",
		})
	}

	sid := ensureSID(c)
	u, err := h.Auth.Login(c.UserContext(), sid, email, body.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return fail(c, "auth.login", err)
	}
	applog.Audit(c, "auth.login", map[string]any{"user_id": u.ID})
	return ok(c, fiber.Map{"user": fiber.Map{
		"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role,
	}})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			return fail(c, "auth.logout", err)
		}
	}
	return ok(c, fiber.Map{"message": "logged out"})
}
