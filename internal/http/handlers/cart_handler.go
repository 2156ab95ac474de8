package handlers

import (
	"github.com/gofiber/fiber/v2"

	"threadline/internal/domain"
	applog "threadline/internal/log"
	"threadline/internal/services"
)

type CartHandler struct {
	Carts *services.CartService
}

// Get handles GET /carts/:userID. A user with no cart reads as a null cart,
// not an error.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	cart, err := h.Carts.View(c.UserContext(), c.Params("userID"))
	if domain.IsKind(err, domain.KindNotFound) {
		return ok(c, fiber.Map{"cart": nil})
	}
	if err != nil {
		return fail(c, "carts.get", err)
	}
	return ok(c, fiber.Map{"cart": cart})
}

// MergeAdd handles PUT /carts/:userID: incoming lines are folded into the
// cart additively.
func (h *CartHandler) MergeAdd(c *fiber.Ctx) error {
	var body struct {
		Products []services.LineInput `json:"products"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	cart, err := h.Carts.MergeAdd(c.UserContext(), c.Params("userID"), body.Products)
	if err != nil {
		return fail(c, "carts.merge", err)
	}
	applog.Audit(c, "carts.merge", map[string]any{"lines": len(body.Products)})
	return ok(c, fiber.Map{"cart": cart})
}

// SetQuantity handles PATCH /carts/:userID: quantity zero removes the line,
// any other value overwrites it.
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var body struct {
		UniqueCartKey string `json:"uniqueCartKey"`
		Quantity      int    `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	line, err := h.Carts.SetOrRemove(c.UserContext(), c.Params("userID"), body.UniqueCartKey, body.Quantity)
	if err != nil {
		return fail(c, "carts.set_quantity", err)
	}
	if line == nil {
		return ok(c, fiber.Map{"message": "product removed from the cart"})
	}
	return ok(c, fiber.Map{"line": line})
}

// Clear handles POST /carts/clear for the current user.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	u := currentUser(c)
	if err := h.Carts.Clear(c.UserContext(), u.ID); err != nil {
		return fail(c, "carts.clear", err)
	}
	applog.Audit(c, "carts.clear", nil)
	return ok(c, fiber.Map{"message": "cart cleared"})
}

// Delete handles DELETE /carts/:userID: the cart entity itself is dropped.
func (h *CartHandler) Delete(c *fiber.Ctx) error {
	if err := h.Carts.Delete(c.UserContext(), c.Params("userID")); err != nil {
		return fail(c, "carts.delete", err)
	}
	applog.Audit(c, "carts.delete", map[string]any{"user_id": c.Params("userID")})
	return ok(c, fiber.Map{"message": "cart deleted"})
}
