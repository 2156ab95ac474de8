package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "threadline/internal/log"
	"threadline/internal/services"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type orderRequest struct {
	services.ShippingInfo
	UserID   string               `json:"userID"`
	Products []services.LineInput `json:"products"`
	Amount   *decimal.Decimal     `json:"amount"`
}

// Create handles POST /orders: an explicit line list is frozen into an order
// snapshot. Guests may order; a logged-in session overrides any body userID.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var body orderRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	userID := body.UserID
	if u := currentUser(c); u != nil {
		userID = u.ID
	}
	id, amount, err := h.Orders.Build(c.UserContext(), body.Products, body.ShippingInfo, userID)
	if err != nil {
		return fail(c, "orders.create", err)
	}
	// Client-sent totals are advisory only. Log a mismatch, charge the
	// server-side amount.
	if body.Amount != nil && !body.Amount.Equal(amount) {
		applog.Audit(c, "orders.amount_mismatch", map[string]any{
			"order_id": id, "client": body.Amount.String(), "server": amount.String(),
		})
	}
	applog.Audit(c, "orders.create", map[string]any{"order_id": id, "amount": amount.String()})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok", "message": "order has been created",
		"orderID": id, "amount": amount,
	})
}

// Checkout handles POST /checkout: the current user's cart becomes an order,
// stock decrements and cart clearing included, all-or-nothing.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var ship services.ShippingInfo
	if err := c.BodyParser(&ship); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	u := currentUser(c)
	id, amount, err := h.Orders.Checkout(c.UserContext(), u.ID, ship)
	if err != nil {
		return fail(c, "checkout", err)
	}
	applog.Audit(c, "checkout", map[string]any{"order_id": id, "amount": amount.String()})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok", "message": "order has been created",
		"orderID": id, "amount": amount,
	})
}

// PaymentPreview handles GET /checkout/payment: cart lines and total at live
// prices, nothing written.
func (h *OrderHandler) PaymentPreview(c *fiber.Ctx) error {
	u := currentUser(c)
	lines, total, err := h.Orders.PaymentPreview(c.UserContext(), u.ID)
	if err != nil {
		return fail(c, "checkout.preview", err)
	}
	return ok(c, fiber.Map{"finalOrder": fiber.Map{"products": lines, "amount": total}})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, lines, err := h.Orders.Get(c.UserContext(), c.Params("id"), currentUser(c))
	if err != nil {
		return fail(c, "orders.get", err)
	}
	return ok(c, fiber.Map{"order": o, "products": lines})
}

func (h *OrderHandler) ListByUser(c *fiber.Ctx) error {
	orders, err := h.Orders.ListByUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "orders.list_user", err)
	}
	return ok(c, fiber.Map{"orders": orders})
}

// List handles GET /orders (admin), optionally filtered by ?status=.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.List(c.UserContext(), c.Query("status"), c.QueryInt("limit", 100))
	if err != nil {
		return fail(c, "orders.list", err)
	}
	return ok(c, fiber.Map{"orders": orders})
}

// UpdateStatus handles PUT /orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	id := c.Params("id")
	if err := h.Orders.UpdateStatus(c.UserContext(), id, body.Status); err != nil {
		return fail(c, "orders.update_status", err)
	}
	applog.Audit(c, "orders.update_status", map[string]any{"order_id": id, "to": body.Status})
	return ok(c, fiber.Map{"message": "order status updated"})
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Orders.Delete(c.UserContext(), id); err != nil {
		return fail(c, "orders.delete", err)
	}
	applog.Audit(c, "orders.delete", map[string]any{"order_id": id})
	return ok(c, fiber.Map{"message": "order deleted"})
}

// Stats handles GET /orders/stats: monthly sales totals for the admin
// dashboard.
func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	rows, err := h.Orders.MonthlySales(c.UserContext())
	if err != nil {
		return fail(c, "orders.stats", err)
	}
	return ok(c, fiber.Map{"income": rows})
}
