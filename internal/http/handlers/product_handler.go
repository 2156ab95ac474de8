package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "threadline/internal/log"
	"threadline/internal/services"
	"threadline/internal/variant"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Stock   *services.StockService
}

// List handles GET /products with optional q, category, gender, discounted
// and page filters.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.Search(c.UserContext(),
		c.Query("q"), c.Query("category"), c.Query("gender"),
		c.Query("discounted") == "true",
		c.QueryInt("page", 1), c.QueryInt("pageSize", 24))
	if err != nil {
		return fail(c, "products.list", err)
	}
	return ok(c, fiber.Map{"products": products})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	view, err := h.Catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "products.get", err)
	}
	return ok(c, fiber.Map{"product": view})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	id, err := h.Catalog.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "products.create", err)
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": id})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok", "productID": id,
	})
}

// productPatch mirrors ProductInput with pointer fields so absent keys are
// distinguishable from zero values.
type productPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Gender      *string          `json:"gender"`
	DiscountPct *int             `json:"discountPercentage"`
	InStock     *bool            `json:"inStock"`
	SCQ         []string         `json:"SCQ"`
}

func (p productPatch) changes() map[string]interface{} {
	m := map[string]interface{}{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Price != nil {
		m["price"] = *p.Price
	}
	if p.Category != nil {
		m["category"] = *p.Category
	}
	if p.Gender != nil {
		m["gender"] = *p.Gender
	}
	if p.DiscountPct != nil {
		m["discount_pct"] = *p.DiscountPct
	}
	if p.InStock != nil {
		m["in_stock"] = *p.InStock
	}
	return m
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var patch productPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	id := c.Params("id")
	if err := h.Catalog.Update(c.UserContext(), id, patch.changes(), patch.SCQ); err != nil {
		return fail(c, "products.update", err)
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": id})
	return ok(c, fiber.Map{"message": "product updated"})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.Delete(c.UserContext(), id); err != nil {
		return fail(c, "products.delete", err)
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return ok(c, fiber.Map{"message": "product deleted"})
}

// CheckQuantity handles POST /products/check-quantity: a cart key in, the
// variant's remaining stock out.
func (h *ProductHandler) CheckQuantity(c *fiber.Ctx) error {
	var body struct {
		UniqueCartKey string `json:"uniqueCartKey"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	qty, err := h.Stock.QuantityForKey(c.UserContext(), body.UniqueCartKey)
	if err != nil {
		return fail(c, "products.check_quantity", err)
	}
	return ok(c, fiber.Map{"quantity": qty})
}

// UpdateQuantity handles PUT /products/update-quantity: a comma-joined batch
// of "productID-size-color-quantity" lines, decremented all-or-nothing.
func (h *ProductHandler) UpdateQuantity(c *fiber.Ctx) error {
	var body struct {
		ProductDetails string `json:"productDetails"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "malformed request body",
		})
	}
	lines, err := variant.ParseBatch(body.ProductDetails)
	if err != nil {
		return fail(c, "products.update_quantity", err)
	}
	if err := h.Stock.DecrementBatch(c.UserContext(), lines); err != nil {
		return fail(c, "products.update_quantity", err)
	}
	applog.Audit(c, "products.update_quantity", map[string]any{"lines": len(lines)})
	return ok(c, fiber.Map{"message": "product quantities updated successfully"})
}
