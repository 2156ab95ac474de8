package handlers

import (
	"github.com/gofiber/fiber/v2"

	"threadline/internal/domain"
	applog "threadline/internal/log"
)

func kindStatus(k domain.Kind) int {
	switch k {
	case domain.KindValidation, domain.KindMalformedKey, domain.KindCorruptStockEntry,
		domain.KindEmptyCart, domain.KindInsufficientStock:
		return fiber.StatusBadRequest
	case domain.KindNotFound, domain.KindVariantNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail maps a typed fault to its HTTP status and a body that names the kind,
// so clients can tell "nothing to remove" from "insufficient stock". Untyped
// errors are logged and hidden behind a generic message.
func fail(c *fiber.Ctx, action string, err error) error {
	kind := domain.KindOf(err)
	if kind == "" {
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "an unexpected error occurred",
		})
	}
	return c.Status(kindStatus(kind)).JSON(fiber.Map{
		"status":  "error",
		"kind":    kind,
		"message": err.Error(),
	})
}

func ok(c *fiber.Ctx, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["status"] = "ok"
	return c.JSON(data)
}
