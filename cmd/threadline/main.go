package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"threadline/internal/config"
	"threadline/internal/http/handlers"
	applog "threadline/internal/log"
	"threadline/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewDeps(db, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"status": "error", "message": "an unexpected error occurred",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.AttachUser(deps.AuthSvc))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// ---------- Routes ----------
	// Auth (login throttled)
	app.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": "error", "message": "too many attempts, try again later",
			})
		},
	}), deps.Auth.Login)
	app.Post("/auth/logout", deps.Auth.Logout)

	// Catalog
	app.Get("/products", deps.Products.List)
	app.Post("/products/check-quantity", deps.Products.CheckQuantity)
	app.Put("/products/update-quantity", handlers.RequireUser(), deps.Products.UpdateQuantity)
	app.Get("/products/:id", deps.Products.Get)
	app.Post("/products", handlers.RequireAdmin(), deps.Products.Create)
	app.Put("/products/:id", handlers.RequireAdmin(), deps.Products.Update)
	app.Delete("/products/:id", handlers.RequireAdmin(), deps.Products.Delete)

	// Carts
	app.Post("/carts/clear", handlers.RequireUser(), deps.Carts.Clear)
	app.Get("/carts/:userID", handlers.RequireSelfOrAdmin("userID"), deps.Carts.Get)
	app.Put("/carts/:userID", handlers.RequireSelfOrAdmin("userID"), deps.Carts.MergeAdd)
	app.Patch("/carts/:userID", handlers.RequireSelfOrAdmin("userID"), deps.Carts.SetQuantity)
	app.Delete("/carts/:userID", handlers.RequireSelfOrAdmin("userID"), deps.Carts.Delete)

	// Checkout
	app.Get("/checkout/payment", handlers.RequireUser(), deps.Orders.PaymentPreview)
	app.Post("/checkout", handlers.RequireUser(), deps.Orders.Checkout)

	// Orders
	app.Post("/orders", deps.Orders.Create)
	app.Get("/orders", handlers.RequireAdmin(), deps.Orders.List)
	app.Get("/orders/stats", handlers.RequireAdmin(), deps.Orders.Stats)
	app.Get("/orders/user/:id", handlers.RequireSelfOrAdmin("id"), deps.Orders.ListByUser)
	app.Get("/orders/:id", handlers.RequireUser(), deps.Orders.Get)
	app.Put("/orders/:id/status", handlers.RequireAdmin(), deps.Orders.UpdateStatus)
	app.Delete("/orders/:id", handlers.RequireAdmin(), deps.Orders.Delete)

	// Health
	health := func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) }
	app.Get("/", health)
	app.Get("/healthz", health)

	log.Fatal(app.Listen(":" + cfg.Port))
}
