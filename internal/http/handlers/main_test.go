package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"threadline/internal/config"
	"threadline/internal/http/handlers"
	"threadline/internal/repos"
)

type fixture struct {
	app *fiber.App
	db  *sqlx.DB
}

// newFixture builds the full route table against an in-memory database with
// a small seeded catalog, one USER and one ADMIN.
func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sqlx.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, repos.EnsureSchema(db))
	t.Cleanup(func() { _ = db.Close() })

	db.MustExec(`INSERT INTO products(id,title,description,price,category,gender,discount_pct,images_json) VALUES
	  ('tee','Oxford Tee','Classic cotton tee',20.00,'tshirts','men',0,'[]')`)
	db.MustExec(`INSERT INTO stock_entries(product_id,size,color,qty) VALUES
	  ('tee','M','red',5),
	  ('tee','L','red',3)`)
	hash, _ := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	db.MustExec(`INSERT INTO users(id,email,name,password_hash,role) VALUES
	  ('u_maya','maya@threadline.test','Maya','`+string(hash)+`','USER'),
	  ('u_admin','admin@threadline.test','Admin','`+string(hash)+`','ADMIN')`)

	deps := handlers.NewDeps(db, config.Config{})

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(handlers.AttachUser(deps.AuthSvc))

	app.Post("/auth/login", deps.Auth.Login)
	app.Post("/auth/logout", deps.Auth.Logout)

	app.Get("/products", deps.Products.List)
	app.Post("/products/check-quantity", deps.Products.CheckQuantity)
	app.Put("/products/update-quantity", handlers.RequireUser(), deps.Products.UpdateQuantity)
	app.Get("/products/:id", deps.Products.Get)
	app.Post("/products", handlers.RequireAdmin(), deps.Products.Create)
	app.Put("/products/:id", handlers.RequireAdmin(), deps.Products.Update)
	app.Delete("/products/:id", handlers.RequireAdmin(), deps.Products.Delete)

	app.Post("/carts/clear", handlers.RequireUser(), deps.Carts.Clear)
	app.Get("/carts/:userID", handlers.RequireSelfOrAdmin("userID"), deps.Carts.Get)
	app.Put("/carts/:userID", handlers.RequireSelfOrAdmin("userID"), deps.Carts.MergeAdd)
	app.Patch("/carts/:userID", handlers.RequireSelfOrAdmin("userID"), deps.Carts.SetQuantity)
	app.Delete("/carts/:userID", handlers.RequireSelfOrAdmin("userID"), deps.Carts.Delete)

	app.Get("/checkout/payment", handlers.RequireUser(), deps.Orders.PaymentPreview)
	app.Post("/checkout", handlers.RequireUser(), deps.Orders.Checkout)

	app.Post("/orders", deps.Orders.Create)
	app.Get("/orders", handlers.RequireAdmin(), deps.Orders.List)
	app.Get("/orders/stats", handlers.RequireAdmin(), deps.Orders.Stats)
	app.Get("/orders/user/:id", handlers.RequireSelfOrAdmin("id"), deps.Orders.ListByUser)
	app.Get("/orders/:id", handlers.RequireUser(), deps.Orders.Get)
	app.Put("/orders/:id/status", handlers.RequireAdmin(), deps.Orders.UpdateStatus)
	app.Delete("/orders/:id", handlers.RequireAdmin(), deps.Orders.Delete)

	return fixture{app: app, db: db}
}

// login binds a session for the given user and returns the sid cookie value.
func (f fixture) login(t *testing.T, userID string) string {
	t.Helper()
	sid := "sid_" + userID + "_" + t.Name()
	users := &repos.UserRepo{DB: f.db}
	require.NoError(t, users.BindSession(context.Background(), sid, userID))
	return sid
}

func (f fixture) do(t *testing.T, method, path, sid string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}
