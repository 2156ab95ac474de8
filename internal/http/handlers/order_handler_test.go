package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shipBody = map[string]any{
	"firstName": "Maya", "lastName": "Iyer",
	"contact": "555-0100", "address": `{"line1":"12 Mill Rd","city":"Pune"}`,
}

func fillCart(t *testing.T, f fixture, sid string, qty int) {
	t.Helper()
	resp, _ := f.do(t, "PUT", "/carts/u_maya", sid, map[string]any{"products": []map[string]any{
		{"productID": "tee", "size": "M", "color": "red", "quantity": qty},
	}})
	require.Equal(t, 200, resp.StatusCode)
}

func TestCheckoutOverHTTP(t *testing.T) {
	f := newFixture(t)
	sid := f.login(t, "u_maya")
	fillCart(t, f, sid, 2)

	resp, body := f.do(t, "GET", "/checkout/payment", sid, nil)
	require.Equal(t, 200, resp.StatusCode)
	final := body["finalOrder"].(map[string]any)
	assert.Equal(t, "40", final["amount"])

	resp, body = f.do(t, "POST", "/checkout", sid, shipBody)
	require.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "order has been created", body["message"])
	orderID := body["orderID"].(string)

	// Stock moved, cart emptied.
	_, body = f.do(t, "POST", "/products/check-quantity", "", map[string]any{
		"uniqueCartKey": "tee-M-red",
	})
	assert.Equal(t, float64(3), body["quantity"])
	_, body = f.do(t, "GET", "/carts/u_maya", sid, nil)
	assert.Empty(t, body["cart"].(map[string]any)["products"])

	// The owner can read the order back.
	resp, body = f.do(t, "GET", "/orders/"+orderID, sid, nil)
	require.Equal(t, 200, resp.StatusCode)
	order := body["order"].(map[string]any)
	assert.Equal(t, "pending", order["status"])
	products := body["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "M-red-2", products[0].(map[string]any)["variantAndQty"])
}

func TestCheckoutEmptyCartOverHTTP(t *testing.T) {
	f := newFixture(t)
	sid := f.login(t, "u_maya")

	resp, body := f.do(t, "POST", "/checkout", sid, shipBody)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "empty_cart", body["kind"])

	resp, body = f.do(t, "GET", "/checkout/payment", sid, nil)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "empty_cart", body["kind"])
}

func TestCheckoutInsufficientStockOverHTTP(t *testing.T) {
	f := newFixture(t)
	sid := f.login(t, "u_maya")
	fillCart(t, f, sid, 9)

	resp, body := f.do(t, "POST", "/checkout", sid, shipBody)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "insufficient_stock", body["kind"])

	// Rolled back: stock and cart both intact.
	_, body = f.do(t, "POST", "/products/check-quantity", "", map[string]any{
		"uniqueCartKey": "tee-M-red",
	})
	assert.Equal(t, float64(5), body["quantity"])
	_, body = f.do(t, "GET", "/carts/u_maya", sid, nil)
	assert.Len(t, body["cart"].(map[string]any)["products"], 1)
}

func TestGuestOrderCreate(t *testing.T) {
	f := newFixture(t)

	body := map[string]any{"products": []map[string]any{
		{"productID": "tee", "size": "M", "color": "red", "quantity": 1},
	}}
	for k, v := range shipBody {
		body[k] = v
	}
	resp, out := f.do(t, "POST", "/orders", "", body)
	require.Equal(t, 201, resp.StatusCode)
	orderID := out["orderID"].(string)
	assert.Equal(t, "20", out["amount"])

	// Creating an order does not touch stock; only checkout does.
	_, out = f.do(t, "POST", "/products/check-quantity", "", map[string]any{
		"uniqueCartKey": "tee-M-red",
	})
	assert.Equal(t, float64(5), out["quantity"])

	// A guest order belongs to nobody; only admins see it.
	maya := f.login(t, "u_maya")
	resp, _ = f.do(t, "GET", "/orders/"+orderID, maya, nil)
	assert.Equal(t, 404, resp.StatusCode)
	admin := f.login(t, "u_admin")
	resp, _ = f.do(t, "GET", "/orders/"+orderID, admin, nil)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestOrderStatusUpdate(t *testing.T) {
	f := newFixture(t)
	admin := f.login(t, "u_admin")
	maya := f.login(t, "u_maya")
	fillCart(t, f, maya, 1)
	_, body := f.do(t, "POST", "/checkout", maya, shipBody)
	orderID := body["orderID"].(string)

	resp, _ := f.do(t, "PUT", "/orders/"+orderID+"/status", maya, map[string]any{"status": "shipped"})
	assert.Equal(t, 403, resp.StatusCode)

	resp, _ = f.do(t, "PUT", "/orders/"+orderID+"/status", admin, map[string]any{"status": "in transit"})
	require.Equal(t, 200, resp.StatusCode)

	resp, body = f.do(t, "PUT", "/orders/"+orderID+"/status", admin, map[string]any{"status": "lost"})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "validation", body["kind"])

	resp, body = f.do(t, "GET", "/orders/"+orderID, maya, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "in transit", body["order"].(map[string]any)["status"])
}

func TestOrderAdminListAndStats(t *testing.T) {
	f := newFixture(t)
	admin := f.login(t, "u_admin")
	maya := f.login(t, "u_maya")
	fillCart(t, f, maya, 1)
	f.do(t, "POST", "/checkout", maya, shipBody)

	resp, body := f.do(t, "GET", "/orders", admin, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["orders"].([]any), 1)

	resp, body = f.do(t, "GET", "/orders?status=shipped", admin, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, body["orders"])

	resp, _ = f.do(t, "GET", "/orders", maya, nil)
	assert.Equal(t, 403, resp.StatusCode)

	resp, body = f.do(t, "GET", "/orders/stats", admin, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["income"].([]any), 1)

	resp, body = f.do(t, "GET", "/orders/user/u_maya", maya, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["orders"].([]any), 1)
}
