package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckQuantity(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "POST", "/products/check-quantity", "", map[string]any{
		"uniqueCartKey": "tee-M-red",
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(5), body["quantity"])

	resp, body = f.do(t, "POST", "/products/check-quantity", "", map[string]any{
		"uniqueCartKey": "tee-M-green",
	})
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "variant_not_found", body["kind"])

	resp, body = f.do(t, "POST", "/products/check-quantity", "", map[string]any{
		"uniqueCartKey": "ghost-M-red",
	})
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "not_found", body["kind"])

	resp, body = f.do(t, "POST", "/products/check-quantity", "", map[string]any{
		"uniqueCartKey": "tee-M-red-9",
	})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "malformed_key", body["kind"])
}

func TestUpdateQuantityBatch(t *testing.T) {
	f := newFixture(t)
	sid := f.login(t, "u_maya")

	resp, _ := f.do(t, "PUT", "/products/update-quantity", sid, map[string]any{
		"productDetails": "tee-M-red-2,tee-L-red-1",
	})
	require.Equal(t, 200, resp.StatusCode)
	_, body := f.do(t, "POST", "/products/check-quantity", "", map[string]any{
		"uniqueCartKey": "tee-M-red",
	})
	assert.Equal(t, float64(3), body["quantity"])

	// One short line fails the whole batch; the good line must not apply.
	resp, body = f.do(t, "PUT", "/products/update-quantity", sid, map[string]any{
		"productDetails": "tee-M-red-1,tee-L-red-9",
	})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "insufficient_stock", body["kind"])
	_, body = f.do(t, "POST", "/products/check-quantity", "", map[string]any{
		"uniqueCartKey": "tee-M-red",
	})
	assert.Equal(t, float64(3), body["quantity"])
}

func TestProductAdminGate(t *testing.T) {
	f := newFixture(t)
	maya := f.login(t, "u_maya")

	in := map[string]any{
		"title": "Chore Jacket", "description": "Washed canvas jacket",
		"price": "89.90", "category": "jackets", "gender": "Unisex",
		"SCQ": []string{"M-olive-4"},
	}
	resp, _ := f.do(t, "POST", "/products", maya, in)
	assert.Equal(t, 403, resp.StatusCode)
	resp, _ = f.do(t, "POST", "/products", "", in)
	assert.Equal(t, 403, resp.StatusCode)

	admin := f.login(t, "u_admin")
	resp, body := f.do(t, "POST", "/products", admin, in)
	require.Equal(t, 201, resp.StatusCode)
	id := body["productID"].(string)

	resp, body = f.do(t, "GET", "/products/"+id, "", nil)
	require.Equal(t, 200, resp.StatusCode)
	product := body["product"].(map[string]any)
	assert.Equal(t, "Chore Jacket", product["title"])
	assert.Equal(t, []any{"M-olive-4"}, product["SCQ"])
}

func TestProductUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	admin := f.login(t, "u_admin")

	resp, _ := f.do(t, "PUT", "/products/tee", admin, map[string]any{
		"discountPercentage": 30, "SCQ": []string{"M-red-9"},
	})
	require.Equal(t, 200, resp.StatusCode)

	_, body := f.do(t, "GET", "/products/tee", "", nil)
	product := body["product"].(map[string]any)
	assert.Equal(t, float64(30), product["discountPercentage"])
	assert.Equal(t, []any{"M-red-9"}, product["SCQ"])

	resp, body = f.do(t, "PUT", "/products/ghost", admin, map[string]any{
		"discountPercentage": 5,
	})
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "not_found", body["kind"])

	resp, _ = f.do(t, "DELETE", "/products/tee", admin, nil)
	require.Equal(t, 200, resp.StatusCode)
	resp, _ = f.do(t, "GET", "/products/tee", "", nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestProductList(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, "GET", "/products?q=oxford", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["products"].([]any), 1)

	resp, body = f.do(t, "GET", "/products?gender=women", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, body["products"])
}
