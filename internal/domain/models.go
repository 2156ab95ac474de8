package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    string          `db:"category" json:"category"`
	Gender      string          `db:"gender" json:"gender"` // men | women | Unisex
	DiscountPct int             `db:"discount_pct" json:"discountPercentage"`
	InStock     bool            `db:"in_stock" json:"inStock"`
	ImagesJSON  string          `db:"images_json" json:"-"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
	UpdatedAt   string          `db:"updated_at" json:"updatedAt,omitempty"`
}

// CartLine is one variant-and-quantity entry in a cart. Title and Price are
// populated from the live product record on reads, never stored on the line.
type CartLine struct {
	VariantKey string          `db:"variant_key" json:"uniqueCartKey"`
	ProductID  string          `db:"product_id" json:"productID"`
	Size       string          `db:"size" json:"size"`
	Color      string          `db:"color" json:"color"`
	Quantity   int             `db:"qty" json:"quantity"`
	Title      string          `db:"title" json:"title,omitempty"`
	Price      decimal.Decimal `db:"price" json:"price,omitempty"`
}

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userID"`
	Lines     []CartLine `json:"products"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt,omitempty"`
}

type Order struct {
	ID        string          `db:"id" json:"id"`
	UserID    sql.NullString  `db:"user_id" json:"-"`
	FirstName string          `db:"first_name" json:"firstName"`
	LastName  string          `db:"last_name" json:"lastName"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Contact   string          `db:"contact" json:"contact"`
	Address   string          `db:"address_json" json:"address"`
	Status    string          `db:"status" json:"status"`
	CreatedAt string          `db:"created_at" json:"createdAt"`
}

// OrderLine is the immutable per-variant snapshot inside an order. VariantQty
// holds the denormalized "size-color-quantity" string, independent of live
// stock.
type OrderLine struct {
	OrderID    string `db:"order_id" json:"-"`
	ProductID  string `db:"product_id" json:"productID"`
	Title      string `db:"title" json:"title"`
	VariantQty string `db:"variant_qty" json:"variantAndQty"`
}

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"` // USER | ADMIN
}
