package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"threadline/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

// EnsureCart returns the user's cart id, creating an empty cart if none
// exists. The unique user_id index plus ON CONFLICT makes concurrent calls
// for the same user converge on one cart.
func (r *CartRepo) EnsureCart(ctx context.Context, userID string) (string, error) {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO carts(id,user_id,created_at) VALUES(?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO NOTHING
	`, uuid.NewString(), userID); err != nil {
		return "", err
	}
	var cartID string
	err := r.db.GetContext(ctx, &cartID, `SELECT id FROM carts WHERE user_id = ?`, userID)
	return cartID, err
}

// ByUser returns the cart row for a user; sql.ErrNoRows when the user has no
// cart yet.
func (r *CartRepo) ByUser(ctx context.Context, userID string) (CartRow, error) {
	var c CartRow
	err := r.db.GetContext(ctx, &c, `
		SELECT id, user_id, created_at, COALESCE(updated_at,'') AS updated_at
		FROM carts WHERE user_id = ?
	`, userID)
	return c, err
}

// UpsertLineAdd merges one incoming line into the cart: existing lines gain
// quantity, new lines are inserted. The single statement keeps concurrent
// merge-adds from losing increments.
func (r *CartRepo) UpsertLineAdd(ctx context.Context, cartID string, l domain.CartLine) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_lines(cart_id,variant_key,product_id,size,color,qty,created_at)
		VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,variant_key) DO UPDATE
		SET qty = cart_lines.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, l.VariantKey, l.ProductID, l.Size, l.Color, l.Quantity)
	if err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

// SetLineQty overwrites a line's quantity to an absolute value. Returns the
// number of lines updated (0 when the variant is not in the cart).
func (r *CartRepo) SetLineQty(ctx context.Context, cartID, variantKey string, qty int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_lines SET qty = ?, updated_at = CURRENT_TIMESTAMP
		WHERE cart_id = ? AND variant_key = ?
	`, qty, cartID, variantKey)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return n, r.touch(ctx, cartID)
	}
	return n, nil
}

func (r *CartRepo) RemoveLine(ctx context.Context, cartID, variantKey string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_lines WHERE cart_id = ? AND variant_key = ?
	`, cartID, variantKey)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return n, r.touch(ctx, cartID)
	}
	return n, nil
}

func (r *CartRepo) Line(ctx context.Context, cartID, variantKey string) (domain.CartLine, error) {
	var l domain.CartLine
	err := r.db.GetContext(ctx, &l, `
		SELECT variant_key, product_id, size, color, qty
		FROM cart_lines WHERE cart_id = ? AND variant_key = ?
	`, cartID, variantKey)
	return l, err
}

// Lines returns the cart lines populated with live product title and price.
func (r *CartRepo) Lines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	err := r.db.SelectContext(ctx, &lines, `
		SELECT cl.variant_key, cl.product_id, cl.size, cl.color, cl.qty,
		       p.title, p.price
		FROM cart_lines cl JOIN products p ON p.id = cl.product_id
		WHERE cl.cart_id = ?
		ORDER BY cl.created_at, cl.variant_key
	`, cartID)
	return lines, err
}

// Clear empties all lines but keeps the cart entity.
func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = ?`, cartID); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

// ClearTx is Clear inside a caller-managed transaction (checkout).
func (r *CartRepo) ClearTx(ctx context.Context, tx *sqlx.Tx, cartID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = ?`, cartID)
	return err
}

// Delete drops the cart entity itself (lines cascade).
func (r *CartRepo) Delete(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *CartRepo) touch(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID)
	return err
}

func (r *CartRepo) Beginx() (*sqlx.Tx, error) { return r.db.Beginx() }
