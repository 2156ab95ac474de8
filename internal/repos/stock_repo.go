package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"threadline/internal/variant"
)

type StockRepo struct{ db *sqlx.DB }

func NewStockRepo(db *sqlx.DB) *StockRepo { return &StockRepo{db: db} }

// Entries returns all stock records for a product, one per (size, color).
func (r *StockRepo) Entries(ctx context.Context, productID string) ([]variant.Entry, error) {
	entries := []variant.Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT size, color, qty FROM stock_entries
		WHERE product_id = ?
		ORDER BY size, color
	`, productID)
	return entries, err
}

// Qty returns remaining stock for one variant; sql.ErrNoRows when the
// (size, color) pair has no record.
func (r *StockRepo) Qty(ctx context.Context, productID, size, color string) (int, error) {
	var qty int
	err := r.db.GetContext(ctx, &qty, `
		SELECT qty FROM stock_entries
		WHERE product_id = ? AND size = ? AND color = ?
	`, productID, size, color)
	return qty, err
}

// Decrement subtracts "by" units if enough stock exists. The conditional
// update is a single statement, so a losing writer cannot drive the quantity
// negative; it simply matches no row. Returns false when nothing matched.
func (r *StockRepo) Decrement(ctx context.Context, productID, size, color string, by int) (bool, error) {
	return decrement(ctx, r.db, productID, size, color, by)
}

// DecrementTx is Decrement inside a caller-managed transaction.
func (r *StockRepo) DecrementTx(ctx context.Context, tx *sqlx.Tx, productID, size, color string, by int) (bool, error) {
	return decrement(ctx, tx, productID, size, color, by)
}

func decrement(ctx context.Context, ext sqlx.ExtContext, productID, size, color string, by int) (bool, error) {
	res, err := ext.ExecContext(ctx, `
		UPDATE stock_entries
		SET qty = qty - ?, updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND size = ? AND color = ? AND qty >= ?
	`, by, productID, size, color, by)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// QtyTx reads a variant's quantity inside a transaction (used to tell a
// missing variant from insufficient stock after a failed decrement).
func (r *StockRepo) QtyTx(ctx context.Context, tx *sqlx.Tx, productID, size, color string) (int, error) {
	var qty int
	err := tx.GetContext(ctx, &qty, `
		SELECT qty FROM stock_entries
		WHERE product_id = ? AND size = ? AND color = ?
	`, productID, size, color)
	return qty, err
}

// Upsert sets the quantity for one variant, creating the record if needed.
func (r *StockRepo) Upsert(ctx context.Context, productID string, e variant.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_entries(product_id,size,color,qty,updated_at)
		VALUES(?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(product_id,size,color) DO UPDATE
		SET qty = excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, productID, e.Size, e.Color, e.Qty)
	return err
}

// Replace swaps a product's full stock entry set atomically.
func (r *StockRepo) Replace(ctx context.Context, productID string, entries []variant.Entry) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_entries WHERE product_id = ?`, productID); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stock_entries(product_id,size,color,qty,updated_at)
			VALUES(?,?,?,?,CURRENT_TIMESTAMP)
		`, productID, e.Size, e.Color, e.Qty); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *StockRepo) Beginx() (*sqlx.Tx, error) { return r.db.Beginx() }
