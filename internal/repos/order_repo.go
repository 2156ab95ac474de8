package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"threadline/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateTx inserts the order header and its line snapshots inside a
// caller-managed transaction, so checkout's stock decrement and the order
// commit or roll back together.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, o domain.Order, lines []domain.OrderLine) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders(id,user_id,first_name,last_name,amount,contact,address_json,status,created_at)
		VALUES(?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, o.ID, o.UserID, o.FirstName, o.LastName, o.Amount, o.Contact, o.Address, o.Status); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines(order_id,product_id,title,variant_qty)
			VALUES(?,?,?,?)
		`, o.ID, l.ProductID, l.Title, l.VariantQty); err != nil {
			return err
		}
	}
	return nil
}

const orderCols = `id, user_id, first_name, last_name, amount, contact, address_json, status, created_at`

func (r *OrderRepo) Get(ctx context.Context, orderID string) (domain.Order, []domain.OrderLine, error) {
	var o domain.Order
	if err := r.db.GetContext(ctx, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID); err != nil {
		return domain.Order{}, nil, err
	}
	var lines []domain.OrderLine
	if err := r.db.SelectContext(ctx, &lines, `
		SELECT order_id, product_id, title, variant_qty
		FROM order_lines WHERE order_id = ?
		ORDER BY title, variant_qty
	`, orderID); err != nil {
		return domain.Order{}, nil, err
	}
	return o, lines, nil
}

// List returns recent orders, optionally filtered by status.
func (r *OrderRepo) List(ctx context.Context, status string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	if status != "" {
		err := r.db.SelectContext(ctx, &out, `
			SELECT `+orderCols+` FROM orders WHERE status = ?
			ORDER BY datetime(created_at) DESC LIMIT ?
		`, status, limit)
		return out, err
	}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+orderCols+` FROM orders
		ORDER BY datetime(created_at) DESC LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+orderCols+` FROM orders WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

// UpdateStatus mutates the one mutable field of an order. Returns rows
// touched (0 when the order does not exist).
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, status string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *OrderRepo) Status(ctx context.Context, orderID string) (string, error) {
	var s string
	err := r.db.GetContext(ctx, &s, `SELECT status FROM orders WHERE id = ?`, orderID)
	return s, err
}

func (r *OrderRepo) Delete(ctx context.Context, orderID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type SalesRow struct {
	Month string          `db:"month"`
	Sales decimal.Decimal `db:"sales"`
}

// MonthlySales aggregates order amounts per calendar month since the given
// ISO date (admin stats).
func (r *OrderRepo) MonthlySales(ctx context.Context, sinceISO string) ([]SalesRow, error) {
	out := []SalesRow{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT strftime('%Y-%m', created_at) AS month, SUM(amount) AS sales
		FROM orders
		WHERE datetime(created_at) >= datetime(?)
		GROUP BY month
		ORDER BY month
	`, sinceISO)
	return out, err
}

func (r *OrderRepo) Beginx() (*sqlx.Tx, error) { return r.db.Beginx() }
