package repos

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"threadline/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, title, description, price, category, gender, discount_pct, in_stock,
	COALESCE(images_json,'[]') AS images_json, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE id = ?`, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ByIDs loads several products at once (checkout title/price resolution).
func (r *ProductRepo) ByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+productCols+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// Search filters the catalog. The WHERE clause is assembled with squirrel so
// optional filters compose without string concatenation.
func (r *ProductRepo) Search(ctx context.Context, q, category, gender string, onlyDiscounted bool, limit, offset int) ([]domain.Product, error) {
	b := sq.Select("id", "title", "description", "price", "category", "gender",
		"discount_pct", "in_stock", "COALESCE(images_json,'[]') AS images_json",
		"created_at", "COALESCE(updated_at,'') AS updated_at").
		From("products").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		b = b.Where(sq.Or{
			sq.Like{"LOWER(title)": like},
			sq.Like{"LOWER(description)": like},
		})
	}
	if category != "" {
		b = b.Where(sq.Eq{"category": category})
	}
	if gender != "" {
		b = b.Where(sq.Eq{"gender": gender})
	}
	if onlyDiscounted {
		b = b.Where(sq.Gt{"discount_pct": 0})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	err = r.db.SelectContext(ctx, &out, query, args...)
	return out, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) error {
	_, err := sq.Insert("products").
		SetMap(map[string]interface{}{
			"id":           p.ID,
			"title":        p.Title,
			"description":  p.Description,
			"price":        p.Price,
			"category":     p.Category,
			"gender":       p.Gender,
			"discount_pct": p.DiscountPct,
			"in_stock":     p.InStock,
			"images_json":  p.ImagesJSON,
		}).
		RunWith(r.db).
		ExecContext(ctx)
	return err
}

// Update applies a partial change set; returns the number of rows touched.
func (r *ProductRepo) Update(ctx context.Context, id string, changes map[string]interface{}) (int64, error) {
	if len(changes) == 0 {
		return 0, nil
	}
	changes["updated_at"] = sq.Expr("CURRENT_TIMESTAMP")
	res, err := sq.Update("products").
		Where(sq.Eq{"id": id}).
		SetMap(changes).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
