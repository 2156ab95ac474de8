package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"threadline/internal/repos"
)

// memdb opens a fresh in-memory database with the production schema. The
// shared cache keeps every connection in the pool on the same database.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, repos.EnsureSchema(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedCatalog inserts a small fixed catalog with per-variant stock.
func seedCatalog(t *testing.T, db *sqlx.DB) {
	t.Helper()
	db.MustExec(`INSERT INTO products(id,title,description,price,category,gender,discount_pct,images_json) VALUES
	  ('tee','Oxford Tee','Classic cotton tee',20.00,'tshirts','men',0,'[]'),
	  ('dress','Linen Midi Dress','Breathable summer dress',64.50,'dresses','women',10,'[]')`)
	db.MustExec(`INSERT INTO stock_entries(product_id,size,color,qty) VALUES
	  ('tee','M','red',5),
	  ('tee','L','red',3),
	  ('dress','S','sand',4)`)
}
