package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline catalog and users if the DB is empty (idempotent).
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates all tables. Exported so tests can bootstrap an
// in-memory database with the production schema.
func EnsureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  category TEXT NOT NULL,
  gender TEXT NOT NULL CHECK (gender IN ('men','women','Unisex')),
  discount_pct INTEGER NOT NULL DEFAULT 0 CHECK (discount_pct BETWEEN 0 AND 100),
  in_stock INTEGER NOT NULL DEFAULT 1,
  images_json TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_gender   ON products(gender);

-- Per-variant stock. One row per (product, size, color); quantity never
-- goes negative.
CREATE TABLE IF NOT EXISTS stock_entries(
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  size  TEXT NOT NULL,
  color TEXT NOT NULL,
  qty INTEGER NOT NULL DEFAULT 0 CHECK (qty >= 0),
  updated_at TEXT,
  PRIMARY KEY(product_id, size, color)
);

-- Carts: one per user, lines unique by variant key.
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  user_id TEXT UNIQUE NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_lines(
  cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  variant_key TEXT NOT NULL,
  product_id TEXT NOT NULL,
  size  TEXT NOT NULL,
  color TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, variant_key)
);

-- Orders are immutable snapshots; only status changes after creation.
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  contact TEXT NOT NULL,
  address_json TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_user       ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_status     ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_lines(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  variant_qty TEXT NOT NULL,
  PRIMARY KEY (order_id, product_id, variant_qty)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog and stock")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO products(id,title,description,price,category,gender,discount_pct,images_json) VALUES
	  ('tee_oxford','Oxford Tee','Classic cotton tee',20.00,'tshirts','men',0,'["products/tee_oxford/main.jpg"]'),
	  ('dress_linen','Linen Midi Dress','Breathable summer dress',64.50,'dresses','women',10,'["products/dress_linen/main.jpg"]'),
	  ('hoodie_fleece','Fleece Hoodie','Heavyweight fleece hoodie',49.99,'hoodies','Unisex',0,'["products/hoodie_fleece/main.jpg"]')`)

	tx.MustExec(`INSERT INTO stock_entries(product_id,size,color,qty) VALUES
	  ('tee_oxford','M','red',5),
	  ('tee_oxford','L','red',3),
	  ('tee_oxford','M','white',8),
	  ('dress_linen','S','sand',4),
	  ('dress_linen','M','sand',0),
	  ('hoodie_fleece','L','black',12)`)

	return tx.Commit()
}

// seedUsers ensures a demo USER and ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u_maya", "maya@threadline.test", "Maya", "USER", "Passw0rd!"),
		mk("u_admin", "admin@threadline.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
