package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"threadline/internal/domain"
	"threadline/internal/repos"
	"threadline/internal/variant"
)

// StockService is the ledger over per-variant stock records.
type StockService struct {
	Stock   *repos.StockRepo
	Prods   *repos.ProductRepo
	Timeout time.Duration
}

func NewStockService(stock *repos.StockRepo, prods *repos.ProductRepo, timeout time.Duration) *StockService {
	return &StockService{Stock: stock, Prods: prods, Timeout: timeout}
}

// Entries returns a product's stock records as structured entries.
func (s *StockService) Entries(ctx context.Context, productID string) ([]variant.Entry, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	ok, err := s.Prods.Exists(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "stock.entries")
	}
	if !ok {
		return nil, domain.Errf(domain.KindNotFound, "product %s not found", productID)
	}
	entries, err := s.Stock.Entries(ctx, productID)
	return entries, storeErr(err, "stock.entries")
}

// QuantityOf reports remaining stock for one (product, size, color) variant.
func (s *StockService) QuantityOf(ctx context.Context, productID, size, color string) (int, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	return s.quantityOf(ctx, productID, size, color)
}

func (s *StockService) quantityOf(ctx context.Context, productID, size, color string) (int, error) {
	qty, err := s.Stock.Qty(ctx, productID, size, color)
	if errors.Is(err, sql.ErrNoRows) {
		ok, exErr := s.Prods.Exists(ctx, productID)
		if exErr != nil {
			return 0, storeErr(exErr, "stock.lookup")
		}
		if !ok {
			return 0, domain.Errf(domain.KindNotFound, "product %s not found", productID)
		}
		return 0, domain.Errf(domain.KindVariantNotFound,
			"size-color combination %s not found", variant.SizeColorKey(size, color))
	}
	if err != nil {
		return 0, storeErr(err, "stock.lookup")
	}
	return qty, nil
}

// QuantityForKey resolves a "productID-size-color" cart key to its remaining
// stock (the quantity-check endpoint contract).
func (s *StockService) QuantityForKey(ctx context.Context, key string) (int, error) {
	v, err := variant.ParseKey(key)
	if err != nil {
		return 0, err
	}
	return s.QuantityOf(ctx, v.ProductID, v.Size, v.Color)
}

// Decrement subtracts amount from one variant's stock, failing without
// mutation when the remaining quantity would go negative.
func (s *StockService) Decrement(ctx context.Context, productID, size, color string, amount int) error {
	if amount <= 0 {
		return domain.Errf(domain.KindValidation, "quantity must be a positive integer")
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	ok, err := s.Stock.Decrement(ctx, productID, size, color, amount)
	if err != nil {
		return storeErr(err, "stock.decrement")
	}
	if ok {
		return nil
	}
	// Nothing matched: either the variant is unknown or stock is short.
	if _, err := s.quantityOf(ctx, productID, size, color); err != nil {
		return err
	}
	return domain.Errf(domain.KindInsufficientStock,
		"insufficient stock for %s with size %s and color %s", productID, size, color)
}

// DecrementBatch applies one decrement per line inside a single transaction.
// A failure on any line rolls back every earlier decrement, so a half-applied
// checkout can never leak stock.
func (s *StockService) DecrementBatch(ctx context.Context, lines []variant.BatchLine) error {
	if len(lines) == 0 {
		return domain.Errf(domain.KindValidation, "no product quantities to update")
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	tx, err := s.Stock.Beginx()
	if err != nil {
		return storeErr(err, "stock.batch")
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range lines {
		ok, err := s.Stock.DecrementTx(ctx, tx, l.ProductID, l.Size, l.Color, l.Qty)
		if err != nil {
			return storeErr(err, "stock.batch")
		}
		if ok {
			continue
		}
		if _, err := s.Stock.QtyTx(ctx, tx, l.ProductID, l.Size, l.Color); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.Errf(domain.KindVariantNotFound,
					"size-color combination %s not found for product %s",
					variant.SizeColorKey(l.Size, l.Color), l.ProductID)
			}
			return storeErr(err, "stock.batch")
		}
		return domain.Errf(domain.KindInsufficientStock,
			"insufficient stock for %s with size %s and color %s", l.ProductID, l.Size, l.Color)
	}
	return storeErr(tx.Commit(), "stock.batch")
}

// Replace parses raw "size-color-quantity" strings and swaps the product's
// stock entry set. Used by admin product create/update.
func (s *StockService) Replace(ctx context.Context, productID string, raw []string) error {
	entries, err := variant.ParseEntries(raw)
	if err != nil {
		return err
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	ok, err := s.Prods.Exists(ctx, productID)
	if err != nil {
		return storeErr(err, "stock.replace")
	}
	if !ok {
		return domain.Errf(domain.KindNotFound, "product %s not found", productID)
	}
	return storeErr(s.Stock.Replace(ctx, productID, entries), "stock.replace")
}

// Upsert sets one variant's absolute quantity (admin stock adjustment).
func (s *StockService) Upsert(ctx context.Context, productID string, e variant.Entry) error {
	if e.Qty < 0 {
		return domain.Errf(domain.KindValidation, "quantity must not be negative")
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	ok, err := s.Prods.Exists(ctx, productID)
	if err != nil {
		return storeErr(err, "stock.upsert")
	}
	if !ok {
		return domain.Errf(domain.KindNotFound, "product %s not found", productID)
	}
	return storeErr(s.Stock.Upsert(ctx, productID, e), "stock.upsert")
}
