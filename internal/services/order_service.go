package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"threadline/internal/domain"
	"threadline/internal/repos"
	"threadline/internal/validate"
	"threadline/internal/variant"
)

// ShippingInfo carries the checkout contact and address data.
type ShippingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Contact   string `json:"contact"`
	Address   string `json:"address"`
}

type OrderService struct {
	Carts      *repos.CartRepo
	Stock      *repos.StockRepo
	Orders     *repos.OrderRepo
	Prods      *repos.ProductRepo
	Timeout    time.Duration
	StrictFlow bool
}

func NewOrderService(carts *repos.CartRepo, stock *repos.StockRepo, orders *repos.OrderRepo, prods *repos.ProductRepo, timeout time.Duration, strict bool) *OrderService {
	return &OrderService{Carts: carts, Stock: stock, Orders: orders, Prods: prods, Timeout: timeout, StrictFlow: strict}
}

// Build freezes the given lines into an immutable order snapshot. Titles and
// prices are resolved from the live catalog at build time, not carried from
// the cart: the charged total reflects current pricing, which can differ from
// what the shopper saw. Stock is not touched here; Checkout couples the two.
func (s *OrderService) Build(ctx context.Context, lines []LineInput, ship ShippingInfo, userID string) (string, decimal.Decimal, error) {
	if len(lines) == 0 {
		return "", decimal.Zero, domain.Errf(domain.KindEmptyCart, "cannot checkout an empty cart")
	}
	if err := validateShipping(ship); err != nil {
		return "", decimal.Zero, err
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	snapshot, amount, err := s.resolve(ctx, lines)
	if err != nil {
		return "", decimal.Zero, err
	}

	tx, err := s.Orders.Beginx()
	if err != nil {
		return "", decimal.Zero, storeErr(err, "order.create")
	}
	defer func() { _ = tx.Rollback() }()

	order := s.newOrder(ship, userID, amount)
	if err := s.Orders.CreateTx(ctx, tx, order, snapshot); err != nil {
		return "", decimal.Zero, storeErr(err, "order.create")
	}
	if err := tx.Commit(); err != nil {
		return "", decimal.Zero, storeErr(err, "order.create")
	}
	return order.ID, amount, nil
}

// Checkout places an order from the user's cart: every line's stock is
// decremented, the snapshot is persisted and the cart is cleared, all inside
// one transaction. Insufficient stock on any line rolls the whole thing back.
func (s *OrderService) Checkout(ctx context.Context, userID string, ship ShippingInfo) (string, decimal.Decimal, error) {
	if err := validateShipping(ship); err != nil {
		return "", decimal.Zero, err
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	cart, err := s.Carts.ByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", decimal.Zero, domain.Errf(domain.KindEmptyCart, "cannot checkout an empty cart")
	}
	if err != nil {
		return "", decimal.Zero, storeErr(err, "order.checkout")
	}
	cartLines, err := s.Carts.Lines(ctx, cart.ID)
	if err != nil {
		return "", decimal.Zero, storeErr(err, "order.checkout")
	}
	if len(cartLines) == 0 {
		return "", decimal.Zero, domain.Errf(domain.KindEmptyCart, "cannot checkout an empty cart")
	}

	inputs := make([]LineInput, 0, len(cartLines))
	for _, l := range cartLines {
		inputs = append(inputs, LineInput{ProductID: l.ProductID, Size: l.Size, Color: l.Color, Quantity: l.Quantity})
	}
	snapshot, amount, err := s.resolve(ctx, inputs)
	if err != nil {
		return "", decimal.Zero, err
	}

	tx, err := s.Orders.Beginx()
	if err != nil {
		return "", decimal.Zero, storeErr(err, "order.checkout")
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range cartLines {
		ok, err := s.Stock.DecrementTx(ctx, tx, l.ProductID, l.Size, l.Color, l.Quantity)
		if err != nil {
			return "", decimal.Zero, storeErr(err, "order.checkout")
		}
		if !ok {
			if _, err := s.Stock.QtyTx(ctx, tx, l.ProductID, l.Size, l.Color); errors.Is(err, sql.ErrNoRows) {
				return "", decimal.Zero, domain.Errf(domain.KindVariantNotFound,
					"size-color combination %s not found for product %s",
					variant.SizeColorKey(l.Size, l.Color), l.ProductID)
			}
			return "", decimal.Zero, domain.Errf(domain.KindInsufficientStock,
				"insufficient stock for %s with size %s and color %s", l.ProductID, l.Size, l.Color)
		}
	}

	order := s.newOrder(ship, userID, amount)
	if err := s.Orders.CreateTx(ctx, tx, order, snapshot); err != nil {
		return "", decimal.Zero, storeErr(err, "order.checkout")
	}
	if err := s.Carts.ClearTx(ctx, tx, cart.ID); err != nil {
		return "", decimal.Zero, storeErr(err, "order.checkout")
	}
	if err := tx.Commit(); err != nil {
		return "", decimal.Zero, storeErr(err, "order.checkout")
	}
	return order.ID, amount, nil
}

// PaymentPreview computes the cart total at live prices without creating an
// order or touching stock.
func (s *OrderService) PaymentPreview(ctx context.Context, userID string) ([]domain.CartLine, decimal.Decimal, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	cart, err := s.Carts.ByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, decimal.Zero, domain.Errf(domain.KindEmptyCart, "cannot checkout an empty cart")
	}
	if err != nil {
		return nil, decimal.Zero, storeErr(err, "checkout.preview")
	}
	lines, err := s.Carts.Lines(ctx, cart.ID)
	if err != nil {
		return nil, decimal.Zero, storeErr(err, "checkout.preview")
	}
	if len(lines) == 0 {
		return nil, decimal.Zero, domain.Errf(domain.KindEmptyCart, "cannot checkout an empty cart")
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return lines, total, nil
}

// resolve turns inputs into order line snapshots with live titles and prices
// and computes the total. Lines naming the same variant are merged by summing
// their quantities, so a snapshot holds at most one line per variant.
func (s *OrderService) resolve(ctx context.Context, lines []LineInput) ([]domain.OrderLine, decimal.Decimal, error) {
	merged := make([]LineInput, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, decimal.Zero, domain.Errf(domain.KindValidation, "quantity must be a positive integer")
		}
		key, err := variant.Variant{ProductID: l.ProductID, Size: l.Size, Color: l.Color}.Key()
		if err != nil {
			return nil, decimal.Zero, err
		}
		if i, ok := index[key]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, l)
	}

	ids := make([]string, 0, len(merged))
	for _, l := range merged {
		ids = append(ids, l.ProductID)
	}
	prods, err := s.Prods.ByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, storeErr(err, "order.resolve")
	}

	snapshot := make([]domain.OrderLine, 0, len(merged))
	amount := decimal.Zero
	for _, l := range merged {
		p, ok := prods[l.ProductID]
		if !ok {
			return nil, decimal.Zero, domain.Errf(domain.KindNotFound, "product %s not found", l.ProductID)
		}
		amount = amount.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		snapshot = append(snapshot, domain.OrderLine{
			ProductID:  l.ProductID,
			Title:      p.Title,
			VariantQty: variant.Entry{Size: l.Size, Color: l.Color, Qty: l.Quantity}.String(),
		})
	}
	return snapshot, amount, nil
}

func (s *OrderService) newOrder(ship ShippingInfo, userID string, amount decimal.Decimal) domain.Order {
	o := domain.Order{
		ID:        uuid.NewString(),
		FirstName: ship.FirstName,
		LastName:  ship.LastName,
		Amount:    amount,
		Contact:   ship.Contact,
		Address:   ship.Address,
		Status:    domain.StatusPending,
	}
	if userID != "" {
		o.UserID = sql.NullString{String: userID, Valid: true}
	}
	return o
}

func validateShipping(ship ShippingInfo) error {
	if _, ok := validate.Name(ship.FirstName); !ok {
		return domain.Errf(domain.KindValidation, "firstName is required")
	}
	if _, ok := validate.Name(ship.LastName); !ok {
		return domain.Errf(domain.KindValidation, "lastName is required")
	}
	if ship.Contact == "" {
		return domain.Errf(domain.KindValidation, "contact is required")
	}
	if ship.Address == "" {
		return domain.Errf(domain.KindValidation, "address is required")
	}
	return nil
}

// UpdateStatus validates the target status against the allowed set and, when
// strict flow is enabled, against the transition graph.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	if !domain.ValidStatus(status) {
		return domain.Errf(domain.KindValidation, "invalid status value")
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	if s.StrictFlow {
		cur, err := s.Orders.Status(ctx, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Errf(domain.KindNotFound, "order not found")
		}
		if err != nil {
			return storeErr(err, "order.status")
		}
		if cur != status && !domain.CanTransition(cur, status) {
			return domain.Errf(domain.KindValidation, "illegal status transition %q to %q", cur, status)
		}
	}

	n, err := s.Orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return storeErr(err, "order.status")
	}
	if n == 0 {
		return domain.Errf(domain.KindNotFound, "order not found")
	}
	return nil
}

// Get returns an order visible to the requester: the owner, or an admin. A
// foreign order reads as not found rather than forbidden.
func (s *OrderService) Get(ctx context.Context, orderID string, requester *domain.User) (*domain.Order, []domain.OrderLine, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	o, lines, err := s.Orders.Get(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.Errf(domain.KindNotFound, "order not found")
	}
	if err != nil {
		return nil, nil, storeErr(err, "order.get")
	}
	if requester == nil || (requester.Role != "ADMIN" && (!o.UserID.Valid || o.UserID.String != requester.ID)) {
		return nil, nil, domain.Errf(domain.KindNotFound, "order not found")
	}
	return &o, lines, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	out, err := s.Orders.ListByUser(ctx, userID)
	return out, storeErr(err, "order.list")
}

// List returns recent orders for admin, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, status string, limit int) ([]domain.Order, error) {
	if status != "" && !domain.ValidStatus(status) {
		return nil, domain.Errf(domain.KindValidation, "invalid status value")
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	out, err := s.Orders.List(ctx, status, limit)
	return out, storeErr(err, "order.list")
}

func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	n, err := s.Orders.Delete(ctx, orderID)
	if err != nil {
		return storeErr(err, "order.delete")
	}
	if n == 0 {
		return domain.Errf(domain.KindNotFound, "order not found")
	}
	return nil
}

// MonthlySales aggregates the last two months of order amounts.
func (s *OrderService) MonthlySales(ctx context.Context) ([]repos.SalesRow, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	since := time.Now().UTC().AddDate(0, -2, 0).Format("2006-01-02 15:04:05")
	out, err := s.Orders.MonthlySales(ctx, since)
	return out, storeErr(err, "order.stats")
}
