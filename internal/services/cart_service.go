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

// LineInput is one incoming cart line from the merge-add contract.
type LineInput struct {
	ProductID string `json:"productID"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type CartService struct {
	Carts   *repos.CartRepo
	Prods   *repos.ProductRepo
	Timeout time.Duration
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo, timeout time.Duration) *CartService {
	return &CartService{Carts: carts, Prods: prods, Timeout: timeout}
}

// CreateIfAbsent returns the user's cart id, creating an empty cart on first
// use. Safe to call concurrently for the same user.
func (s *CartService) CreateIfAbsent(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.Errf(domain.KindValidation, "missing user id")
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	id, err := s.Carts.EnsureCart(ctx, userID)
	return id, storeErr(err, "cart.ensure")
}

// MergeAdd folds incoming lines into the user's cart: lines with a matching
// variant key gain quantity, new variants are appended. Calling it twice with
// the same line doubles the quantity; that is add-to-cart semantics, not a
// set operation.
func (s *CartService) MergeAdd(ctx context.Context, userID string, lines []LineInput) (*domain.Cart, error) {
	if len(lines) == 0 {
		return nil, domain.Errf(domain.KindValidation, "no products to add")
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	incoming := make([]domain.CartLine, 0, len(lines))
	for _, in := range lines {
		qty := in.Quantity
		if qty == 0 {
			qty = 1 // quantity defaults to one when omitted
		}
		if qty < 0 {
			return nil, domain.Errf(domain.KindValidation, "quantity must be a positive integer")
		}
		key, err := variant.Variant{ProductID: in.ProductID, Size: in.Size, Color: in.Color}.Key()
		if err != nil {
			return nil, err
		}
		if ok, err := s.Prods.Exists(ctx, in.ProductID); err != nil {
			return nil, storeErr(err, "cart.merge")
		} else if !ok {
			return nil, domain.Errf(domain.KindNotFound, "product %s not found", in.ProductID)
		}
		incoming = append(incoming, domain.CartLine{
			VariantKey: key, ProductID: in.ProductID, Size: in.Size, Color: in.Color, Quantity: qty,
		})
	}

	cartID, err := s.Carts.EnsureCart(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "cart.ensure")
	}
	for _, l := range incoming {
		if err := s.Carts.UpsertLineAdd(ctx, cartID, l); err != nil {
			return nil, storeErr(err, "cart.merge")
		}
	}
	return s.view(ctx, userID)
}

// SetOrRemove overwrites one line's quantity to an absolute value, or removes
// the line when quantity is zero. A missing line is an error in both cases
// (not a silent no-op), so "nothing to remove" is distinguishable for the
// caller. Returns the updated line, or nil after a removal.
func (s *CartService) SetOrRemove(ctx context.Context, userID, variantKey string, qty int) (*domain.CartLine, error) {
	if _, err := variant.ParseKey(variantKey); err != nil {
		return nil, err
	}
	if qty < 0 {
		return nil, domain.Errf(domain.KindValidation, "quantity must be zero or a positive integer")
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	cart, err := s.Carts.ByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Errf(domain.KindNotFound, "cart not found")
	}
	if err != nil {
		return nil, storeErr(err, "cart.load")
	}

	if qty == 0 {
		n, err := s.Carts.RemoveLine(ctx, cart.ID, variantKey)
		if err != nil {
			return nil, storeErr(err, "cart.remove")
		}
		if n == 0 {
			return nil, domain.Errf(domain.KindVariantNotFound, "product not found in cart")
		}
		return nil, nil
	}

	n, err := s.Carts.SetLineQty(ctx, cart.ID, variantKey, qty)
	if err != nil {
		return nil, storeErr(err, "cart.set")
	}
	if n == 0 {
		return nil, domain.Errf(domain.KindVariantNotFound, "product not found in cart")
	}
	line, err := s.Carts.Line(ctx, cart.ID, variantKey)
	if err != nil {
		return nil, storeErr(err, "cart.load")
	}
	return &line, nil
}

// Clear empties the cart's lines; the cart entity survives. Clearing a user
// with no cart is a no-op.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	cart, err := s.Carts.ByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return storeErr(err, "cart.load")
	}
	return storeErr(s.Carts.Clear(ctx, cart.ID), "cart.clear")
}

// Delete drops the cart entity entirely.
func (s *CartService) Delete(ctx context.Context, userID string) error {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	_, err := s.Carts.Delete(ctx, userID)
	return storeErr(err, "cart.delete")
}

// View returns the cart with lines populated from live product records.
func (s *CartService) View(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	return s.view(ctx, userID)
}

func (s *CartService) view(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.Carts.ByUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Errf(domain.KindNotFound, "cart not found")
	}
	if err != nil {
		return nil, storeErr(err, "cart.load")
	}
	lines, err := s.Carts.Lines(ctx, cart.ID)
	if err != nil {
		return nil, storeErr(err, "cart.load")
	}
	return &domain.Cart{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Lines:     lines,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}, nil
}
