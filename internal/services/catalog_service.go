package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"threadline/internal/domain"
	"threadline/internal/repos"
	"threadline/internal/validate"
	"threadline/internal/variant"
)

type CatalogService struct {
	Prods   *repos.ProductRepo
	Stock   *repos.StockRepo
	Timeout time.Duration
}

func NewCatalogService(prods *repos.ProductRepo, stock *repos.StockRepo, timeout time.Duration) *CatalogService {
	return &CatalogService{Prods: prods, Stock: stock, Timeout: timeout}
}

// ProductView is a product with its images unpacked and its stock entries
// encoded into the wire "size-color-quantity" form.
type ProductView struct {
	domain.Product
	Images []string `json:"images"`
	SCQ    []string `json:"SCQ"`
}

func (s *CatalogService) Get(ctx context.Context, id string) (*ProductView, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	p, err := s.Prods.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Errf(domain.KindNotFound, "product not found")
	}
	if err != nil {
		return nil, storeErr(err, "catalog.get")
	}
	entries, err := s.Stock.Entries(ctx, id)
	if err != nil {
		return nil, storeErr(err, "catalog.get")
	}
	return viewOf(p, entries), nil
}

func (s *CatalogService) Search(ctx context.Context, q, category, gender string, onlyDiscounted bool, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 24
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	out, err := s.Prods.Search(ctx, q, category, gender, onlyDiscounted, pageSize, (page-1)*pageSize)
	return out, storeErr(err, "catalog.search")
}

// ProductInput is the admin create/update payload. SCQ carries the stock
// entry strings; they are parsed before anything is written.
type ProductInput struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Gender      string          `json:"gender"`
	DiscountPct int             `json:"discountPercentage"`
	InStock     *bool           `json:"inStock"`
	Images      []string        `json:"images"`
	SCQ         []string        `json:"SCQ"`
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (string, error) {
	if in.Title == "" || in.Description == "" || in.Category == "" {
		return "", domain.Errf(domain.KindValidation, "title, description and category are required")
	}
	if in.Price.IsNegative() || in.Price.IsZero() {
		return "", domain.Errf(domain.KindValidation, "price must be positive")
	}
	if _, ok := validate.Gender(in.Gender); !ok {
		return "", domain.Errf(domain.KindValidation, "gender must be one of men, women, Unisex")
	}
	if in.DiscountPct < 0 || in.DiscountPct > 100 {
		return "", domain.Errf(domain.KindValidation, "discountPercentage must be between 0 and 100")
	}
	entries, err := variant.ParseEntries(in.SCQ)
	if err != nil {
		return "", err
	}
	// Product ids end up inside variant keys, so they must stay free of the
	// delimiter. Admins may supply a slug; otherwise one is generated.
	id := in.ID
	if id == "" {
		id = newProductID()
	}
	if _, ok := validate.ID(id); !ok {
		return "", domain.Errf(domain.KindValidation,
			"product id must be alphanumeric or underscore, without %q", variant.Delim)
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	images, _ := json.Marshal(in.Images)
	inStock := true
	if in.InStock != nil {
		inStock = *in.InStock
	}
	p := domain.Product{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Gender:      in.Gender,
		DiscountPct: in.DiscountPct,
		InStock:     inStock,
		ImagesJSON:  string(images),
	}
	if err := s.Prods.Create(ctx, p); err != nil {
		return "", storeErr(err, "catalog.create")
	}
	if err := s.Stock.Replace(ctx, p.ID, entries); err != nil {
		return "", storeErr(err, "catalog.create")
	}
	return p.ID, nil
}

// Update applies a partial change set. A non-nil SCQ replaces the full stock
// entry set.
func (s *CatalogService) Update(ctx context.Context, id string, changes map[string]interface{}, scq []string) error {
	var entries []variant.Entry
	if scq != nil {
		var err error
		entries, err = variant.ParseEntries(scq)
		if err != nil {
			return err
		}
	}
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	if len(changes) > 0 {
		n, err := s.Prods.Update(ctx, id, changes)
		if err != nil {
			return storeErr(err, "catalog.update")
		}
		if n == 0 {
			return domain.Errf(domain.KindNotFound, "product not found")
		}
	} else if ok, err := s.Prods.Exists(ctx, id); err != nil {
		return storeErr(err, "catalog.update")
	} else if !ok {
		return domain.Errf(domain.KindNotFound, "product not found")
	}

	if scq != nil {
		if err := s.Stock.Replace(ctx, id, entries); err != nil {
			return storeErr(err, "catalog.update")
		}
	}
	return nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	n, err := s.Prods.Delete(ctx, id)
	if err != nil {
		return storeErr(err, "catalog.delete")
	}
	if n == 0 {
		return domain.Errf(domain.KindNotFound, "product not found")
	}
	return nil
}

// newProductID generates a uuid with the hyphens stripped, keeping the id
// usable inside "productID-size-color" keys.
func newProductID() string {
	return strings.ReplaceAll(uuid.NewString(), variant.Delim, "")
}

func viewOf(p domain.Product, entries []variant.Entry) *ProductView {
	images := []string{}
	_ = json.Unmarshal([]byte(p.ImagesJSON), &images)
	scq := make([]string, 0, len(entries))
	for _, e := range entries {
		scq = append(scq, e.String())
	}
	return &ProductView{Product: p, Images: images, SCQ: scq}
}
