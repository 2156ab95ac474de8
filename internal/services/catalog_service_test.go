package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadline/internal/domain"
	"threadline/internal/repos"
	"threadline/internal/services"
)

func newCatalogSvc(t *testing.T) *services.CatalogService {
	db := memdb(t)
	seedCatalog(t, db)
	return services.NewCatalogService(repos.NewProductRepo(db), repos.NewStockRepo(db), 0)
}

func TestCreateAndGetProductView(t *testing.T) {
	svc := newCatalogSvc(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, services.ProductInput{
		Title:       "Chore Jacket",
		Description: "Washed canvas jacket",
		Price:       decimal.RequireFromString("89.90"),
		Category:    "jackets",
		Gender:      "Unisex",
		Images:      []string{"products/jacket/main.jpg"},
		SCQ:         []string{"M-olive-4", "L-olive-2"},
	})
	require.NoError(t, err)

	view, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Chore Jacket", view.Title)
	assert.Equal(t, []string{"products/jacket/main.jpg"}, view.Images)
	assert.ElementsMatch(t, []string{"M-olive-4", "L-olive-2"}, view.SCQ)
}

func TestCreateRejects(t *testing.T) {
	svc := newCatalogSvc(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, services.ProductInput{
		Title: "x", Description: "y", Category: "z",
		Price: decimal.RequireFromString("10"), Gender: "kids",
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = svc.Create(ctx, services.ProductInput{
		Title: "x", Description: "y", Category: "z",
		Price: decimal.Zero, Gender: "men",
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = svc.Create(ctx, services.ProductInput{
		Title: "x", Description: "y", Category: "z",
		Price: decimal.RequireFromString("10"), Gender: "men",
		SCQ: []string{"M-red"},
	})
	assert.True(t, domain.IsKind(err, domain.KindCorruptStockEntry))
}

func TestUpdatePartialAndStockReplace(t *testing.T) {
	svc := newCatalogSvc(t)
	ctx := context.Background()

	err := svc.Update(ctx, "tee", map[string]interface{}{"discount_pct": 25}, nil)
	require.NoError(t, err)
	view, err := svc.Get(ctx, "tee")
	require.NoError(t, err)
	assert.Equal(t, 25, view.DiscountPct)
	// Stock untouched when no entry set is sent.
	assert.ElementsMatch(t, []string{"M-red-5", "L-red-3"}, view.SCQ)

	err = svc.Update(ctx, "tee", nil, []string{"M-red-1"})
	require.NoError(t, err)
	view, err = svc.Get(ctx, "tee")
	require.NoError(t, err)
	assert.Equal(t, []string{"M-red-1"}, view.SCQ)

	err = svc.Update(ctx, "ghost", map[string]interface{}{"discount_pct": 5}, nil)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestSearchFilters(t *testing.T) {
	svc := newCatalogSvc(t)
	ctx := context.Background()

	all, err := svc.Search(ctx, "", "", "", false, 1, 24)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	women, err := svc.Search(ctx, "", "", "women", false, 1, 24)
	require.NoError(t, err)
	require.Len(t, women, 1)
	assert.Equal(t, "dress", women[0].ID)

	byText, err := svc.Search(ctx, "LINEN", "", "", false, 1, 24)
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "dress", byText[0].ID)

	discounted, err := svc.Search(ctx, "", "", "", true, 1, 24)
	require.NoError(t, err)
	require.Len(t, discounted, 1)
	assert.Equal(t, "dress", discounted[0].ID)
}

func TestDeleteCascadesToStock(t *testing.T) {
	svc := newCatalogSvc(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "tee"))
	_, err := svc.Get(ctx, "tee")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	err = svc.Delete(ctx, "tee")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCreatedProductIsCartable(t *testing.T) {
	db := memdb(t)
	seedCatalog(t, db)
	prodRepo := repos.NewProductRepo(db)
	catalog := services.NewCatalogService(prodRepo, repos.NewStockRepo(db), 0)
	carts := services.NewCartService(repos.NewCartRepo(db), prodRepo, 0)
	ctx := context.Background()

	// Generated ids must never contain the variant key delimiter.
	id, err := catalog.Create(ctx, services.ProductInput{
		Title:       "Rib Beanie",
		Description: "Merino rib knit beanie",
		Price:       decimal.RequireFromString("18.00"),
		Category:    "accessories",
		Gender:      "Unisex",
		SCQ:         []string{"OS-moss-6"},
	})
	require.NoError(t, err)
	assert.NotContains(t, id, "-")

	cart, err := carts.MergeAdd(ctx, "u1",
		[]services.LineInput{{ProductID: id, Size: "OS", Color: "moss", Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, id+"-OS-moss", cart.Lines[0].VariantKey)
}

func TestCreateProductIDSlug(t *testing.T) {
	svc := newCatalogSvc(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, services.ProductInput{
		ID: "jacket_chore", Title: "Chore Jacket", Description: "Washed canvas jacket",
		Price: decimal.RequireFromString("89.90"), Category: "jackets", Gender: "Unisex",
		SCQ: []string{"M-olive-4"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jacket_chore", id)

	_, err = svc.Create(ctx, services.ProductInput{
		ID: "jacket-chore", Title: "Chore Jacket II", Description: "Washed canvas jacket",
		Price: decimal.RequireFromString("89.90"), Category: "jackets", Gender: "Unisex",
		SCQ: []string{"M-olive-4"},
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
