package handlers

import (
	"github.com/jmoiron/sqlx"

	"threadline/internal/config"
	"threadline/internal/repos"
	"threadline/internal/services"
)

// Deps wires repos into services into handlers. One instance per process.
type Deps struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Carts    *CartHandler
	Orders   *OrderHandler

	AuthSvc *services.AuthService
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := &repos.UserRepo{DB: db}
	prodRepo := repos.NewProductRepo(db)
	stockRepo := repos.NewStockRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	authSvc := &services.AuthService{Users: userRepo, Timeout: cfg.RequestTimeout}
	catalogSvc := services.NewCatalogService(prodRepo, stockRepo, cfg.RequestTimeout)
	stockSvc := services.NewStockService(stockRepo, prodRepo, cfg.RequestTimeout)
	cartSvc := services.NewCartService(cartRepo, prodRepo, cfg.RequestTimeout)
	orderSvc := services.NewOrderService(cartRepo, stockRepo, orderRepo, prodRepo,
		cfg.RequestTimeout, cfg.StrictStatusFlow)

	return &Deps{
		Auth:     &AuthHandler{Auth: authSvc},
		Products: &ProductHandler{Catalog: catalogSvc, Stock: stockSvc},
		Carts:    &CartHandler{Carts: cartSvc},
		Orders:   &OrderHandler{Orders: orderSvc},
		AuthSvc:  authSvc,
	}
}
