// Package storefront assembles the client-side stores for one application
// instance and coordinates them.
package storefront

import (
	"context"
	"fmt"
	"slices"

	"click-collect/internal/apperr"
	"click-collect/internal/data/repository"
	"click-collect/internal/store/authstate"
	"click-collect/internal/store/cart"
	"click-collect/internal/store/catalog"
	"click-collect/internal/store/persist"
	"click-collect/pkg/cache"
	"click-collect/pkg/database"
	"click-collect/pkg/utils"

	"go.uber.org/zap"
)

// API is the remote surface the stores depend on.
type API interface {
	authstate.Authenticator
	catalog.Fetcher
}

type App struct {
	Auth    *authstate.Store
	Cart    *cart.Store
	Catalog *catalog.Store

	log *zap.Logger
}

// New builds the stores. The cart is loaded from storage under recordName.
func New(ctx context.Context, api API, storage cart.Storage, recordName string, log *zap.Logger) (*App, error) {
	cartStore, err := cart.New(ctx, storage, recordName, log)
	if err != nil {
		return nil, fmt.Errorf("open cart: %w", err)
	}

	return &App{
		Auth:    authstate.New(api, log),
		Cart:    cartStore,
		Catalog: catalog.New(api, log),
		log:     log.With(zap.String("component", "storefront")),
	}, nil
}

// OpenStorage returns the cart storage selected by config and a func that
// releases it.
func OpenStorage(ctx context.Context, config *utils.Config, log *zap.Logger) (cart.Storage, func(), error) {
	switch config.Cart.Storage {
	case "", "memory":
		return persist.NewMemory(), func() {}, nil

	case "redis":
		client, err := cache.InitRedis(ctx, config.Redis)
		if err != nil {
			return nil, nil, err
		}
		return persist.NewRedis(client, 0), func() { _ = client.Close() }, nil

	case "postgres":
		db, err := database.InitDB(ctx, config.Database)
		if err != nil {
			return nil, nil, err
		}
		return persist.NewPostgres(repository.NewCartRecordRepository(db, log)), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown cart storage %q", config.Cart.Storage)
	}
}

// SyncCatalog refreshes the product set and drops cart lines of stores that
// no longer list any product.
func (a *App) SyncCatalog(ctx context.Context) error {
	if err := a.Catalog.Fetch(ctx); err != nil {
		return err
	}

	available := a.Catalog.StoreIDs()
	for _, storeID := range a.Cart.StoreIDs() {
		if available[storeID] {
			continue
		}
		a.log.Info("Store catalog unavailable, clearing its cart lines", zap.String("store_id", storeID))
		if err := a.Cart.ClearStore(ctx, storeID); err != nil {
			return err
		}
	}
	return nil
}

// AddToCart adds a catalog product to the cart. Color and size must be among
// the product's options when it lists any.
func (a *App) AddToCart(ctx context.Context, productID, color, size string, quantity int) (cart.Line, error) {
	products := a.Catalog.Products()
	idx := slices.IndexFunc(products, func(p catalog.Product) bool { return p.ID == productID })
	if idx < 0 {
		return cart.Line{}, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
	}
	p := products[idx]

	if err := checkOption("color", color, p.Colors); err != nil {
		return cart.Line{}, err
	}
	if err := checkOption("size", size, p.Sizes); err != nil {
		return cart.Line{}, err
	}

	return a.Cart.AddItem(ctx, cart.ItemInput{
		ProductID: p.ID,
		StoreID:   p.StoreID,
		StoreName: p.StoreName,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		Price:     p.Price,
		Quantity:  quantity,
		Color:     color,
		Size:      size,
	})
}

func checkOption(name, value string, options []string) error {
	if len(options) == 0 {
		return nil
	}
	if value == "" {
		return apperr.Validation("%s is required, one of %v", name, options)
	}
	if !slices.Contains(options, value) {
		return apperr.Validation("%s %q is not offered, one of %v", name, value, options)
	}
	return nil
}
