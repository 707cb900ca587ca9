package services

import (
	"time"

	"github.com/ghuser/brigade/pkg/app"
	"github.com/ghuser/brigade/pkg/cache"
	"github.com/ghuser/brigade/services/inventory/infrastructure/persistence/postgres"
)

// Services is the application-layer container for the inventory context.
type Services struct {
	Stock   *StockCoordinator
	Catalog *CatalogService
}

// New wires the inventory services onto Postgres, the event bus and, when
// Redis is configured, the stock cache.
func New(a *app.Application) *Services {
	tx := postgres.NewTransactor(a.Db, a.EventBus)
	dir := postgres.NewDirectory(a.Db)

	var timeout, cacheTTL time.Duration
	if a.Config != nil {
		timeout, cacheTTL = a.Config.StockTxTimeout, a.Config.StockCacheTTL
	}

	var stockCache StockCache
	if a.Redis != nil {
		stockCache = cache.NewStockCache(a.Redis, cacheTTL)
	}

	return &Services{
		Stock:   NewStockCoordinator(tx, dir, stockCache, a.Logger, timeout),
		Catalog: NewCatalogService(tx, postgres.NewReaders(a.Db), dir, dir, stockCache, a.Logger),
	}
}
