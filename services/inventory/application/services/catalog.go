package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/brigade/pkg/cache"
	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/events"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/brigade/services/inventory/domain/services"
)

// cacheWriteTimeout bounds a background cache warm-up.
const cacheWriteTimeout = 500 * time.Millisecond

// StockCache is the read-through cache for item snapshots. *pkgcache.StockCache implements it.
//
// Writers read Generation before loading the row and store it with
// SetIfGeneration; commits call Invalidate. A snapshot loaded before a commit
// therefore never replaces the invalidation of that commit.
type StockCache interface {
	Get(ctx context.Context, itemID int64) (*pkgcache.CachedStock, error)
	Generation(ctx context.Context, itemID int64) (int64, error)
	SetIfGeneration(ctx context.Context, s *pkgcache.CachedStock, gen int64) (bool, error)
	Invalidate(ctx context.Context, itemID int64) error
}

// CatalogService manages item records and serves the ledger's read side.
// It never changes an item's quantity after creation.
type CatalogService struct {
	tx         repositories.Transactor
	readers    repositories.Readers
	persons    repositories.PersonDirectory
	categories repositories.CategoryDirectory
	cache      StockCache
	log        logger.Logger
}

// NewCatalogService wires a CatalogService. cache may be nil.
func NewCatalogService(
	tx repositories.Transactor,
	readers repositories.Readers,
	persons repositories.PersonDirectory,
	categories repositories.CategoryDirectory,
	cache StockCache,
	log logger.Logger,
) *CatalogService {
	return &CatalogService{tx: tx, readers: readers, persons: persons, categories: categories, cache: cache, log: log}
}

// CreateItem validates and persists a new item and publishes ItemCreatedEvent.
func (s *CatalogService) CreateItem(ctx context.Context, p models.NewItemParams) (*models.InventoryItem, error) {
	item, err := models.NewInventoryItem(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidItem, err)
	}
	if err := domainsvcs.ValidateItemForCreation(item); err != nil {
		return nil, err
	}

	ok, err := s.categories.CategoryExists(ctx, item.Category)
	if err != nil {
		return nil, domain.StorageFailure(fmt.Errorf("check category: %w", err))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrCategoryNotFound, item.Category)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, st repositories.TxStores) error {
		if err := st.Items.CreateItem(ctx, item); err != nil {
			return err
		}
		return st.Outbox.Publish(ctx, events.TopicItemCreated, events.ItemCreatedEvent{
			EventID:         uuid.New(),
			Version:         events.ItemCreatedVersion,
			ItemID:          item.ID,
			Code:            item.Code.String(),
			Name:            item.Name,
			IsPPE:           item.IsPPE,
			InitialQuantity: item.InitialQuantity,
			OccurredAt:      item.CreatedAt,
		})
	})
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	s.log.InfoContext(ctx, "inventory: item created", "item_id", item.ID, "code", item.Code, "is_ppe", item.IsPPE)
	return item, nil
}

// GetItem reads an item through the stock cache:
//  1. Check Redis first.
//  2. On miss (or cache error), note the item's cache generation and query the database.
//  3. Warm the cache in the background unless a commit invalidated the item meanwhile.
func (s *CatalogService) GetItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return ItemFromCache(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "inventory: stock cache read failed", "item_id", id, "error", err)
		}
		if gen, err = s.cache.Generation(ctx, id); err == nil {
			cacheable = true
		}
	}

	item, err := s.readers.Items.GetItem(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	if cacheable {
		s.warmCache(ctx, CacheFromItem(item), gen)
	}
	return item, nil
}

func (s *CatalogService) warmCache(ctx context.Context, snapshot *pkgcache.CachedStock, gen int64) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheWriteTimeout)
	go func() {
		defer cancel()
		stored, err := s.cache.SetIfGeneration(wctx, snapshot, gen)
		switch {
		case err != nil:
			s.log.WarnContext(wctx, "inventory: stock cache warm-up failed", "item_id", snapshot.ItemID, "error", err)
		case !stored:
			s.log.DebugContext(wctx, "inventory: stock cache warm-up skipped, item changed", "item_id", snapshot.ItemID)
		}
	}()
}

// RefreshCache replaces the cached snapshot of id with the database row, or
// invalidates it when the item no longer exists. A refresh that loses to a
// newer commit stores nothing; that commit triggers its own refresh.
// No-op without a cache.
func (s *CatalogService) RefreshCache(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	gen, err := s.cache.Generation(ctx, id)
	if err != nil {
		return err
	}
	item, err := s.readers.Items.GetItem(ctx, id)
	if errors.Is(err, domain.ErrItemNotFound) {
		return s.cache.Invalidate(ctx, id)
	}
	if err != nil {
		return domain.StorageFailure(err)
	}
	_, err = s.cache.SetIfGeneration(ctx, CacheFromItem(item), gen)
	return err
}

// ListItems returns a page of items ordered by code plus the total count.
func (s *CatalogService) ListItems(ctx context.Context, opts repositories.QueryOpts) ([]*models.InventoryItem, int, error) {
	items, total, err := s.readers.Items.ListItems(ctx, opts)
	if err != nil {
		return nil, 0, domain.StorageFailure(fmt.Errorf("list items: %w", err))
	}
	return items, total, nil
}

// DeleteItem removes an item that nothing references.
func (s *CatalogService) DeleteItem(ctx context.Context, id int64) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st repositories.TxStores) error {
		return st.Items.DeleteItem(ctx, id)
	})
	if err != nil {
		return domain.StorageFailure(err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(context.WithoutCancel(ctx), id); err != nil {
			s.log.WarnContext(ctx, "inventory: stock cache invalidation failed", "item_id", id, "error", err)
		}
	}
	s.log.InfoContext(ctx, "inventory: item deleted", "item_id", id)
	return nil
}

// GetPerson returns an active member of the person directory.
func (s *CatalogService) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	p, err := s.persons.GetPerson(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}
	if !p.Active {
		return nil, fmt.Errorf("%w: person %d is inactive", domain.ErrPersonNotFound, id)
	}
	return p, nil
}

// GetActiveAssignmentsForPerson lists what the person currently holds.
func (s *CatalogService) GetActiveAssignmentsForPerson(ctx context.Context, personID int64) ([]*models.EppAssignment, error) {
	if _, err := s.persons.GetPerson(ctx, personID); err != nil {
		return nil, domain.StorageFailure(err)
	}
	out, err := s.readers.Assignments.GetActiveAssignmentsForPerson(ctx, personID)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}
	return out, nil
}

// GetAssignmentsForItem lists every assignment ever made for the item.
func (s *CatalogService) GetAssignmentsForItem(ctx context.Context, itemID int64) ([]*models.EppAssignment, error) {
	if _, err := s.readers.Items.GetItem(ctx, itemID); err != nil {
		return nil, domain.StorageFailure(err)
	}
	out, err := s.readers.Assignments.GetAssignmentsForItem(ctx, itemID)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}
	return out, nil
}

// GetMovementsForItem returns the item's journal newest first. The sequence
// is lazy; errors surface through it.
func (s *CatalogService) GetMovementsForItem(ctx context.Context, itemID int64) iter.Seq2[*models.InventoryMovement, error] {
	return s.readers.Movements.GetMovementsForItem(ctx, itemID)
}

// Reconcile checks the item's stock against its journal and assignments.
// The item is locked while reading so the three sources agree.
func (s *CatalogService) Reconcile(ctx context.Context, itemID int64) (*domainsvcs.Reconciliation, error) {
	var rep domainsvcs.Reconciliation
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st repositories.TxStores) error {
		item, err := st.Items.LockItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		assignments, err := st.Assignments.GetAssignmentsForItem(ctx, itemID)
		if err != nil {
			return err
		}
		var movements []*models.InventoryMovement
		for m, err := range st.Movements.GetMovementsForItem(ctx, itemID) {
			if err != nil {
				return err
			}
			movements = append(movements, m)
		}
		rep = domainsvcs.Reconcile(item, assignments, movements)
		return nil
	})
	if err != nil {
		return nil, domain.StorageFailure(err)
	}
	if !rep.Consistent() {
		s.log.ErrorContext(ctx, "inventory: reconciliation mismatch",
			"item_id", itemID,
			"current", rep.Current,
			"initial", rep.Initial,
			"journal_delta", rep.JournalDelta,
			"outstanding", rep.Outstanding,
			"total_acquired", rep.TotalAcquired,
		)
	}
	return &rep, nil
}

// ExpiringItems lists items whose expiry date falls before now + within.
func (s *CatalogService) ExpiringItems(ctx context.Context, now time.Time, within time.Duration) ([]*models.InventoryItem, error) {
	items, err := s.readers.Items.ListExpiring(ctx, now.Add(within))
	if err != nil {
		return nil, domain.StorageFailure(fmt.Errorf("list expiring: %w", err))
	}
	return items, nil
}

// ItemFromCache converts a cache snapshot back to the domain model.
func ItemFromCache(c *pkgcache.CachedStock) *models.InventoryItem {
	return &models.InventoryItem{
		ID:              c.ItemID,
		Code:            models.ItemCode(c.Code),
		Name:            c.Name,
		Category:        c.Category,
		Unit:            c.Unit,
		Quantity:        c.Quantity,
		InitialQuantity: c.InitialQuantity,
		MinStock:        c.MinStock,
		IsPPE:           c.IsPPE,
		ExpiryDate:      c.ExpiryDate,
		CreatedAt:       c.CreatedAt,
	}
}

// CacheFromItem builds the cache snapshot of item.
func CacheFromItem(item *models.InventoryItem) *pkgcache.CachedStock {
	return &pkgcache.CachedStock{
		ItemID:          item.ID,
		Code:            item.Code.String(),
		Name:            item.Name,
		Category:        item.Category,
		Unit:            item.Unit,
		Quantity:        item.Quantity,
		InitialQuantity: item.InitialQuantity,
		MinStock:        item.MinStock,
		IsPPE:           item.IsPPE,
		ExpiryDate:      item.ExpiryDate,
		CreatedAt:       item.CreatedAt,
	}
}
