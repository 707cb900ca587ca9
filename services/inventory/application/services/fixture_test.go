package services_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	pkgcache "github.com/ghuser/brigade/pkg/cache"
	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/services/inventory/application/services"
	"github.com/ghuser/brigade/services/inventory/domain/events"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/infrastructure/persistence/memory"
)

const (
	personAna   int64 = 1
	personBruno int64 = 2
	personOld   int64 = 3
	officer     int64 = 9
)

var assignDate = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

type fakeCache struct {
	mu          sync.Mutex
	entries     map[int64]*pkgcache.CachedStock
	gens        map[int64]int64
	invalidated []int64

	// hold, when set, blocks SetIfGeneration until it is closed; each
	// finished write then reports whether it stored on written.
	hold    chan struct{}
	written chan bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[int64]*pkgcache.CachedStock), gens: make(map[int64]int64)}
}

func (c *fakeCache) Get(_ context.Context, id int64) (*pkgcache.CachedStock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[id]
	if !ok {
		return nil, redis.Nil
	}
	cp := *s
	return &cp, nil
}

func (c *fakeCache) Generation(_ context.Context, id int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id], nil
}

func (c *fakeCache) SetIfGeneration(_ context.Context, s *pkgcache.CachedStock, gen int64) (bool, error) {
	c.mu.Lock()
	hold, written := c.hold, c.written
	c.mu.Unlock()
	if hold != nil {
		<-hold
	}

	c.mu.Lock()
	stored := c.gens[s.ItemID] == gen
	if stored {
		cp := *s
		c.entries[s.ItemID] = &cp
	}
	c.mu.Unlock()

	if written != nil {
		written <- stored
	}
	return stored, nil
}

func (c *fakeCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[id]++
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

// seed stores s directly, bypassing the generation check.
func (c *fakeCache) seed(s *pkgcache.CachedStock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *s
	c.entries[s.ItemID] = &cp
}

func (c *fakeCache) holdWrites(hold chan struct{}, written chan bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hold, c.written = hold, written
}

func (c *fakeCache) has(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

func (c *fakeCache) invalidations() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.invalidated...)
}

// lockedBuffer is a bytes.Buffer safe for a logger writing from goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	store   *memory.Store
	tx      *memory.Transactor
	cache   *fakeCache
	stock   *services.StockCoordinator
	catalog *services.CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddCategory("PPE")
	store.AddCategory("Extinguishers")
	store.AddPerson(models.Person{ID: personAna, DisplayName: "Ana Ruiz", Active: true})
	store.AddPerson(models.Person{ID: personBruno, DisplayName: "Bruno Diaz", Active: true})
	store.AddPerson(models.Person{ID: personOld, DisplayName: "Retired Member", Active: false})
	store.AddPerson(models.Person{ID: officer, DisplayName: "Quartermaster", Active: true})

	tx := memory.NewTransactor(store)
	c := newFakeCache()
	log := logger.NewNop()
	return &fixture{
		store:   store,
		tx:      tx,
		cache:   c,
		stock:   services.NewStockCoordinator(tx, store, c, log, time.Second),
		catalog: services.NewCatalogService(tx, store.Readers(), store, store, c, log),
	}
}

func (f *fixture) newItem(t *testing.T, code string, qty int, ppe bool) *models.InventoryItem {
	t.Helper()
	category := "Extinguishers"
	if ppe {
		category = "PPE"
	}
	item, err := f.catalog.CreateItem(context.Background(), models.NewItemParams{
		Code:            code,
		Name:            code,
		Category:        category,
		Unit:            "unit",
		InitialQuantity: qty,
		IsPPE:           ppe,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) quantity(t *testing.T, id int64) int {
	t.Helper()
	item, err := f.store.Readers().Items.GetItem(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func (f *fixture) movements(t *testing.T, id int64) []*models.InventoryMovement {
	t.Helper()
	var out []*models.InventoryMovement
	for m, err := range f.store.Readers().Movements.GetMovementsForItem(context.Background(), id) {
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func (f *fixture) assignments(t *testing.T, id int64) []*models.EppAssignment {
	t.Helper()
	out, err := f.store.Readers().Assignments.GetAssignmentsForItem(context.Background(), id)
	require.NoError(t, err)
	return out
}

func (f *fixture) stockEvents() []events.StockMovedEvent {
	var out []events.StockMovedEvent
	for _, p := range f.store.Published() {
		if e, ok := p.Event.(events.StockMovedEvent); ok && p.Topic == events.TopicStockMoved {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) assign(t *testing.T, itemID, personID int64, qty int) *services.AssignmentResult {
	t.Helper()
	res, err := f.stock.AssignToPerson(context.Background(), services.AssignCommand{
		ItemID:              itemID,
		PersonID:            personID,
		Quantity:            qty,
		Date:                assignDate,
		ResponsiblePersonID: officer,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) requireConsistent(t *testing.T, id int64) {
	t.Helper()
	rep, err := f.catalog.Reconcile(context.Background(), id)
	require.NoError(t, err)
	require.Truef(t, rep.JournalConsistent, "journal drift: %+v", rep)
	require.Truef(t, rep.Conserved, "conservation broken: %+v", rep)
}
