// Package memory is an in-process implementation of the inventory repositories.
//
// Each item has its own lock, a one-slot channel, so transactions touching
// different items run in parallel while those touching the same item queue up.
// Writes are staged on the transaction and applied under the store mutex on
// commit; a rolled back transaction leaves no trace.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
)

// Published is an event accepted by a committed transaction.
type Published struct {
	Topic string
	Event any
}

// Store holds the committed state.
type Store struct {
	mu          sync.RWMutex
	items       map[int64]*models.InventoryItem
	assignments map[int64]*models.EppAssignment
	movements   []*models.InventoryMovement // ascending by ID
	persons     map[int64]*models.Person
	categories  map[string]struct{}
	published   []Published

	lockMu sync.Mutex
	locks  map[int64]chan struct{}

	itemSeq       atomic.Int64
	assignmentSeq atomic.Int64
	movementSeq   atomic.Int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		items:       make(map[int64]*models.InventoryItem),
		assignments: make(map[int64]*models.EppAssignment),
		persons:     make(map[int64]*models.Person),
		categories:  make(map[string]struct{}),
		locks:       make(map[int64]chan struct{}),
	}
}

// AddPerson registers a person in the directory.
func (s *Store) AddPerson(p models.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons[p.ID] = &p
}

// AddCategory registers an item category.
func (s *Store) AddCategory(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[name] = struct{}{}
}

// Readers returns stores that read committed state only.
func (s *Store) Readers() repositories.Readers {
	ses := &session{s: s}
	return repositories.Readers{Items: ses, Assignments: ses, Movements: ses}
}

// Published returns a copy of every event committed so far, in commit order.
func (s *Store) Published() []Published {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.published)
}

// GetPerson implements repositories.PersonDirectory.
func (s *Store) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	if !ok {
		return nil, domain.ErrPersonNotFound
	}
	cp := *p
	return &cp, nil
}

// CategoryExists implements repositories.CategoryDirectory.
func (s *Store) CategoryExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.categories[name]
	return ok, nil
}

// itemLock returns the lock channel for id, creating it only for a committed
// item or one staged by the calling transaction. lockMu and mu are never held
// together.
func (s *Store) itemLock(id int64, staged bool) (chan struct{}, error) {
	s.lockMu.Lock()
	ch, ok := s.locks[id]
	s.lockMu.Unlock()
	if ok {
		return ch, nil
	}

	if !staged {
		s.mu.RLock()
		_, exists := s.items[id]
		s.mu.RUnlock()
		if !exists {
			return nil, domain.ErrItemNotFound
		}
	}

	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if ch, ok := s.locks[id]; ok {
		return ch, nil
	}
	ch = make(chan struct{}, 1)
	s.locks[id] = ch
	return ch, nil
}

func (s *Store) dropLock(id int64) {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	delete(s.locks, id)
}

// Transactor runs units of work against a Store.
type Transactor struct {
	store *Store

	// WrapStores, when set, decorates the stores handed to every unit of work.
	WrapStores func(repositories.TxStores) repositories.TxStores
}

// NewTransactor returns a Transactor over store.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// RunInTx implements repositories.Transactor. The staged writes are applied
// only if fn succeeds and ctx is still live.
func (tr *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context, s repositories.TxStores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := newTx(tr.store)
	defer t.release()

	ses := &session{s: tr.store, t: t}
	stores := repositories.TxStores{Items: ses, Assignments: ses, Movements: ses, Outbox: ses}
	if tr.WrapStores != nil {
		stores = tr.WrapStores(stores)
	}

	if err := fn(ctx, stores); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.commit()
}

type tx struct {
	s           *Store
	held        map[int64]chan struct{}
	items       map[int64]*models.InventoryItem
	deleted     map[int64]struct{}
	assignments map[int64]*models.EppAssignment
	movements   []*models.InventoryMovement
	published   []Published
	done        bool
}

func newTx(s *Store) *tx {
	return &tx{
		s:           s,
		held:        make(map[int64]chan struct{}),
		items:       make(map[int64]*models.InventoryItem),
		deleted:     make(map[int64]struct{}),
		assignments: make(map[int64]*models.EppAssignment),
	}
}

func (t *tx) lock(ctx context.Context, id int64) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	_, staged := t.items[id]
	ch, err := t.s.itemLock(id, staged)
	if err != nil {
		return err
	}
	select {
	case ch <- struct{}{}:
		t.held[id] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *tx) holds(id int64) bool {
	_, ok := t.held[id]
	return ok
}

func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, staged := range t.items {
		for otherID, other := range s.items {
			if otherID != id && other.Code == staged.Code {
				return domain.ErrItemAlreadyExists
			}
		}
	}

	for id := range t.deleted {
		delete(s.items, id)
	}
	for id, item := range t.items {
		s.items[id] = item
	}
	for id, a := range t.assignments {
		s.assignments[id] = a
	}
	if len(t.movements) > 0 {
		s.movements = append(s.movements, t.movements...)
		slices.SortFunc(s.movements, func(a, b *models.InventoryMovement) int { return cmp.Compare(a.ID, b.ID) })
	}
	s.published = append(s.published, t.published...)
	t.done = true
	return nil
}

// release frees every item lock held by t and forgets the locks of items the
// committed transaction deleted. Safe to call more than once.
func (t *tx) release() {
	for id, ch := range t.held {
		<-ch
		delete(t.held, id)
		if _, gone := t.deleted[id]; gone && t.done {
			t.s.dropLock(id)
		}
	}
}
