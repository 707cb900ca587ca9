package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
)

// movementPageSize bounds how many journal entries are copied per page.
const movementPageSize = 50

var (
	errNoTx   = errors.New("memory: write outside a transaction")
	errTxDone = errors.New("memory: transaction already committed")
)

// session implements every store. With a nil tx it is a read-only view of
// committed state; otherwise reads see the tx's own staged writes.
type session struct {
	s *Store
	t *tx
}

var (
	_ repositories.ItemStore        = (*session)(nil)
	_ repositories.AssignmentLedger = (*session)(nil)
	_ repositories.MovementJournal  = (*session)(nil)
	_ repositories.EventOutbox      = (*session)(nil)
)

func (ses *session) writable() error {
	if ses.t == nil {
		return errNoTx
	}
	if ses.t.done {
		return errTxDone
	}
	return nil
}

// item returns a copy of the item as seen by this session. Caller holds s.mu.RLock.
func (ses *session) item(id int64) (*models.InventoryItem, bool) {
	if ses.t != nil {
		if _, gone := ses.t.deleted[id]; gone {
			return nil, false
		}
		if it, ok := ses.t.items[id]; ok {
			cp := *it
			return &cp, true
		}
	}
	it, ok := ses.s.items[id]
	if !ok {
		return nil, false
	}
	cp := *it
	return &cp, true
}

func (ses *session) allItems() []*models.InventoryItem {
	ids := make(map[int64]struct{}, len(ses.s.items))
	for id := range ses.s.items {
		ids[id] = struct{}{}
	}
	if ses.t != nil {
		for id := range ses.t.items {
			ids[id] = struct{}{}
		}
	}
	out := make([]*models.InventoryItem, 0, len(ids))
	for id := range ids {
		if it, ok := ses.item(id); ok {
			out = append(out, it)
		}
	}
	return out
}

// GetItem implements repositories.ItemReader.
func (ses *session) GetItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ses.s.mu.RLock()
	defer ses.s.mu.RUnlock()
	it, ok := ses.item(id)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return it, nil
}

// ListItems implements repositories.ItemReader.
func (ses *session) ListItems(ctx context.Context, opts repositories.QueryOpts) ([]*models.InventoryItem, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	ses.s.mu.RLock()
	all := ses.allItems()
	ses.s.mu.RUnlock()

	slices.SortFunc(all, func(a, b *models.InventoryItem) int { return cmp.Compare(a.Code, b.Code) })
	total := len(all)
	start := min(max(opts.Offset, 0), total)
	end := total
	if opts.Limit > 0 {
		end = min(start+opts.Limit, total)
	}
	return all[start:end], total, nil
}

// ListExpiring implements repositories.ItemReader.
func (ses *session) ListExpiring(ctx context.Context, before time.Time) ([]*models.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ses.s.mu.RLock()
	all := ses.allItems()
	ses.s.mu.RUnlock()

	out := slices.DeleteFunc(all, func(it *models.InventoryItem) bool { return !it.ExpiresBefore(before) })
	slices.SortFunc(out, func(a, b *models.InventoryItem) int {
		if c := a.ExpiryDate.Compare(*b.ExpiryDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// LockItemForUpdate implements repositories.ItemStore.
func (ses *session) LockItemForUpdate(ctx context.Context, id int64) (*models.InventoryItem, error) {
	if err := ses.writable(); err != nil {
		return nil, err
	}
	if err := ses.t.lock(ctx, id); err != nil {
		return nil, err
	}
	return ses.GetItem(ctx, id)
}

// SetQuantity implements repositories.ItemStore.
func (ses *session) SetQuantity(ctx context.Context, id int64, qty int) error {
	if err := ses.writable(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if qty < 0 {
		return domain.ErrNegativeQuantity
	}
	if qty > domain.MaxQuantity {
		return domain.ErrQuantityTooLarge
	}
	if !ses.t.holds(id) {
		return fmt.Errorf("memory: set quantity of item %d without holding its lock", id)
	}
	ses.s.mu.RLock()
	it, ok := ses.item(id)
	ses.s.mu.RUnlock()
	if !ok {
		return domain.ErrItemNotFound
	}
	it.Quantity = qty
	ses.t.items[id] = it
	return nil
}

// CreateItem implements repositories.ItemStore.
func (ses *session) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	if err := ses.writable(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.Quantity > domain.MaxQuantity || item.InitialQuantity > domain.MaxQuantity {
		return domain.ErrQuantityTooLarge
	}
	ses.s.mu.RLock()
	for _, other := range ses.allItems() {
		if other.Code == item.Code {
			ses.s.mu.RUnlock()
			return domain.ErrItemAlreadyExists
		}
	}
	ses.s.mu.RUnlock()

	item.ID = ses.s.itemSeq.Add(1)
	cp := *item
	ses.t.items[item.ID] = &cp
	return nil
}

// DeleteItem implements repositories.ItemStore.
func (ses *session) DeleteItem(ctx context.Context, id int64) error {
	if err := ses.writable(); err != nil {
		return err
	}
	if err := ses.t.lock(ctx, id); err != nil {
		return err
	}
	ses.s.mu.RLock()
	defer ses.s.mu.RUnlock()
	if _, ok := ses.item(id); !ok {
		return domain.ErrItemNotFound
	}
	if ses.referenced(id) {
		return domain.ErrItemInUse
	}
	delete(ses.t.items, id)
	ses.t.deleted[id] = struct{}{}
	return nil
}

// referenced reports whether any assignment or movement points at the item. Caller holds s.mu.RLock.
func (ses *session) referenced(itemID int64) bool {
	for _, a := range ses.s.assignments {
		if a.ItemID == itemID {
			return true
		}
	}
	for _, m := range ses.s.movements {
		if m.ItemID == itemID {
			return true
		}
	}
	for _, a := range ses.t.assignments {
		if a.ItemID == itemID {
			return true
		}
	}
	for _, m := range ses.t.movements {
		if m.ItemID == itemID {
			return true
		}
	}
	return false
}

func (ses *session) assignment(id int64) (*models.EppAssignment, bool) {
	if ses.t != nil {
		if a, ok := ses.t.assignments[id]; ok {
			cp := *a
			return &cp, true
		}
	}
	a, ok := ses.s.assignments[id]
	if !ok {
		return nil, false
	}
	cp := *a
	return &cp, true
}

func (ses *session) filterAssignments(keep func(*models.EppAssignment) bool) []*models.EppAssignment {
	ses.s.mu.RLock()
	defer ses.s.mu.RUnlock()

	ids := make(map[int64]struct{})
	for id := range ses.s.assignments {
		ids[id] = struct{}{}
	}
	if ses.t != nil {
		for id := range ses.t.assignments {
			ids[id] = struct{}{}
		}
	}
	var out []*models.EppAssignment
	for id := range ids {
		if a, _ := ses.assignment(id); keep(a) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b *models.EppAssignment) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// GetAssignment implements repositories.AssignmentReader.
func (ses *session) GetAssignment(ctx context.Context, id int64) (*models.EppAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ses.s.mu.RLock()
	defer ses.s.mu.RUnlock()
	a, ok := ses.assignment(id)
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	return a, nil
}

// GetActiveAssignmentsForPerson implements repositories.AssignmentReader.
func (ses *session) GetActiveAssignmentsForPerson(ctx context.Context, personID int64) ([]*models.EppAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ses.filterAssignments(func(a *models.EppAssignment) bool {
		return a.PersonID == personID && a.Status.Outstanding()
	}), nil
}

// GetAssignmentsForItem implements repositories.AssignmentReader.
func (ses *session) GetAssignmentsForItem(ctx context.Context, itemID int64) ([]*models.EppAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ses.filterAssignments(func(a *models.EppAssignment) bool { return a.ItemID == itemID }), nil
}

// CreateAssignment implements repositories.AssignmentLedger.
func (ses *session) CreateAssignment(ctx context.Context, a *models.EppAssignment) error {
	if err := ses.writable(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	ses.s.mu.RLock()
	_, itemOK := ses.item(a.ItemID)
	_, personOK := ses.s.persons[a.PersonID]
	ses.s.mu.RUnlock()
	if !itemOK {
		return domain.ErrItemNotFound
	}
	if !personOK {
		return domain.ErrPersonNotFound
	}

	a.ID = ses.s.assignmentSeq.Add(1)
	cp := *a
	ses.t.assignments[a.ID] = &cp
	return nil
}

// LockAssignmentForUpdate implements repositories.AssignmentLedger. The
// assignment is guarded by its item's lock, which the caller already holds.
func (ses *session) LockAssignmentForUpdate(ctx context.Context, id int64) (*models.EppAssignment, error) {
	if err := ses.writable(); err != nil {
		return nil, err
	}
	a, err := ses.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ses.t.holds(a.ItemID) {
		return nil, fmt.Errorf("memory: lock assignment %d without holding item %d", id, a.ItemID)
	}
	return a, nil
}

// UpdateAssignment implements repositories.AssignmentLedger.
func (ses *session) UpdateAssignment(ctx context.Context, a *models.EppAssignment) error {
	if err := ses.writable(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.ReturnedQuantity+a.WrittenOffQuantity > a.Quantity || a.ReturnedQuantity < 0 || a.WrittenOffQuantity < 0 {
		return domain.ErrReturnExceedsHolding
	}
	ses.s.mu.RLock()
	_, ok := ses.assignment(a.ID)
	ses.s.mu.RUnlock()
	if !ok {
		return domain.ErrAssignmentNotFound
	}
	cp := *a
	ses.t.assignments[a.ID] = &cp
	return nil
}

// AppendMovement implements repositories.MovementJournal.
func (ses *session) AppendMovement(ctx context.Context, m models.NewMovement) (*models.InventoryMovement, error) {
	if err := ses.writable(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !m.Type.ValidDelta(m.SignedQuantity) {
		return nil, fmt.Errorf("%w: %s movement cannot carry delta %d", domain.ErrInvalidInput, m.Type, m.SignedQuantity)
	}
	ses.s.mu.RLock()
	_, ok := ses.item(m.ItemID)
	ses.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrItemNotFound
	}

	occurred := m.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	mv := &models.InventoryMovement{
		ID:                  ses.s.movementSeq.Add(1),
		ItemID:              m.ItemID,
		Type:                m.Type,
		SignedQuantity:      m.SignedQuantity,
		OccurredAt:          occurred,
		ResponsiblePersonID: m.ResponsiblePersonID,
		LinkedAssignmentID:  m.LinkedAssignmentID,
		Notes:               m.Notes,
	}
	ses.t.movements = append(ses.t.movements, mv)
	cp := *mv
	return &cp, nil
}

// GetMovementsForItem implements repositories.MovementReader. Pages are read
// by descending ID below a cursor, so each range starts from the newest entry.
func (ses *session) GetMovementsForItem(ctx context.Context, itemID int64) iter.Seq2[*models.InventoryMovement, error] {
	return func(yield func(*models.InventoryMovement, error) bool) {
		var cursor int64 = -1
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			page := ses.movementPage(itemID, cursor)
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
			}
			if len(page) < movementPageSize {
				return
			}
			cursor = page[len(page)-1].ID
		}
	}
}

// movementPage returns up to movementPageSize entries with ID < cursor (any ID
// when cursor is negative), newest first.
func (ses *session) movementPage(itemID, cursor int64) []*models.InventoryMovement {
	ses.s.mu.RLock()
	defer ses.s.mu.RUnlock()

	var all []*models.InventoryMovement
	all = append(all, ses.s.movements...)
	if ses.t != nil {
		all = append(all, ses.t.movements...)
	}
	slices.SortFunc(all, func(a, b *models.InventoryMovement) int { return cmp.Compare(b.ID, a.ID) })

	page := make([]*models.InventoryMovement, 0, movementPageSize)
	for _, m := range all {
		if m.ItemID != itemID || (cursor >= 0 && m.ID >= cursor) {
			continue
		}
		cp := *m
		page = append(page, &cp)
		if len(page) == movementPageSize {
			break
		}
	}
	return page
}

// Publish implements repositories.EventOutbox.
func (ses *session) Publish(ctx context.Context, topic string, event any) error {
	if err := ses.writable(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ses.t.published = append(ses.t.published, Published{Topic: topic, Event: event})
	return nil
}
