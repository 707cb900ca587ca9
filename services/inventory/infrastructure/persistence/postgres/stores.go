// Package postgres implements the inventory repositories on PostgreSQL.
//
// Row locks are taken with SELECT ... FOR UPDATE inside the transaction opened
// by Transactor, so concurrent units of work on the same item are serialized
// by the database while work on different items proceeds in parallel.
package postgres

import (
	"context"
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
	"github.com/ghuser/brigade/services/inventory/infrastructure/persistence/postgres/db"
)

// movementPageSize is the keyset page size for journal reads.
const movementPageSize = 100

var (
	_ repositories.ItemStore        = (*ItemStore)(nil)
	_ repositories.AssignmentLedger = (*AssignmentLedger)(nil)
	_ repositories.MovementJournal  = (*MovementJournal)(nil)
)

// ItemStore implements repositories.ItemStore.
type ItemStore struct {
	q *db.Queries
}

// GetItem returns ErrItemNotFound for unknown ids.
func (s *ItemStore) GetItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	row, err := s.q.GetItem(ctx, id)
	if err != nil {
		return nil, mapError("get item", err, domain.ErrItemNotFound)
	}
	return rowToItem(row), nil
}

// LockItemForUpdate takes the row lock and returns the current row.
func (s *ItemStore) LockItemForUpdate(ctx context.Context, id int64) (*models.InventoryItem, error) {
	row, err := s.q.LockItemForUpdate(ctx, id)
	if err != nil {
		return nil, mapError("lock item", err, domain.ErrItemNotFound)
	}
	return rowToItem(row), nil
}

// SetQuantity rejects negative values before reaching the CHECK constraint
// and values the INTEGER column cannot hold.
func (s *ItemStore) SetQuantity(ctx context.Context, id int64, qty int) error {
	if qty < 0 {
		return domain.ErrNegativeQuantity
	}
	if qty > domain.MaxQuantity {
		return domain.ErrQuantityTooLarge
	}
	n, err := s.q.SetItemQuantity(ctx, db.SetItemQuantityParams{ID: id, Quantity: int32(qty)})
	if err != nil {
		return mapError("set quantity", err, nil)
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// CreateItem inserts the row and sets item.ID.
func (s *ItemStore) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	if item.Quantity > domain.MaxQuantity || item.InitialQuantity > domain.MaxQuantity {
		return domain.ErrQuantityTooLarge
	}
	id, err := s.q.InsertItem(ctx, db.InsertItemParams{
		Code:            item.Code.String(),
		Name:            item.Name,
		Category:        item.Category,
		Unit:            item.Unit,
		Quantity:        int32(item.Quantity),
		InitialQuantity: int32(item.InitialQuantity),
		MinStock:        toNullInt32(item.MinStock),
		IsPpe:           item.IsPPE,
		ExpiryDate:      toNullTime(item.ExpiryDate),
		CreatedAt:       item.CreatedAt,
	})
	if err != nil {
		return mapError("insert item", err, nil)
	}
	item.ID = id
	return nil
}

// DeleteItem relies on the RESTRICT foreign keys to refuse referenced items.
func (s *ItemStore) DeleteItem(ctx context.Context, id int64) error {
	n, err := s.q.DeleteItem(ctx, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrItemInUse
		}
		return mapError("delete item", err, nil)
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ListItems returns a page ordered by code and the total row count.
func (s *ItemStore) ListItems(ctx context.Context, opts repositories.QueryOpts) ([]*models.InventoryItem, int, error) {
	limit := int32(math.MaxInt32)
	if opts.Limit > 0 {
		limit = int32(opts.Limit)
	}
	rows, err := s.q.ListItems(ctx, db.ListItemsParams{Limit: limit, Offset: int32(max(opts.Offset, 0))})
	if err != nil {
		return nil, 0, mapError("list items", err, nil)
	}
	total, err := s.q.CountItems(ctx)
	if err != nil {
		return nil, 0, mapError("count items", err, nil)
	}
	return rowsTo(rows, rowToItem), int(total), nil
}

// ListExpiring returns items expiring before the cutoff, soonest first.
func (s *ItemStore) ListExpiring(ctx context.Context, before time.Time) ([]*models.InventoryItem, error) {
	rows, err := s.q.ListExpiringItems(ctx, toNullTime(&before))
	if err != nil {
		return nil, mapError("list expiring items", err, nil)
	}
	return rowsTo(rows, rowToItem), nil
}

// AssignmentLedger implements repositories.AssignmentLedger.
type AssignmentLedger struct {
	q *db.Queries
}

// CreateAssignment inserts the row and sets a.ID.
func (l *AssignmentLedger) CreateAssignment(ctx context.Context, a *models.EppAssignment) error {
	if a.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	id, err := l.q.InsertAssignment(ctx, db.InsertAssignmentParams{
		ItemID:       a.ItemID,
		PersonID:     a.PersonID,
		Quantity:     int32(a.Quantity),
		AssignedDate: a.AssignedDate,
		Status:       string(a.Status),
		Notes:        toNullString(a.Notes),
	})
	if err != nil {
		return mapError("insert assignment", err, nil)
	}
	a.ID = id
	return nil
}

// GetAssignment returns ErrAssignmentNotFound for unknown ids.
func (l *AssignmentLedger) GetAssignment(ctx context.Context, id int64) (*models.EppAssignment, error) {
	row, err := l.q.GetAssignment(ctx, id)
	if err != nil {
		return nil, mapError("get assignment", err, domain.ErrAssignmentNotFound)
	}
	return rowToAssignment(row), nil
}

// LockAssignmentForUpdate takes the assignment row lock. Callers lock the item first.
func (l *AssignmentLedger) LockAssignmentForUpdate(ctx context.Context, id int64) (*models.EppAssignment, error) {
	row, err := l.q.LockAssignmentForUpdate(ctx, id)
	if err != nil {
		return nil, mapError("lock assignment", err, domain.ErrAssignmentNotFound)
	}
	return rowToAssignment(row), nil
}

// UpdateAssignment persists status and counters.
func (l *AssignmentLedger) UpdateAssignment(ctx context.Context, a *models.EppAssignment) error {
	n, err := l.q.UpdateAssignment(ctx, db.UpdateAssignmentParams{
		ID:                 a.ID,
		Status:             string(a.Status),
		ReturnedQuantity:   int32(a.ReturnedQuantity),
		WrittenOffQuantity: int32(a.WrittenOffQuantity),
	})
	if err != nil {
		return mapError("update assignment", err, nil)
	}
	if n == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

// GetActiveAssignmentsForPerson returns outstanding records, oldest first.
func (l *AssignmentLedger) GetActiveAssignmentsForPerson(ctx context.Context, personID int64) ([]*models.EppAssignment, error) {
	rows, err := l.q.ListActiveAssignmentsByPerson(ctx, personID)
	if err != nil {
		return nil, mapError("list active assignments", err, nil)
	}
	return rowsTo(rows, rowToAssignment), nil
}

// GetAssignmentsForItem returns every record for the item, oldest first.
func (l *AssignmentLedger) GetAssignmentsForItem(ctx context.Context, itemID int64) ([]*models.EppAssignment, error) {
	rows, err := l.q.ListAssignmentsByItem(ctx, itemID)
	if err != nil {
		return nil, mapError("list item assignments", err, nil)
	}
	return rowsTo(rows, rowToAssignment), nil
}

// MovementJournal implements repositories.MovementJournal.
type MovementJournal struct {
	q *db.Queries
}

// AppendMovement inserts one journal row. The table rejects UPDATE and DELETE.
func (j *MovementJournal) AppendMovement(ctx context.Context, m models.NewMovement) (*models.InventoryMovement, error) {
	if !m.Type.ValidDelta(m.SignedQuantity) {
		return nil, fmt.Errorf("%w: %s movement cannot carry delta %d", domain.ErrInvalidInput, m.Type, m.SignedQuantity)
	}
	occurred := m.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	row, err := j.q.InsertMovement(ctx, db.InsertMovementParams{
		ItemID:              m.ItemID,
		MovementType:        string(m.Type),
		SignedQuantity:      int32(m.SignedQuantity),
		OccurredAt:          occurred,
		ResponsiblePersonID: m.ResponsiblePersonID,
		LinkedAssignmentID:  toNullInt64(m.LinkedAssignmentID),
		Notes:               toNullString(m.Notes),
	})
	if err != nil {
		return nil, mapError("insert movement", err, nil)
	}
	return &models.InventoryMovement{
		ID:                  row.ID,
		ItemID:              m.ItemID,
		Type:                m.Type,
		SignedQuantity:      m.SignedQuantity,
		OccurredAt:          row.OccurredAt.UTC(),
		ResponsiblePersonID: m.ResponsiblePersonID,
		LinkedAssignmentID:  m.LinkedAssignmentID,
		Notes:               m.Notes,
	}, nil
}

// GetMovementsForItem pages through the journal with a descending id cursor.
// Each range starts a fresh query from the newest entry.
func (j *MovementJournal) GetMovementsForItem(ctx context.Context, itemID int64) iter.Seq2[*models.InventoryMovement, error] {
	return func(yield func(*models.InventoryMovement, error) bool) {
		var (
			rows   []db.InventoryMovement
			err    error
			cursor int64
		)
		for first := true; ; first = false {
			if first {
				rows, err = j.q.ListMovementsByItem(ctx, db.ListMovementsByItemParams{ItemID: itemID, Limit: movementPageSize})
			} else {
				rows, err = j.q.ListMovementsByItemBefore(ctx, db.ListMovementsByItemBeforeParams{ItemID: itemID, ID: cursor, Limit: movementPageSize})
			}
			if err != nil {
				yield(nil, mapError("list movements", err, nil))
				return
			}
			for _, row := range rows {
				if !yield(rowToMovement(row), nil) {
					return
				}
			}
			if len(rows) < movementPageSize {
				return
			}
			cursor = rows[len(rows)-1].ID
		}
	}
}
