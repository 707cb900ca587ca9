package repositories

import (
	"context"
	"iter"
	"time"

	"github.com/ghuser/brigade/services/inventory/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// ItemReader is the read side of the Item Store.
type ItemReader interface {
	GetItem(ctx context.Context, id int64) (*models.InventoryItem, error)

	// ListItems returns a page of items ordered by code, and the total count.
	ListItems(ctx context.Context, opts QueryOpts) ([]*models.InventoryItem, int, error)

	// ListExpiring returns items whose expiry date is before the cutoff, soonest first.
	ListExpiring(ctx context.Context, before time.Time) ([]*models.InventoryItem, error)
}

// ItemStore owns item rows and their quantity. Mutating methods are only
// valid on the stores handed out by Transactor.RunInTx.
type ItemStore interface {
	ItemReader

	// LockItemForUpdate reads the item and holds an exclusive lock on it until
	// the enclosing transaction ends. Blocks while another transaction holds it.
	LockItemForUpdate(ctx context.Context, id int64) (*models.InventoryItem, error)

	// SetQuantity overwrites the current quantity. Returns ErrNegativeQuantity for qty < 0.
	SetQuantity(ctx context.Context, id int64, qty int) error

	// CreateItem inserts item and sets its ID.
	CreateItem(ctx context.Context, item *models.InventoryItem) error

	// DeleteItem removes an item. Returns ErrItemInUse while movements or
	// assignments reference it.
	DeleteItem(ctx context.Context, id int64) error
}

// AssignmentReader is the read side of the Assignment Ledger.
type AssignmentReader interface {
	GetAssignment(ctx context.Context, id int64) (*models.EppAssignment, error)

	// GetActiveAssignmentsForPerson returns Assigned and PartiallyReturned records, oldest first.
	GetActiveAssignmentsForPerson(ctx context.Context, personID int64) ([]*models.EppAssignment, error)

	// GetAssignmentsForItem returns every assignment ever made for the item, oldest first.
	GetAssignmentsForItem(ctx context.Context, itemID int64) ([]*models.EppAssignment, error)
}

// AssignmentLedger holds who currently holds what. It does not validate
// against stock; its caller already has.
type AssignmentLedger interface {
	AssignmentReader

	// CreateAssignment inserts a and sets its ID. Quantity must be at least 1.
	CreateAssignment(ctx context.Context, a *models.EppAssignment) error

	LockAssignmentForUpdate(ctx context.Context, id int64) (*models.EppAssignment, error)

	// UpdateAssignment persists status and the returned/written-off counters.
	UpdateAssignment(ctx context.Context, a *models.EppAssignment) error
}

// MovementReader is the read side of the Movement Journal.
type MovementReader interface {
	// GetMovementsForItem lazily yields the item's journal newest first. The
	// sequence is finite and can be ranged over again to re-read from the top.
	GetMovementsForItem(ctx context.Context, itemID int64) iter.Seq2[*models.InventoryMovement, error]
}

// MovementJournal is the append-only audit log. There is no update or delete.
type MovementJournal interface {
	MovementReader

	AppendMovement(ctx context.Context, m models.NewMovement) (*models.InventoryMovement, error)
}

// EventOutbox publishes integration events atomically with the enclosing transaction.
type EventOutbox interface {
	Publish(ctx context.Context, topic string, event any) error
}

// TxStores are the stores bound to a single unit of work.
type TxStores struct {
	Items       ItemStore
	Assignments AssignmentLedger
	Movements   MovementJournal
	Outbox      EventOutbox
}

// Readers are the stores used outside of a unit of work.
type Readers struct {
	Items       ItemReader
	Assignments AssignmentReader
	Movements   MovementReader
}

// Transactor runs fn as one atomic unit of work. If fn returns an error, or
// ctx ends before commit, every write made through the stores is discarded.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s TxStores) error) error
}

// PersonDirectory resolves brigade members. Returns ErrPersonNotFound for unknown ids.
type PersonDirectory interface {
	GetPerson(ctx context.Context, id int64) (*models.Person, error)
}

// CategoryDirectory is a read-only lookup of item categories.
type CategoryDirectory interface {
	CategoryExists(ctx context.Context, name string) (bool, error)
}
