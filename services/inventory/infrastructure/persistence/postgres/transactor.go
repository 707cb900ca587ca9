package postgres

import (
	"context"
	"database/sql"

	"github.com/ghuser/brigade/pkg/database"
	"github.com/ghuser/brigade/pkg/events"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
	"github.com/ghuser/brigade/services/inventory/infrastructure/persistence/postgres/db"
)

// Transactor implements repositories.Transactor with database.WithTx. The
// outbox writes through the same *sql.Tx, so events commit with the data.
type Transactor struct {
	db  *database.Database
	bus *events.EventBus
}

// NewTransactor returns a Transactor. bus may be nil, in which case events are dropped.
func NewTransactor(database *database.Database, bus *events.EventBus) *Transactor {
	return &Transactor{db: database, bus: bus}
}

// RunInTx implements repositories.Transactor.
func (t *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context, s repositories.TxStores) error) error {
	return t.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		return fn(ctx, repositories.TxStores{
			Items:       &ItemStore{q: q},
			Assignments: &AssignmentLedger{q: q},
			Movements:   &MovementJournal{q: q},
			Outbox:      &Outbox{bus: t.bus, tx: tx},
		})
	})
}

// NewReaders returns stores that query the pool outside any transaction.
func NewReaders(database *database.Database) repositories.Readers {
	q := db.New(database.DB())
	return repositories.Readers{
		Items:       &ItemStore{q: q},
		Assignments: &AssignmentLedger{q: q},
		Movements:   &MovementJournal{q: q},
	}
}
