package postgres

import (
	"context"

	"github.com/ghuser/brigade/pkg/database"
	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
	"github.com/ghuser/brigade/services/inventory/infrastructure/persistence/postgres/db"
)

var (
	_ repositories.PersonDirectory   = (*Directory)(nil)
	_ repositories.CategoryDirectory = (*Directory)(nil)
)

// Directory serves read-only person and category lookups.
type Directory struct {
	q *db.Queries
}

// NewDirectory returns a Directory over the pool.
func NewDirectory(database *database.Database) *Directory {
	return &Directory{q: db.New(database.DB())}
}

// GetPerson returns ErrPersonNotFound for unknown ids.
func (d *Directory) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	row, err := d.q.GetPerson(ctx, id)
	if err != nil {
		return nil, mapError("get person", err, domain.ErrPersonNotFound)
	}
	return &models.Person{ID: row.ID, DisplayName: row.DisplayName, Active: row.Active}, nil
}

// CategoryExists reports whether name is a known item category.
func (d *Directory) CategoryExists(ctx context.Context, name string) (bool, error) {
	ok, err := d.q.CategoryExists(ctx, name)
	if err != nil {
		return false, mapError("category exists", err, nil)
	}
	return ok, nil
}
