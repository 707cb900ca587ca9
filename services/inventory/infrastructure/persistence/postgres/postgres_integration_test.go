//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/sync/errgroup"

	migrations "github.com/ghuser/brigade/migrations/inventory"
	"github.com/ghuser/brigade/pkg/config"
	"github.com/ghuser/brigade/pkg/database"
	pkgevents "github.com/ghuser/brigade/pkg/events"
	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/pkg/migrator"
	appsvcs "github.com/ghuser/brigade/services/inventory/application/services"
	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/events"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
	"github.com/ghuser/brigade/services/inventory/infrastructure/persistence/postgres"
)

const (
	ana           int64 = 1
	retired       int64 = 2
	quartermaster int64 = 9
)

var issued = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

type PostgresSuite struct {
	suite.Suite
	ctx     context.Context
	dsn     string
	db      *database.Database
	stock   *appsvcs.StockCoordinator
	catalog *appsvcs.CatalogService
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	ctr, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("brigade"),
		tcpostgres.WithUsername("brigade"),
		tcpostgres.WithPassword("password"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(s.T(), ctr)
	s.Require().NoError(err)

	s.dsn, err = ctr.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = database.NewPool(s.ctx, s.dsn, logger.NewNop())
	s.Require().NoError(err)
	s.Require().NoError(migrator.Up(s.ctx, s.db.DB(), migrations.FS))

	_, err = s.db.DB().ExecContext(s.ctx, `
		INSERT INTO persons (id, display_name, active) VALUES
			(1, 'Ana Ruiz', TRUE),
			(2, 'Retired Member', FALSE),
			(9, 'Quartermaster', TRUE)`)
	s.Require().NoError(err)

	s.stock, s.catalog = s.services(nil)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.DB().ExecContext(s.ctx,
		`TRUNCATE inventory_movements, ppe_assignments, inventory_items RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) services(bus *pkgevents.EventBus) (*appsvcs.StockCoordinator, *appsvcs.CatalogService) {
	log := logger.NewNop()
	tx := postgres.NewTransactor(s.db, bus)
	dir := postgres.NewDirectory(s.db)
	return appsvcs.NewStockCoordinator(tx, dir, nil, log, 5*time.Second),
		appsvcs.NewCatalogService(tx, postgres.NewReaders(s.db), dir, dir, nil, log)
}

func (s *PostgresSuite) newItem(code string, qty int, ppe bool) *models.InventoryItem {
	category := "Extinguishers"
	if ppe {
		category = "PPE"
	}
	item, err := s.catalog.CreateItem(s.ctx, models.NewItemParams{
		Code: code, Name: code, Category: category, Unit: "unit", InitialQuantity: qty, IsPPE: ppe,
	})
	s.Require().NoError(err)
	return item
}

func (s *PostgresSuite) movements(itemID int64) []*models.InventoryMovement {
	var out []*models.InventoryMovement
	for m, err := range s.catalog.GetMovementsForItem(s.ctx, itemID) {
		s.Require().NoError(err)
		out = append(out, m)
	}
	return out
}

func (s *PostgresSuite) assign(itemID, personID int64, qty int) (*appsvcs.AssignmentResult, error) {
	return s.stock.AssignToPerson(s.ctx, appsvcs.AssignCommand{
		ItemID: itemID, PersonID: personID, Quantity: qty, Date: issued, ResponsiblePersonID: quartermaster,
	})
}

func (s *PostgresSuite) TestAssignReturnWriteOff() {
	item := s.newItem("ERA-HELMET-01", 5, true)

	res, err := s.assign(item.ID, ana, 3)
	s.Require().NoError(err)
	s.Equal(2, res.Item.Quantity)
	s.Equal(models.StatusAssigned, res.Assignment.Status)
	s.Equal(-3, res.Movement.SignedQuantity)

	ret, err := s.stock.ReturnFromPerson(s.ctx, appsvcs.ReturnCommand{
		AssignmentID: res.Assignment.ID, Quantity: 1, ResponsiblePersonID: quartermaster,
	})
	s.Require().NoError(err)
	s.Equal(3, ret.Item.Quantity)
	s.Equal(models.StatusPartiallyReturned, ret.Assignment.Status)

	wo, err := s.stock.WriteOffAssignment(s.ctx, appsvcs.WriteOffCommand{
		AssignmentID: res.Assignment.ID, Status: models.StatusLost, ResponsiblePersonID: quartermaster,
	})
	s.Require().NoError(err)
	s.Equal(3, wo.Item.Quantity)
	s.Equal(0, wo.Movement.SignedQuantity)

	mvs := s.movements(item.ID)
	s.Require().Len(mvs, 3)
	s.Equal(models.MovementPPEWriteOff, mvs[0].Type)
	s.Equal(models.MovementPPEReturnIn, mvs[1].Type)
	s.Equal(models.MovementPPEAssignmentOut, mvs[2].Type)
	s.Equal(res.Assignment.ID, *mvs[2].LinkedAssignmentID)

	rep, err := s.catalog.Reconcile(s.ctx, item.ID)
	s.Require().NoError(err)
	s.True(rep.JournalConsistent)
	s.True(rep.Conserved)
	s.Equal(2, rep.WrittenOff)

	active, err := s.catalog.GetActiveAssignmentsForPerson(s.ctx, ana)
	s.Require().NoError(err)
	s.Empty(active)
}

func (s *PostgresSuite) TestRejectionsWriteNothing() {
	item := s.newItem("GLOVES-L", 5, true)
	ext := s.newItem("EXT-CO2-01", 2, false)

	_, err := s.assign(item.ID, ana, 6)
	var ise *domain.InsufficientStockError
	s.Require().True(errors.As(err, &ise), "got %v", err)
	s.Equal(5, ise.Available)

	_, err = s.assign(item.ID, 77, 1)
	s.ErrorIs(err, domain.ErrPersonNotFound)
	_, err = s.assign(item.ID, retired, 1)
	s.ErrorIs(err, domain.ErrPersonNotFound)
	_, err = s.assign(ext.ID, ana, 1)
	s.ErrorIs(err, domain.ErrNotPPE)
	_, err = s.assign(999, ana, 1)
	s.ErrorIs(err, domain.ErrItemNotFound)

	got, err := s.catalog.GetItem(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(5, got.Quantity)
	s.Empty(s.movements(item.ID))
	assignments, err := s.catalog.GetAssignmentsForItem(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Empty(assignments)
}

func (s *PostgresSuite) TestConcurrentAssignmentsNeverOversell() {
	item := s.newItem("SCBA-MASK", 10, true)

	var ok, short atomic.Int32
	var g errgroup.Group
	for range 25 {
		g.Go(func() error {
			_, err := s.assign(item.ID, ana, 1)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				short.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(int32(10), ok.Load())
	s.Equal(int32(15), short.Load())

	got, err := s.catalog.GetItem(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Zero(got.Quantity)
	s.Len(s.movements(item.ID), 10)

	rep, err := s.catalog.Reconcile(s.ctx, item.ID)
	s.Require().NoError(err)
	s.True(rep.JournalConsistent)
	s.True(rep.Conserved)
}

func (s *PostgresSuite) TestStockOperations() {
	item := s.newItem("FOAM-AFFF", 10, false)

	res, err := s.stock.ConsumeStock(s.ctx, appsvcs.StockCommand{ItemID: item.ID, Quantity: 4, ResponsiblePersonID: quartermaster})
	s.Require().NoError(err)
	s.Equal(6, res.Item.Quantity)

	_, err = s.stock.ConsumeStock(s.ctx, appsvcs.StockCommand{ItemID: item.ID, Quantity: 7, ResponsiblePersonID: quartermaster})
	s.ErrorIs(err, domain.ErrInsufficientStock)

	res, err = s.stock.AdjustStock(s.ctx, appsvcs.AdjustCommand{ItemID: item.ID, Delta: 2, ResponsiblePersonID: quartermaster})
	s.Require().NoError(err)
	s.Equal(models.MovementPositiveAdjustment, res.Movement.Type)

	res, err = s.stock.ReceiveStock(s.ctx, appsvcs.StockCommand{ItemID: item.ID, Quantity: 5, ResponsiblePersonID: quartermaster})
	s.Require().NoError(err)
	s.Equal(13, res.Item.Quantity)

	rep, err := s.catalog.Reconcile(s.ctx, item.ID)
	s.Require().NoError(err)
	s.True(rep.JournalConsistent)
	s.Equal(3, rep.JournalDelta)
}

func (s *PostgresSuite) TestQuantitiesBeyondIntegerColumn() {
	item := s.newItem("HOSE-COUPLING", 5, false)

	_, err := s.stock.ReceiveStock(s.ctx, appsvcs.StockCommand{ItemID: item.ID, Quantity: 4294967299, ResponsiblePersonID: quartermaster})
	s.ErrorIs(err, domain.ErrQuantityTooLarge)

	tx := postgres.NewTransactor(s.db, nil)
	err = tx.RunInTx(s.ctx, func(ctx context.Context, st repositories.TxStores) error {
		if _, err := st.Items.LockItemForUpdate(ctx, item.ID); err != nil {
			return err
		}
		return st.Items.SetQuantity(ctx, item.ID, 4294967304)
	})
	s.ErrorIs(err, domain.ErrInvalidInput)

	got, err := s.catalog.GetItem(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(5, got.Quantity)
	s.Empty(s.movements(item.ID))
}

func (s *PostgresSuite) TestCatalogConstraints() {
	item := s.newItem("HOOD-01", 2, true)

	_, err := s.catalog.CreateItem(s.ctx, models.NewItemParams{Code: "hood-01", Name: "dup", Category: "PPE", Unit: "unit"})
	s.ErrorIs(err, domain.ErrItemAlreadyExists)

	_, err = s.catalog.CreateItem(s.ctx, models.NewItemParams{Code: "BOAT-01", Name: "boat", Category: "Boats", Unit: "unit"})
	s.ErrorIs(err, domain.ErrCategoryNotFound)

	_, err = s.assign(item.ID, ana, 1)
	s.Require().NoError(err)
	s.ErrorIs(s.catalog.DeleteItem(s.ctx, item.ID), domain.ErrItemInUse)

	free := s.newItem("HOOD-02", 1, true)
	s.Require().NoError(s.catalog.DeleteItem(s.ctx, free.ID))
	_, err = s.catalog.GetItem(s.ctx, free.ID)
	s.ErrorIs(err, domain.ErrItemNotFound)
}

func (s *PostgresSuite) TestMovementsAreAppendOnly() {
	item := s.newItem("BOOTS-42", 3, true)
	_, err := s.assign(item.ID, ana, 1)
	s.Require().NoError(err)

	_, err = s.db.DB().ExecContext(s.ctx, `UPDATE inventory_movements SET signed_quantity = -2`)
	s.Error(err)
	_, err = s.db.DB().ExecContext(s.ctx, `DELETE FROM inventory_movements`)
	s.Error(err)
}

func (s *PostgresSuite) TestExpiringItems() {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	for code, days := range map[string]int{"EXP-SOON": 10, "EXP-LATER": 200} {
		exp := now.AddDate(0, 0, days)
		_, err := s.catalog.CreateItem(s.ctx, models.NewItemParams{
			Code: code, Name: code, Category: "PPE", Unit: "unit", InitialQuantity: 1, IsPPE: true, ExpiryDate: &exp,
		})
		s.Require().NoError(err)
	}

	items, err := s.catalog.ExpiringItems(s.ctx, now, 30*24*time.Hour)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(models.ItemCode("EXP-SOON"), items[0].Code)
}

func (s *PostgresSuite) TestOutboxDeliversCommittedMovements() {
	ctx, cancel := context.WithTimeout(s.ctx, time.Minute)
	defer cancel()

	bus, err := pkgevents.NewEventBus(&config.Config{DatabaseURL: s.dsn, ServiceName: "brigade-test"}, logger.NewNop(),
		pkgevents.Options{ConsumerGroup: "integration", Forwarder: true})
	s.Require().NoError(err)
	defer bus.Close() //nolint:errcheck
	s.Require().NoError(bus.StartForwarder(ctx))

	received := make(chan events.StockMovedEvent, 4)
	_, err = bus.Subscribe(ctx, events.TopicStockMoved, func(_ context.Context, msg *message.Message) error {
		evt, err := pkgevents.Decode[events.StockMovedEvent](msg)
		if err != nil {
			return err
		}
		received <- evt
		return nil
	})
	s.Require().NoError(err)

	stock, catalog := s.services(bus)
	item, err := catalog.CreateItem(ctx, models.NewItemParams{
		Code: "OUTBOX-01", Name: "Helmet", Category: "PPE", Unit: "unit", InitialQuantity: 2, IsPPE: true,
	})
	s.Require().NoError(err)

	// Rolled back: nothing may reach the topic.
	_, err = stock.AssignToPerson(ctx, appsvcs.AssignCommand{ItemID: item.ID, PersonID: ana, Quantity: 5, Date: issued, ResponsiblePersonID: quartermaster})
	s.Require().ErrorIs(err, domain.ErrInsufficientStock)

	res, err := stock.AssignToPerson(ctx, appsvcs.AssignCommand{ItemID: item.ID, PersonID: ana, Quantity: 2, Date: issued, ResponsiblePersonID: quartermaster})
	s.Require().NoError(err)

	select {
	case evt := <-received:
		s.Equal(res.Movement.ID, evt.MovementID)
		s.Equal(item.ID, evt.ItemID)
		s.Equal(0, evt.QuantityAfter)
		s.Equal(-2, evt.SignedQuantity)
	case <-ctx.Done():
		s.FailNow("stock moved event not delivered")
	}

	select {
	case evt := <-received:
		s.Failf("unexpected event", "%+v", evt)
	case <-time.After(2 * time.Second):
	}
}
