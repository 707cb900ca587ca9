package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/services/inventory/application/services"
	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
)

func TestAssignToPerson_DeductsStockAndJournals(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "ERA-HELMET-01", 5, true)

	res := f.assign(t, item.ID, personAna, 3)

	assert.Equal(t, 2, res.Item.Quantity)
	assert.Equal(t, 2, f.quantity(t, item.ID))

	as := f.assignments(t, item.ID)
	require.Len(t, as, 1)
	assert.Equal(t, models.StatusAssigned, as[0].Status)
	assert.Equal(t, 3, as[0].Quantity)
	assert.Equal(t, personAna, as[0].PersonID)
	assert.True(t, as[0].AssignedDate.Equal(assignDate))

	mvs := f.movements(t, item.ID)
	require.Len(t, mvs, 1)
	assert.Equal(t, models.MovementPPEAssignmentOut, mvs[0].Type)
	assert.Equal(t, -3, mvs[0].SignedQuantity)
	assert.Equal(t, officer, mvs[0].ResponsiblePersonID)
	require.NotNil(t, mvs[0].LinkedAssignmentID)
	assert.Equal(t, res.Assignment.ID, *mvs[0].LinkedAssignmentID)

	evts := f.stockEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, 2, evts[0].QuantityAfter)
	assert.Equal(t, mvs[0].ID, evts[0].MovementID)
	assert.Equal(t, "ERA-HELMET-01", evts[0].ItemCode)

	assert.Contains(t, f.cache.invalidations(), item.ID)
	f.requireConsistent(t, item.ID)
}

func TestAssignToPerson_InsufficientStockLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "ERA-HELMET-01", 5, true)
	f.assign(t, item.ID, personAna, 3)

	_, err := f.stock.AssignToPerson(context.Background(), services.AssignCommand{
		ItemID: item.ID, PersonID: personBruno, Quantity: 5, Date: assignDate, ResponsiblePersonID: officer,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 5, ise.Requested)

	assert.Equal(t, 2, f.quantity(t, item.ID))
	assert.Len(t, f.assignments(t, item.ID), 1)
	assert.Len(t, f.movements(t, item.ID), 1)
	assert.Len(t, f.stockEvents(), 1)
}

func TestAssignToPerson_NonPPEItem(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "EXTINGUISHER-02", 4, false)

	_, err := f.stock.AssignToPerson(context.Background(), services.AssignCommand{
		ItemID: item.ID, PersonID: personAna, Quantity: 1, Date: assignDate, ResponsiblePersonID: officer,
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
	require.ErrorIs(t, err, domain.ErrNotPPE)

	assert.Equal(t, 4, f.quantity(t, item.ID))
	assert.Empty(t, f.assignments(t, item.ID))
	assert.Empty(t, f.movements(t, item.ID))
}

func TestAssignToPerson_Rejections(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "GLOVES-L", 5, true)

	tests := []struct {
		name string
		cmd  services.AssignCommand
		want error
	}{
		{"unknown item", services.AssignCommand{ItemID: 999, PersonID: personAna, Quantity: 1, Date: assignDate}, domain.ErrItemNotFound},
		{"zero quantity", services.AssignCommand{ItemID: item.ID, PersonID: personAna, Quantity: 0, Date: assignDate}, domain.ErrInvalidInput},
		{"negative quantity", services.AssignCommand{ItemID: item.ID, PersonID: personAna, Quantity: -2, Date: assignDate}, domain.ErrInvalidQuantity},
		{"missing date", services.AssignCommand{ItemID: item.ID, PersonID: personAna, Quantity: 1}, domain.ErrInvalidDate},
		{"unknown person", services.AssignCommand{ItemID: item.ID, PersonID: 404, Quantity: 1, Date: assignDate}, domain.ErrPersonNotFound},
		{"inactive person", services.AssignCommand{ItemID: item.ID, PersonID: personOld, Quantity: 1, Date: assignDate}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cmd.ResponsiblePersonID = officer
			_, err := f.stock.AssignToPerson(context.Background(), tt.cmd)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, domain.IsBusinessError(err))
		})
	}

	assert.Equal(t, 5, f.quantity(t, item.ID))
	assert.Empty(t, f.movements(t, item.ID))
	assert.Empty(t, f.stockEvents())
}

type failingJournal struct {
	repositories.MovementJournal
	err error
}

func (j failingJournal) AppendMovement(context.Context, models.NewMovement) (*models.InventoryMovement, error) {
	return nil, j.err
}

func TestAssignToPerson_JournalFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "BOOTS-42", 5, true)

	disk := errors.New("disk full")
	f.tx.WrapStores = func(s repositories.TxStores) repositories.TxStores {
		s.Movements = failingJournal{MovementJournal: s.Movements, err: disk}
		return s
	}

	_, err := f.stock.AssignToPerson(context.Background(), services.AssignCommand{
		ItemID: item.ID, PersonID: personAna, Quantity: 2, Date: assignDate, ResponsiblePersonID: officer,
	})
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	require.ErrorIs(t, err, disk)
	assert.False(t, domain.IsBusinessError(err))

	f.tx.WrapStores = nil
	assert.Equal(t, 5, f.quantity(t, item.ID))
	assert.Empty(t, f.assignments(t, item.ID))
	assert.Empty(t, f.movements(t, item.ID))
	assert.Empty(t, f.stockEvents())
	assert.NotContains(t, f.cache.invalidations(), item.ID)

	// The identical request succeeds once storage recovers.
	res := f.assign(t, item.ID, personAna, 2)
	assert.Equal(t, 3, res.Item.Quantity)
	f.requireConsistent(t, item.ID)
}

func TestAssignToPerson_ConcurrentCallsOnOneItem(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "SCBA-MASK", 5, true)

	var ok, short atomic.Int32
	var g errgroup.Group
	for _, p := range []int64{personAna, personBruno} {
		g.Go(func() error {
			_, err := f.stock.AssignToPerson(context.Background(), services.AssignCommand{
				ItemID: item.ID, PersonID: p, Quantity: 3, Date: assignDate, ResponsiblePersonID: officer,
			})
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
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 1, short.Load())
	assert.Equal(t, 2, f.quantity(t, item.ID))
	assert.Len(t, f.assignments(t, item.ID), 1)
	assert.Len(t, f.movements(t, item.ID), 1)
	f.requireConsistent(t, item.ID)
}

func TestAssignToPerson_ManyConcurrentCallersNeverOversell(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "HOOD-NOMEX", 7, true)
	other := f.newItem(t, "HOOD-SPARE", 7, true)

	var ok atomic.Int32
	var g errgroup.Group
	for i := 0; i < 30; i++ {
		target := item.ID
		if i%2 == 1 {
			target = other.ID
		}
		g.Go(func() error {
			_, err := f.stock.AssignToPerson(context.Background(), services.AssignCommand{
				ItemID: target, PersonID: personAna, Quantity: 1, Date: assignDate, ResponsiblePersonID: officer,
			})
			if err == nil {
				ok.Add(1)
				return nil
			}
			if errors.Is(err, domain.ErrInsufficientStock) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 14, ok.Load())
	assert.Equal(t, 0, f.quantity(t, item.ID))
	assert.Equal(t, 0, f.quantity(t, other.ID))
	f.requireConsistent(t, item.ID)
	f.requireConsistent(t, other.ID)
}

func TestAssignToPerson_TimesOutWaitingForLock(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "HELMET-TIMEOUT", 5, true)
	stock := services.NewStockCoordinator(f.tx, f.store, nil, logger.NewNop(), 20*time.Millisecond)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.tx.RunInTx(context.Background(), func(ctx context.Context, s repositories.TxStores) error {
			if _, err := s.Items.LockItemForUpdate(ctx, item.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	_, err := stock.AssignToPerson(context.Background(), services.AssignCommand{
		ItemID: item.ID, PersonID: personAna, Quantity: 1, Date: assignDate, ResponsiblePersonID: officer,
	})
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 5, f.quantity(t, item.ID))
	assert.Empty(t, f.movements(t, item.ID))
}

func TestAssignToPerson_CallerDeadlineWins(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "HELMET-CANCEL", 5, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.stock.AssignToPerson(ctx, services.AssignCommand{
		ItemID: item.ID, PersonID: personAna, Quantity: 1, Date: assignDate, ResponsiblePersonID: officer,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, f.quantity(t, item.ID))
}

func TestReturnFromPerson(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "JACKET-M", 6, true)
	a := f.assign(t, item.ID, personAna, 4).Assignment

	res, err := f.stock.ReturnFromPerson(context.Background(), services.ReturnCommand{
		AssignmentID: a.ID, Quantity: 1, ResponsiblePersonID: officer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartiallyReturned, res.Assignment.Status)
	assert.Equal(t, 3, res.Assignment.OutstandingQuantity())
	assert.Equal(t, 3, res.Item.Quantity)
	assert.Equal(t, models.MovementPPEReturnIn, res.Movement.Type)
	assert.Equal(t, 1, res.Movement.SignedQuantity)
	f.requireConsistent(t, item.ID)

	_, err = f.stock.ReturnFromPerson(context.Background(), services.ReturnCommand{
		AssignmentID: a.ID, Quantity: 4, ResponsiblePersonID: officer,
	})
	require.ErrorIs(t, err, domain.ErrReturnExceedsHolding)

	res, err = f.stock.ReturnFromPerson(context.Background(), services.ReturnCommand{
		AssignmentID: a.ID, Quantity: 3, ResponsiblePersonID: officer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFullyReturned, res.Assignment.Status)
	assert.Equal(t, 6, f.quantity(t, item.ID))

	_, err = f.stock.ReturnFromPerson(context.Background(), services.ReturnCommand{
		AssignmentID: a.ID, Quantity: 1, ResponsiblePersonID: officer,
	})
	require.ErrorIs(t, err, domain.ErrAssignmentClosed)

	active, err := f.catalog.GetActiveAssignmentsForPerson(context.Background(), personAna)
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.Len(t, f.movements(t, item.ID), 3)
	f.requireConsistent(t, item.ID)
}

func TestReturnFromPerson_Rejections(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "JACKET-L", 2, true)
	a := f.assign(t, item.ID, personAna, 2).Assignment

	_, err := f.stock.ReturnFromPerson(context.Background(), services.ReturnCommand{AssignmentID: 999, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrAssignmentNotFound)

	_, err = f.stock.ReturnFromPerson(context.Background(), services.ReturnCommand{AssignmentID: a.ID, Quantity: 0})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 0, f.quantity(t, item.ID))
}

func TestWriteOffAssignment_DoesNotRestoreStock(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "RADIO-01", 5, true)
	a := f.assign(t, item.ID, personAna, 3).Assignment

	_, err := f.stock.ReturnFromPerson(context.Background(), services.ReturnCommand{AssignmentID: a.ID, Quantity: 1, ResponsiblePersonID: officer})
	require.NoError(t, err)

	res, err := f.stock.WriteOffAssignment(context.Background(), services.WriteOffCommand{
		AssignmentID: a.ID, Status: models.StatusLost, ResponsiblePersonID: officer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusLost, res.Assignment.Status)
	assert.Equal(t, 2, res.Assignment.WrittenOffQuantity)
	assert.Equal(t, 0, res.Assignment.OutstandingQuantity())
	assert.Equal(t, 3, f.quantity(t, item.ID))

	assert.Equal(t, models.MovementPPEWriteOff, res.Movement.Type)
	assert.Equal(t, 0, res.Movement.SignedQuantity)
	require.NotNil(t, res.Movement.Notes)
	assert.Equal(t, "2 units written off as Lost", *res.Movement.Notes)

	rep, err := f.catalog.Reconcile(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.WrittenOff)
	assert.Equal(t, 3, rep.TotalAcquired)
	assert.True(t, rep.Consistent())

	_, err = f.stock.WriteOffAssignment(context.Background(), services.WriteOffCommand{
		AssignmentID: a.ID, Status: models.StatusDamaged, ResponsiblePersonID: officer,
	})
	require.ErrorIs(t, err, domain.ErrAssignmentClosed)
}

func TestWriteOffAssignment_RejectsNonLossStatus(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "RADIO-02", 1, true)
	a := f.assign(t, item.ID, personAna, 1).Assignment

	_, err := f.stock.WriteOffAssignment(context.Background(), services.WriteOffCommand{
		AssignmentID: a.ID, Status: models.StatusFullyReturned, ResponsiblePersonID: officer,
	})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Len(t, f.movements(t, item.ID), 1)
}

func TestStockFlows(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "FOAM-AFFF", 10, false)
	ctx := context.Background()

	res, err := f.stock.ReceiveStock(ctx, services.StockCommand{ItemID: item.ID, Quantity: 5, ResponsiblePersonID: officer})
	require.NoError(t, err)
	assert.Equal(t, 15, res.Item.Quantity)
	assert.Equal(t, models.MovementPurchaseIn, res.Movement.Type)

	res, err = f.stock.ConsumeStock(ctx, services.StockCommand{ItemID: item.ID, Quantity: 4, ResponsiblePersonID: officer})
	require.NoError(t, err)
	assert.Equal(t, 11, res.Item.Quantity)
	assert.Equal(t, -4, res.Movement.SignedQuantity)

	_, err = f.stock.ConsumeStock(ctx, services.StockCommand{ItemID: item.ID, Quantity: 12, ResponsiblePersonID: officer})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 11, ise.Available)

	res, err = f.stock.AdjustStock(ctx, services.AdjustCommand{ItemID: item.ID, Delta: -1, ResponsiblePersonID: officer})
	require.NoError(t, err)
	assert.Equal(t, models.MovementNegativeAdjustment, res.Movement.Type)
	assert.Equal(t, 10, res.Item.Quantity)

	res, err = f.stock.AdjustStock(ctx, services.AdjustCommand{ItemID: item.ID, Delta: 2, ResponsiblePersonID: officer})
	require.NoError(t, err)
	assert.Equal(t, models.MovementPositiveAdjustment, res.Movement.Type)

	_, err = f.stock.AdjustStock(ctx, services.AdjustCommand{ItemID: item.ID, Delta: 0, ResponsiblePersonID: officer})
	require.ErrorIs(t, err, domain.ErrInvalidAdjustment)

	_, err = f.stock.AdjustStock(ctx, services.AdjustCommand{ItemID: item.ID, Delta: -13, ResponsiblePersonID: officer})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.stock.ReceiveStock(ctx, services.StockCommand{ItemID: item.ID, Quantity: 0, ResponsiblePersonID: officer})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.Equal(t, 12, f.quantity(t, item.ID))
	assert.Len(t, f.movements(t, item.ID), 4)
	f.requireConsistent(t, item.ID)
}

func TestStockFlows_RejectsStockBeyondMaxQuantity(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "HOSE-COUPLING", 5, false)
	ctx := context.Background()

	_, err := f.stock.ReceiveStock(ctx, services.StockCommand{ItemID: item.ID, Quantity: 4294967299, ResponsiblePersonID: officer})
	require.ErrorIs(t, err, domain.ErrQuantityTooLarge)

	_, err = f.stock.ReceiveStock(ctx, services.StockCommand{ItemID: item.ID, Quantity: domain.MaxQuantity, ResponsiblePersonID: officer})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.stock.AdjustStock(ctx, services.AdjustCommand{ItemID: item.ID, Delta: domain.MaxQuantity - 4, ResponsiblePersonID: officer})
	require.ErrorIs(t, err, domain.ErrQuantityTooLarge)

	assert.Equal(t, 5, f.quantity(t, item.ID))
	assert.Empty(t, f.movements(t, item.ID))
	assert.Empty(t, f.stockEvents())

	res, err := f.stock.ReceiveStock(ctx, services.StockCommand{ItemID: item.ID, Quantity: domain.MaxQuantity - 5, ResponsiblePersonID: officer})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxQuantity, res.Item.Quantity)
	f.requireConsistent(t, item.ID)
}

func TestReturnFromPerson_RejectsStockBeyondMaxQuantity(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "GLOVES-XL", 5, true)
	a := f.assign(t, item.ID, personAna, 2).Assignment
	ctx := context.Background()

	_, err := f.stock.ReceiveStock(ctx, services.StockCommand{ItemID: item.ID, Quantity: domain.MaxQuantity - 3, ResponsiblePersonID: officer})
	require.NoError(t, err)

	_, err = f.stock.ReturnFromPerson(ctx, services.ReturnCommand{AssignmentID: a.ID, Quantity: 1, ResponsiblePersonID: officer})
	require.ErrorIs(t, err, domain.ErrQuantityTooLarge)

	assert.Equal(t, domain.MaxQuantity, f.quantity(t, item.ID))
	assert.Equal(t, 0, f.assignments(t, item.ID)[0].ReturnedQuantity)
	assert.Len(t, f.movements(t, item.ID), 2)
}

// Every committed operation appends exactly one movement whose delta equals
// the change applied to the item's quantity.
func TestAuditCompleteness(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "HELMET-AUDIT", 20, true)
	ctx := context.Background()

	ops := []func() (int, error){
		func() (int, error) {
			r, err := f.stock.AssignToPerson(ctx, services.AssignCommand{ItemID: item.ID, PersonID: personAna, Quantity: 4, Date: assignDate, ResponsiblePersonID: officer})
			if err != nil {
				return 0, err
			}
			return r.Movement.SignedQuantity, nil
		},
		func() (int, error) {
			r, err := f.stock.ReceiveStock(ctx, services.StockCommand{ItemID: item.ID, Quantity: 3, ResponsiblePersonID: officer})
			if err != nil {
				return 0, err
			}
			return r.Movement.SignedQuantity, nil
		},
		func() (int, error) {
			r, err := f.stock.AssignToPerson(ctx, services.AssignCommand{ItemID: item.ID, PersonID: personBruno, Quantity: 2, Date: assignDate, ResponsiblePersonID: officer})
			if err != nil {
				return 0, err
			}
			return r.Movement.SignedQuantity, nil
		},
		func() (int, error) {
			active, err := f.catalog.GetActiveAssignmentsForPerson(ctx, personAna)
			if err != nil {
				return 0, err
			}
			r, err := f.stock.ReturnFromPerson(ctx, services.ReturnCommand{AssignmentID: active[0].ID, Quantity: 2, ResponsiblePersonID: officer})
			if err != nil {
				return 0, err
			}
			return r.Movement.SignedQuantity, nil
		},
	}

	for i, op := range ops {
		before := f.quantity(t, item.ID)
		count := len(f.movements(t, item.ID))

		delta, err := op()
		require.NoError(t, err, "op %d", i)

		assert.Len(t, f.movements(t, item.ID), count+1, "op %d", i)
		assert.Equal(t, before+delta, f.quantity(t, item.ID), "op %d", i)
		f.requireConsistent(t, item.ID)
	}
}

func TestWithClock_StampsMovements(t *testing.T) {
	f := newFixture(t)
	item := f.newItem(t, "CLOCKED", 3, true)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	f.stock.WithClock(func() time.Time { return at })

	res := f.assign(t, item.ID, personAna, 1)
	assert.True(t, res.Movement.OccurredAt.Equal(at))
}
