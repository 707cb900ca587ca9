package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/services/inventory/domain"
	"github.com/ghuser/brigade/services/inventory/domain/events"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/brigade/services/inventory/domain/services"
)

const instrumentationName = "github.com/ghuser/brigade/services/inventory"

// DefaultStockTxTimeout bounds a unit of work whose context has no deadline.
const DefaultStockTxTimeout = 5 * time.Second

// AssignCommand hands Quantity units of a PPE item to a person.
type AssignCommand struct {
	ItemID              int64
	PersonID            int64
	Quantity            int
	Date                time.Time
	ResponsiblePersonID int64
	Notes               *string
}

// ReturnCommand gives back part or all of an assignment.
type ReturnCommand struct {
	AssignmentID        int64
	Quantity            int
	ResponsiblePersonID int64
	Notes               *string
}

// WriteOffCommand closes the outstanding units of an assignment as Lost or Damaged.
type WriteOffCommand struct {
	AssignmentID        int64
	Status              models.AssignmentStatus
	ResponsiblePersonID int64
	Notes               *string
}

// StockCommand receives or consumes Quantity units of an item.
type StockCommand struct {
	ItemID              int64
	Quantity            int
	ResponsiblePersonID int64
	Notes               *string
}

// AdjustCommand corrects an item's stock by a signed Delta.
type AdjustCommand struct {
	ItemID              int64
	Delta               int
	ResponsiblePersonID int64
	Notes               *string
}

// AssignmentResult is the committed state after an assignment flow.
type AssignmentResult struct {
	Item       *models.InventoryItem
	Assignment *models.EppAssignment
	Movement   *models.InventoryMovement
}

// StockResult is the committed state after a stock flow.
type StockResult struct {
	Item     *models.InventoryItem
	Movement *models.InventoryMovement
}

// StockCoordinator is the only writer of item quantities. Every operation
// locks the item, validates, mutates, journals and publishes in one unit of
// work; any failure leaves no trace.
type StockCoordinator struct {
	tx      repositories.Transactor
	persons repositories.PersonDirectory
	cache   StockCache
	log     logger.Logger
	timeout time.Duration
	now     func() time.Time

	tracer    trace.Tracer
	moved     metric.Int64Counter
	rejected  metric.Int64Counter
	durations metric.Float64Histogram
}

// NewStockCoordinator wires a coordinator. cache may be nil. A non-positive
// timeout falls back to DefaultStockTxTimeout.
func NewStockCoordinator(
	tx repositories.Transactor,
	persons repositories.PersonDirectory,
	cache StockCache,
	log logger.Logger,
	timeout time.Duration,
) *StockCoordinator {
	if timeout <= 0 {
		timeout = DefaultStockTxTimeout
	}
	meter := otel.Meter(instrumentationName)
	moved, _ := meter.Int64Counter("inventory.movements",
		metric.WithDescription("Committed journal entries"))
	rejected, _ := meter.Int64Counter("inventory.rejections",
		metric.WithDescription("Stock operations refused or rolled back"))
	durations, _ := meter.Float64Histogram("inventory.stock_tx.duration",
		metric.WithDescription("Duration of stock units of work"), metric.WithUnit("ms"))

	return &StockCoordinator{
		tx:        tx,
		persons:   persons,
		cache:     cache,
		log:       log,
		timeout:   timeout,
		now:       func() time.Time { return time.Now().UTC() },
		tracer:    otel.Tracer(instrumentationName),
		moved:     moved,
		rejected:  rejected,
		durations: durations,
	}
}

// WithClock replaces the time source used for movement timestamps.
func (c *StockCoordinator) WithClock(now func() time.Time) *StockCoordinator {
	c.now = now
	return c
}

// AssignToPerson moves cmd.Quantity units of a PPE item from stock to a person.
func (c *StockCoordinator) AssignToPerson(ctx context.Context, cmd AssignCommand) (*AssignmentResult, error) {
	var res AssignmentResult
	err := c.run(ctx, "assign", []attribute.KeyValue{
		attribute.Int64("item_id", cmd.ItemID),
		attribute.Int64("person_id", cmd.PersonID),
		attribute.Int("quantity", cmd.Quantity),
	}, func(ctx context.Context, s repositories.TxStores) error {
		item, err := s.Items.LockItemForUpdate(ctx, cmd.ItemID)
		if err != nil {
			return err
		}
		if err := domainsvcs.CheckAssignable(item, cmd.Quantity); err != nil {
			return err
		}
		if err := domainsvcs.ValidateDate(cmd.Date); err != nil {
			return err
		}
		if err := c.checkPerson(ctx, cmd.PersonID); err != nil {
			return err
		}

		item.Quantity -= cmd.Quantity
		if err := s.Items.SetQuantity(ctx, item.ID, item.Quantity); err != nil {
			return err
		}

		a := &models.EppAssignment{
			ItemID:       item.ID,
			PersonID:     cmd.PersonID,
			Quantity:     cmd.Quantity,
			AssignedDate: cmd.Date,
			Status:       models.StatusAssigned,
			Notes:        cmd.Notes,
		}
		if err := s.Assignments.CreateAssignment(ctx, a); err != nil {
			return err
		}

		mv, err := c.journal(ctx, s, item, models.NewMovement{
			ItemID:              item.ID,
			Type:                models.MovementPPEAssignmentOut,
			SignedQuantity:      -cmd.Quantity,
			ResponsiblePersonID: cmd.ResponsiblePersonID,
			LinkedAssignmentID:  &a.ID,
			Notes:               cmd.Notes,
		})
		if err != nil {
			return err
		}

		res = AssignmentResult{Item: item, Assignment: a, Movement: mv}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.committed(ctx, res.Item, res.Movement)
	return &res, nil
}

// ReturnFromPerson gives back cmd.Quantity units of an assignment to stock.
func (c *StockCoordinator) ReturnFromPerson(ctx context.Context, cmd ReturnCommand) (*AssignmentResult, error) {
	var res AssignmentResult
	err := c.run(ctx, "return", []attribute.KeyValue{
		attribute.Int64("assignment_id", cmd.AssignmentID),
		attribute.Int("quantity", cmd.Quantity),
	}, func(ctx context.Context, s repositories.TxStores) error {
		item, a, err := lockAssignment(ctx, s, cmd.AssignmentID)
		if err != nil {
			return err
		}
		if err := domainsvcs.CheckReturnable(a, cmd.Quantity); err != nil {
			return err
		}
		if err := domainsvcs.CheckCapacity(item, cmd.Quantity); err != nil {
			return err
		}

		item.Quantity += cmd.Quantity
		if err := s.Items.SetQuantity(ctx, item.ID, item.Quantity); err != nil {
			return err
		}

		a.ApplyReturn(cmd.Quantity)
		if err := s.Assignments.UpdateAssignment(ctx, a); err != nil {
			return err
		}

		mv, err := c.journal(ctx, s, item, models.NewMovement{
			ItemID:              item.ID,
			Type:                models.MovementPPEReturnIn,
			SignedQuantity:      cmd.Quantity,
			ResponsiblePersonID: cmd.ResponsiblePersonID,
			LinkedAssignmentID:  &a.ID,
			Notes:               cmd.Notes,
		})
		if err != nil {
			return err
		}

		res = AssignmentResult{Item: item, Assignment: a, Movement: mv}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.committed(ctx, res.Item, res.Movement)
	return &res, nil
}

// WriteOffAssignment closes every outstanding unit of an assignment as Lost
// or Damaged. Stock is not restored; the journal gets a zero-delta entry.
func (c *StockCoordinator) WriteOffAssignment(ctx context.Context, cmd WriteOffCommand) (*AssignmentResult, error) {
	var res AssignmentResult
	err := c.run(ctx, "write_off", []attribute.KeyValue{
		attribute.Int64("assignment_id", cmd.AssignmentID),
		attribute.String("status", string(cmd.Status)),
	}, func(ctx context.Context, s repositories.TxStores) error {
		item, a, err := lockAssignment(ctx, s, cmd.AssignmentID)
		if err != nil {
			return err
		}
		if err := domainsvcs.CheckWriteOff(a, cmd.Status); err != nil {
			return err
		}

		n := a.ApplyWriteOff(cmd.Status)
		if err := s.Assignments.UpdateAssignment(ctx, a); err != nil {
			return err
		}

		notes := cmd.Notes
		if notes == nil {
			text := fmt.Sprintf("%d units written off as %s", n, cmd.Status)
			notes = &text
		}
		mv, err := c.journal(ctx, s, item, models.NewMovement{
			ItemID:              item.ID,
			Type:                models.MovementPPEWriteOff,
			SignedQuantity:      0,
			ResponsiblePersonID: cmd.ResponsiblePersonID,
			LinkedAssignmentID:  &a.ID,
			Notes:               notes,
		})
		if err != nil {
			return err
		}

		res = AssignmentResult{Item: item, Assignment: a, Movement: mv}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.committed(ctx, res.Item, res.Movement)
	return &res, nil
}

// ReceiveStock books a purchase of cmd.Quantity units.
func (c *StockCoordinator) ReceiveStock(ctx context.Context, cmd StockCommand) (*StockResult, error) {
	return c.changeStock(ctx, "receive", cmd.ItemID, cmd.ResponsiblePersonID, cmd.Notes,
		func(item *models.InventoryItem) (models.MovementType, int, error) {
			if err := domainsvcs.ValidateQuantity(cmd.Quantity); err != nil {
				return "", 0, err
			}
			if err := domainsvcs.CheckCapacity(item, cmd.Quantity); err != nil {
				return "", 0, err
			}
			return models.MovementPurchaseIn, cmd.Quantity, nil
		})
}

// ConsumeStock books usage of cmd.Quantity units.
func (c *StockCoordinator) ConsumeStock(ctx context.Context, cmd StockCommand) (*StockResult, error) {
	return c.changeStock(ctx, "consume", cmd.ItemID, cmd.ResponsiblePersonID, cmd.Notes,
		func(item *models.InventoryItem) (models.MovementType, int, error) {
			if err := domainsvcs.ValidateQuantity(cmd.Quantity); err != nil {
				return "", 0, err
			}
			if err := domainsvcs.CheckAvailable(item, cmd.Quantity); err != nil {
				return "", 0, err
			}
			return models.MovementUsageOut, -cmd.Quantity, nil
		})
}

// AdjustStock applies a signed manual correction. A negative delta may not
// exceed the current stock; a positive one may not push it past MaxQuantity.
func (c *StockCoordinator) AdjustStock(ctx context.Context, cmd AdjustCommand) (*StockResult, error) {
	return c.changeStock(ctx, "adjust", cmd.ItemID, cmd.ResponsiblePersonID, cmd.Notes,
		func(item *models.InventoryItem) (models.MovementType, int, error) {
			typ, err := domainsvcs.AdjustmentType(cmd.Delta)
			if err != nil {
				return "", 0, err
			}
			if cmd.Delta < 0 {
				if err := domainsvcs.CheckAvailable(item, -cmd.Delta); err != nil {
					return "", 0, err
				}
			} else if err := domainsvcs.CheckCapacity(item, cmd.Delta); err != nil {
				return "", 0, err
			}
			return typ, cmd.Delta, nil
		})
}

// changeStock runs the lock-validate-mutate-journal sequence for non-PPE
// movements. decide returns the movement type and signed delta.
func (c *StockCoordinator) changeStock(
	ctx context.Context,
	op string,
	itemID, responsible int64,
	notes *string,
	decide func(*models.InventoryItem) (models.MovementType, int, error),
) (*StockResult, error) {
	var res StockResult
	err := c.run(ctx, op, []attribute.KeyValue{attribute.Int64("item_id", itemID)},
		func(ctx context.Context, s repositories.TxStores) error {
			item, err := s.Items.LockItemForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			typ, delta, err := decide(item)
			if err != nil {
				return err
			}

			item.Quantity += delta
			if err := s.Items.SetQuantity(ctx, item.ID, item.Quantity); err != nil {
				return err
			}

			mv, err := c.journal(ctx, s, item, models.NewMovement{
				ItemID:              item.ID,
				Type:                typ,
				SignedQuantity:      delta,
				ResponsiblePersonID: responsible,
				Notes:               notes,
			})
			if err != nil {
				return err
			}

			res = StockResult{Item: item, Movement: mv}
			return nil
		})
	if err != nil {
		return nil, err
	}

	c.committed(ctx, res.Item, res.Movement)
	return &res, nil
}

// lockAssignment locks the assignment's item first, then the assignment, the
// same order AssignToPerson uses.
func lockAssignment(ctx context.Context, s repositories.TxStores, assignmentID int64) (*models.InventoryItem, *models.EppAssignment, error) {
	peek, err := s.Assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.Items.LockItemForUpdate(ctx, peek.ItemID)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.Assignments.LockAssignmentForUpdate(ctx, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	return item, a, nil
}

func (c *StockCoordinator) checkPerson(ctx context.Context, personID int64) error {
	p, err := c.persons.GetPerson(ctx, personID)
	if err != nil {
		return err
	}
	if !p.Active {
		return fmt.Errorf("%w: person %d is inactive", domain.ErrPersonNotFound, personID)
	}
	return nil
}

// journal appends the movement and writes its StockMovedEvent to the outbox.
// item must already carry the post-movement quantity.
func (c *StockCoordinator) journal(ctx context.Context, s repositories.TxStores, item *models.InventoryItem, nm models.NewMovement) (*models.InventoryMovement, error) {
	nm.OccurredAt = c.now()
	mv, err := s.Movements.AppendMovement(ctx, nm)
	if err != nil {
		return nil, err
	}

	evt := events.StockMovedEvent{
		EventID:             uuid.New(),
		Version:             events.StockMovedVersion,
		MovementID:          mv.ID,
		ItemID:              item.ID,
		ItemCode:            item.Code.String(),
		MovementType:        string(mv.Type),
		SignedQuantity:      mv.SignedQuantity,
		QuantityAfter:       item.Quantity,
		MinStock:            item.MinStock,
		AssignmentID:        mv.LinkedAssignmentID,
		ResponsiblePersonID: mv.ResponsiblePersonID,
		OccurredAt:          mv.OccurredAt,
	}
	if err := s.Outbox.Publish(ctx, events.TopicStockMoved, evt); err != nil {
		return nil, fmt.Errorf("publish stock moved: %w", err)
	}
	return mv, nil
}

// run executes fn as one unit of work under the coordinator's timeout,
// classifying and recording the outcome.
func (c *StockCoordinator) run(ctx context.Context, op string, attrs []attribute.KeyValue, fn func(context.Context, repositories.TxStores) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "inventory."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := c.tx.RunInTx(ctx, fn)
	c.durations.Record(ctx, float64(time.Since(start).Microseconds())/1000,
		metric.WithAttributes(attribute.String("op", op)))
	if err == nil {
		return nil
	}

	kind := errorKind(err)
	c.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op), attribute.String("kind", kind)))
	args := make([]any, 0, len(attrs)*2+4)
	for _, kv := range attrs {
		args = append(args, string(kv.Key), kv.Value.AsInterface())
	}
	args = append(args, "op", op, "error", err)

	if domain.IsBusinessError(err) {
		span.SetAttributes(attribute.String("rejection", kind))
		c.log.WarnContext(ctx, "inventory: stock operation rejected", args...)
		return err
	}

	err = domain.StorageFailure(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, "storage failure")
	c.log.ErrorContext(ctx, "inventory: stock operation rolled back", args...)
	return err
}

// committed runs the post-commit side effects: log, metrics and cache invalidation.
func (c *StockCoordinator) committed(ctx context.Context, item *models.InventoryItem, mv *models.InventoryMovement) {
	args := []any{
		"item_id", item.ID,
		"movement_id", mv.ID,
		"movement_type", mv.Type,
		"signed_quantity", mv.SignedQuantity,
		"quantity_after", item.Quantity,
		"responsible_person_id", mv.ResponsiblePersonID,
	}
	if mv.LinkedAssignmentID != nil {
		args = append(args, "assignment_id", *mv.LinkedAssignmentID)
	}
	c.log.InfoContext(ctx, "inventory: movement committed", args...)
	c.moved.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(mv.Type))))

	if c.cache != nil {
		if err := c.cache.Invalidate(context.WithoutCancel(ctx), item.ID); err != nil {
			c.log.WarnContext(ctx, "inventory: stock cache invalidation failed", "item_id", item.ID, "error", err)
		}
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "storage_failure"
	}
}
