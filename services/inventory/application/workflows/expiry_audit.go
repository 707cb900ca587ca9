// Package workflows holds the inventory's Temporal workflows and activities.
package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/services/inventory/domain/models"
)

const (
	// ExpiryAuditWorkflowID is fixed so only one cron run exists per namespace.
	ExpiryAuditWorkflowID = "inventory-ppe-expiry-audit"

	// ExpiryAuditCron runs the audit daily at 06:00 UTC.
	ExpiryAuditCron = "0 6 * * *"
)

// ExpiryAuditInput configures one audit run.
type ExpiryAuditInput struct {
	WithinDays int `json:"within_days"`
}

// ExpiringItem is a PPE item whose expiry date falls inside the warning window.
type ExpiringItem struct {
	ItemID     int64     `json:"item_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	ExpiryDate time.Time `json:"expiry_date"`
	DaysLeft   int       `json:"days_left"`
}

// ExpiryAuditResult is returned by both the activity and the workflow.
type ExpiryAuditResult struct {
	CheckedAt time.Time      `json:"checked_at"`
	Items     []ExpiringItem `json:"items"`
}

// ExpiryLister is satisfied by services.CatalogService.
type ExpiryLister interface {
	ExpiringItems(ctx context.Context, now time.Time, within time.Duration) ([]*models.InventoryItem, error)
}

// Activities groups the audit activities. Register the struct pointer so every
// exported method becomes an activity.
type Activities struct {
	catalog ExpiryLister
	log     logger.Logger
	now     func() time.Time
}

// NewActivities returns Activities reading from catalog.
func NewActivities(catalog ExpiryLister, log logger.Logger) *Activities {
	return &Activities{catalog: catalog, log: log, now: time.Now}
}

// ListExpiringPPE returns PPE items expiring within in.WithinDays, soonest first.
func (a *Activities) ListExpiringPPE(ctx context.Context, in ExpiryAuditInput) (*ExpiryAuditResult, error) {
	if in.WithinDays <= 0 {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("within_days must be positive, got %d", in.WithinDays), "InvalidInput", nil)
	}

	now := a.now().UTC()
	items, err := a.catalog.ExpiringItems(ctx, now, time.Duration(in.WithinDays)*24*time.Hour)
	if err != nil {
		return nil, err
	}

	res := &ExpiryAuditResult{CheckedAt: now, Items: []ExpiringItem{}}
	for _, it := range items {
		if !it.IsPPE || it.ExpiryDate == nil {
			continue
		}
		e := ExpiringItem{
			ItemID:     it.ID,
			Code:       it.Code.String(),
			Name:       it.Name,
			Quantity:   it.Quantity,
			ExpiryDate: *it.ExpiryDate,
			DaysLeft:   int(it.ExpiryDate.Sub(now).Hours() / 24),
		}
		res.Items = append(res.Items, e)
		a.log.WarnContext(ctx, "ppe item expiring",
			"item_id", e.ItemID, "code", e.Code, "quantity", e.Quantity, "days_left", e.DaysLeft)
		activity.RecordHeartbeat(ctx, e.ItemID)
	}
	return res, nil
}

// PPEExpiryAuditWorkflow lists PPE items nearing expiry. It is scheduled as a
// cron workflow by ScheduleExpiryAudit.
func PPEExpiryAuditWorkflow(ctx workflow.Context, in ExpiryAuditInput) (*ExpiryAuditResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})

	var a *Activities
	var res ExpiryAuditResult
	if err := workflow.ExecuteActivity(ctx, a.ListExpiringPPE, in).Get(ctx, &res); err != nil {
		return nil, err
	}

	workflow.GetLogger(ctx).Info("ppe expiry audit complete",
		"within_days", in.WithinDays, "expiring", len(res.Items))
	return &res, nil
}

// Register adds the audit workflow and activities to a worker.
func Register(w worker.Registry, acts *Activities) {
	w.RegisterWorkflow(PPEExpiryAuditWorkflow)
	w.RegisterActivity(acts)
}

// ScheduleExpiryAudit starts the cron workflow on taskQueue. Starting it again
// while a run exists returns the running execution.
func ScheduleExpiryAudit(ctx context.Context, c client.Client, taskQueue string, in ExpiryAuditInput) (client.WorkflowRun, error) {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           ExpiryAuditWorkflowID,
		TaskQueue:    taskQueue,
		CronSchedule: ExpiryAuditCron,
	}, PPEExpiryAuditWorkflow, in)
	if err != nil {
		return nil, fmt.Errorf("schedule expiry audit: %w", err)
	}
	return run, nil
}
