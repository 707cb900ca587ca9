package handlers

import (
	"time"

	"github.com/ghuser/brigade/services/inventory/domain/models"
	domainsvcs "github.com/ghuser/brigade/services/inventory/domain/services"
)

const dateLayout = "2006-01-02"

// ItemResponse is the public view of an inventory item.
type ItemResponse struct {
	ID              int64      `json:"id" example:"7"`
	Code            string     `json:"code" example:"ERA-HELMET-01"`
	Name            string     `json:"name" example:"Structural helmet"`
	Category        string     `json:"category" example:"PPE"`
	Unit            string     `json:"unit" example:"unit"`
	Quantity        int        `json:"quantity" example:"5"`
	InitialQuantity int        `json:"initial_quantity" example:"5"`
	MinStock        *int       `json:"min_stock,omitempty" example:"2"`
	BelowMinimum    bool       `json:"below_minimum"`
	IsPPE           bool       `json:"is_ppe" example:"true"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at" example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

// ItemListResponse is one page of items.
type ItemListResponse struct {
	Items  []ItemResponse `json:"items"`
	Total  int            `json:"total" example:"42"`
	Limit  int            `json:"limit" example:"50"`
	Offset int            `json:"offset" example:"0"`
} // @name ItemListResponse

// AssignmentResponse is the public view of a PPE assignment.
type AssignmentResponse struct {
	ID                  int64   `json:"id" example:"12"`
	ItemID              int64   `json:"item_id" example:"7"`
	PersonID            int64   `json:"person_id" example:"3"`
	Quantity            int     `json:"quantity" example:"3"`
	ReturnedQuantity    int     `json:"returned_quantity" example:"0"`
	WrittenOffQuantity  int     `json:"written_off_quantity" example:"0"`
	OutstandingQuantity int     `json:"outstanding_quantity" example:"3"`
	AssignedDate        string  `json:"assigned_date" example:"2024-07-01"`
	Status              string  `json:"status" example:"Assigned"`
	Notes               *string `json:"notes,omitempty"`
} // @name AssignmentResponse

// MovementResponse is one journal entry.
type MovementResponse struct {
	ID                  int64     `json:"id" example:"31"`
	ItemID              int64     `json:"item_id" example:"7"`
	Type                string    `json:"movement_type" example:"ppe-assignment-out"`
	SignedQuantity      int       `json:"signed_quantity" example:"-3"`
	OccurredAt          time.Time `json:"occurred_at" example:"2024-07-01T09:00:00Z"`
	ResponsiblePersonID int64     `json:"responsible_person_id" example:"9"`
	LinkedAssignmentID  *int64    `json:"linked_assignment_id,omitempty" example:"12"`
	Notes               *string   `json:"notes,omitempty"`
} // @name MovementResponse

// StockChangeResponse is the committed result of a stock operation.
type StockChangeResponse struct {
	Item       ItemResponse        `json:"item"`
	Assignment *AssignmentResponse `json:"assignment,omitempty"`
	Movement   MovementResponse    `json:"movement"`
} // @name StockChangeResponse

// ReconciliationResponse reports whether an item's stock agrees with its
// journal and assignments.
type ReconciliationResponse struct {
	ItemID            int64 `json:"item_id" example:"7"`
	Initial           int   `json:"initial" example:"5"`
	Current           int   `json:"current" example:"2"`
	JournalDelta      int   `json:"journal_delta" example:"-3"`
	Outstanding       int   `json:"outstanding" example:"3"`
	WrittenOff        int   `json:"written_off" example:"0"`
	TotalAcquired     int   `json:"total_acquired" example:"5"`
	Movements         int   `json:"movements" example:"1"`
	JournalConsistent bool  `json:"journal_consistent" example:"true"`
	Conserved         bool  `json:"conserved" example:"true"`
} // @name ReconciliationResponse

func toItemResponse(i *models.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:              i.ID,
		Code:            i.Code.String(),
		Name:            i.Name,
		Category:        i.Category,
		Unit:            i.Unit,
		Quantity:        i.Quantity,
		InitialQuantity: i.InitialQuantity,
		MinStock:        i.MinStock,
		BelowMinimum:    i.BelowMinimum(),
		IsPPE:           i.IsPPE,
		ExpiryDate:      i.ExpiryDate,
		CreatedAt:       i.CreatedAt,
	}
}

func toAssignmentResponse(a *models.EppAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                  a.ID,
		ItemID:              a.ItemID,
		PersonID:            a.PersonID,
		Quantity:            a.Quantity,
		ReturnedQuantity:    a.ReturnedQuantity,
		WrittenOffQuantity:  a.WrittenOffQuantity,
		OutstandingQuantity: a.OutstandingQuantity(),
		AssignedDate:        a.AssignedDate.Format(dateLayout),
		Status:              string(a.Status),
		Notes:               a.Notes,
	}
}

func toAssignmentResponses(as []*models.EppAssignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(as))
	for _, a := range as {
		out = append(out, toAssignmentResponse(a))
	}
	return out
}

func toMovementResponse(m *models.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:                  m.ID,
		ItemID:              m.ItemID,
		Type:                string(m.Type),
		SignedQuantity:      m.SignedQuantity,
		OccurredAt:          m.OccurredAt,
		ResponsiblePersonID: m.ResponsiblePersonID,
		LinkedAssignmentID:  m.LinkedAssignmentID,
		Notes:               m.Notes,
	}
}

func toReconciliationResponse(r *domainsvcs.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ItemID:            r.ItemID,
		Initial:           r.Initial,
		Current:           r.Current,
		JournalDelta:      r.JournalDelta,
		Outstanding:       r.Outstanding,
		WrittenOff:        r.WrittenOff,
		TotalAcquired:     r.TotalAcquired,
		Movements:         r.Movements,
		JournalConsistent: r.JournalConsistent,
		Conserved:         r.Conserved,
	}
}

// emptyToNil drops blank notes.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
