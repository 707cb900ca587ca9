package services

import "github.com/ghuser/brigade/services/inventory/domain/models"

// Reconciliation compares an item's stock against its journal and assignments.
type Reconciliation struct {
	ItemID        int64
	Initial       int
	Current       int
	JournalDelta  int // Σ signed deltas over the whole journal
	Outstanding   int // Σ outstanding units over Assigned/PartiallyReturned records
	WrittenOff    int // Σ units closed as Lost/Damaged
	TotalAcquired int // initial + Σ non-PPE deltas − written off
	Movements     int

	// JournalConsistent: current == initial + journal delta.
	JournalConsistent bool
	// Conserved: current + outstanding == total acquired.
	Conserved bool
}

// Consistent reports whether both checks hold.
func (r Reconciliation) Consistent() bool {
	return r.JournalConsistent && r.Conserved
}

// Reconcile computes the report for item from its full assignment history and journal.
func Reconcile(item *models.InventoryItem, assignments []*models.EppAssignment, movements []*models.InventoryMovement) Reconciliation {
	r := Reconciliation{
		ItemID:    item.ID,
		Initial:   item.InitialQuantity,
		Current:   item.Quantity,
		Movements: len(movements),
	}

	nonPPE := 0
	for _, m := range movements {
		r.JournalDelta += m.SignedQuantity
		if !m.Type.IsPPE() {
			nonPPE += m.SignedQuantity
		}
	}
	for _, a := range assignments {
		if a.Status.Outstanding() {
			r.Outstanding += a.OutstandingQuantity()
		}
		r.WrittenOff += a.WrittenOffQuantity
	}

	r.TotalAcquired = r.Initial + nonPPE - r.WrittenOff
	r.JournalConsistent = r.Current == r.Initial+r.JournalDelta
	r.Conserved = r.Current+r.Outstanding == r.TotalAcquired
	return r
}
