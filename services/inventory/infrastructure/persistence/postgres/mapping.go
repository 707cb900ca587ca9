package postgres

import (
	"database/sql"
	"time"

	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/infrastructure/persistence/postgres/db"
)

func rowToItem(row db.InventoryItem) *models.InventoryItem {
	item := &models.InventoryItem{
		ID:              row.ID,
		Code:            models.ItemCode(row.Code),
		Name:            row.Name,
		Category:        row.Category,
		Unit:            row.Unit,
		Quantity:        int(row.Quantity),
		InitialQuantity: int(row.InitialQuantity),
		IsPPE:           row.IsPpe,
		CreatedAt:       row.CreatedAt.UTC(),
	}
	if row.MinStock.Valid {
		v := int(row.MinStock.Int32)
		item.MinStock = &v
	}
	if row.ExpiryDate.Valid {
		v := row.ExpiryDate.Time.UTC()
		item.ExpiryDate = &v
	}
	return item
}

func rowToAssignment(row db.PpeAssignment) *models.EppAssignment {
	return &models.EppAssignment{
		ID:                 row.ID,
		ItemID:             row.ItemID,
		PersonID:           row.PersonID,
		Quantity:           int(row.Quantity),
		ReturnedQuantity:   int(row.ReturnedQuantity),
		WrittenOffQuantity: int(row.WrittenOffQuantity),
		AssignedDate:       row.AssignedDate.UTC(),
		Status:             models.AssignmentStatus(row.Status),
		Notes:              fromNullString(row.Notes),
	}
}

func rowToMovement(row db.InventoryMovement) *models.InventoryMovement {
	m := &models.InventoryMovement{
		ID:                  row.ID,
		ItemID:              row.ItemID,
		Type:                models.MovementType(row.MovementType),
		SignedQuantity:      int(row.SignedQuantity),
		OccurredAt:          row.OccurredAt.UTC(),
		ResponsiblePersonID: row.ResponsiblePersonID,
		Notes:               fromNullString(row.Notes),
	}
	if row.LinkedAssignmentID.Valid {
		v := row.LinkedAssignmentID.Int64
		m.LinkedAssignmentID = &v
	}
	return m
}

func rowsTo[R, M any](rows []R, conv func(R) M) []M {
	out := make([]M, len(rows))
	for i, r := range rows {
		out[i] = conv(r)
	}
	return out
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNullInt32(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
