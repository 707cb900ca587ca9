package models

import "testing"

func TestMovementType_ValidDelta(t *testing.T) {
	tests := []struct {
		typ   MovementType
		delta int
		want  bool
	}{
		{MovementPurchaseIn, 5, true},
		{MovementPurchaseIn, -5, false},
		{MovementUsageOut, -1, true},
		{MovementUsageOut, 1, false},
		{MovementPositiveAdjustment, 2, true},
		{MovementNegativeAdjustment, -2, true},
		{MovementNegativeAdjustment, 0, false},
		{MovementPPEAssignmentOut, -3, true},
		{MovementPPEAssignmentOut, 3, false},
		{MovementPPEReturnIn, 1, true},
		{MovementPPEWriteOff, 0, true},
		{MovementPPEWriteOff, -1, false},
		{MovementType("transfer"), 1, false},
	}
	for _, tt := range tests {
		if got := tt.typ.ValidDelta(tt.delta); got != tt.want {
			t.Errorf("%s.ValidDelta(%d) = %v, want %v", tt.typ, tt.delta, got, tt.want)
		}
	}
}

func TestMovementType_IsPPE(t *testing.T) {
	for _, typ := range []MovementType{MovementPPEAssignmentOut, MovementPPEReturnIn, MovementPPEWriteOff} {
		if !typ.IsPPE() {
			t.Errorf("%s must be a PPE movement", typ)
		}
	}
	for _, typ := range []MovementType{MovementPurchaseIn, MovementUsageOut, MovementPositiveAdjustment, MovementNegativeAdjustment} {
		if typ.IsPPE() {
			t.Errorf("%s must not be a PPE movement", typ)
		}
	}
}

func TestParseMovementType(t *testing.T) {
	got, err := ParseMovementType("ppe-return-in")
	if err != nil || got != MovementPPEReturnIn {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := ParseMovementType("ppe-return"); err == nil {
		t.Fatal("expected error")
	}
}
