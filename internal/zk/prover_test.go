package zk

import "testing"

func TestSettlementProofToBigInts(t *testing.T) {
	proof := &SettlementProof{"1", "2", "3", "4", "5", "6", "7", "8"}

	vals, err := proof.ToBigInts()
	if err != nil {
		t.Fatalf("ToBigInts: %v", err)
	}
	for i, v := range vals {
		if v.Int64() != int64(i+1) {
			t.Errorf("element %d = %s, want %d", i, v, i+1)
		}
	}
}

func TestSettlementProofToBigIntsRejectsNonDecimal(t *testing.T) {
	proof := &SettlementProof{"1", "2", "0xff", "4", "5", "6", "7", "8"}
	if _, err := proof.ToBigInts(); err == nil {
		t.Fatal("expected error for hex-encoded scalar")
	}
}

func TestNewGnarkProverMissingArtifacts(t *testing.T) {
	if _, err := NewGnarkProver("/nonexistent/payroll.r1cs", "/nonexistent/payroll.pk"); err == nil {
		t.Fatal("expected error for missing circuit artifacts")
	}
}
