package zk

import (
	"math/big"
	"testing"
)

func buildTestSlots(t *testing.T) []RecipientSlot {
	t.Helper()
	builder := NewCommitmentBuilder(NewFieldHasher())
	slots, err := builder.BuildSlots(
		[]string{
			"0x742d35Cc6634C0532925a3b0F26750C66d78EB66",
			"0x8ba1f109551bD432803012645Ac136ddd64DBa72",
		},
		[]string{"1000000", "2000000"},
		"secret", "batch-1",
	)
	if err != nil {
		t.Fatalf("BuildSlots: %v", err)
	}
	return slots
}

func TestNewBatchWitness(t *testing.T) {
	slots := buildTestSlots(t)

	w, err := NewBatchWitness(big.NewInt(3000000), slots)
	if err != nil {
		t.Fatalf("NewBatchWitness: %v", err)
	}

	for i := 0; i < MaxSlots; i++ {
		if w.Commitments[i] == nil || w.Recipients[i] == nil || w.Amounts[i] == nil || w.Salts[i] == nil {
			t.Fatalf("witness slot %d not populated", i)
		}
	}
}

func TestNewBatchWitnessRejectsBadInput(t *testing.T) {
	slots := buildTestSlots(t)

	if _, err := NewBatchWitness(nil, slots); err == nil {
		t.Error("expected error for nil total amount")
	}
	if _, err := NewBatchWitness(big.NewInt(-1), slots); err == nil {
		t.Error("expected error for negative total amount")
	}
	if _, err := NewBatchWitness(big.NewInt(1), slots[:3]); err == nil {
		t.Error("expected error for short slot list")
	}
}

func TestPublicSignalsOrder(t *testing.T) {
	slots := buildTestSlots(t)
	total := big.NewInt(3000000)

	w, err := NewBatchWitness(total, slots)
	if err != nil {
		t.Fatalf("NewBatchWitness: %v", err)
	}

	signals := w.PublicSignals()
	if len(signals) != 1+MaxSlots {
		t.Fatalf("expected %d public signals, got %d", 1+MaxSlots, len(signals))
	}
	if signals[0] != total.String() {
		t.Errorf("signal[0] = %s, want totalAmount %s", signals[0], total)
	}
	for i := 0; i < MaxSlots; i++ {
		if signals[1+i] != slots[i].Commitment.String() {
			t.Errorf("signal[%d] = %s, want commitment %s", 1+i, signals[1+i], slots[i].Commitment)
		}
	}
}

func TestAssembleProducesVector(t *testing.T) {
	slots := buildTestSlots(t)

	w, err := NewBatchWitness(big.NewInt(3000000), slots)
	if err != nil {
		t.Fatalf("NewBatchWitness: %v", err)
	}

	wtns, err := w.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	public, err := wtns.Public()
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	vec := public.Vector()
	if vec == nil {
		t.Fatal("public witness vector is nil")
	}
}
