package zk

import (
	"math/big"
	"testing"
)

func newTestBuilder() *CommitmentBuilder {
	return NewCommitmentBuilder(NewFieldHasher())
}

func TestBuildSlotsAlwaysFiveSlots(t *testing.T) {
	builder := newTestBuilder()

	for _, active := range []int{1, 2, 5} {
		recipients := make([]string, active)
		amounts := make([]string, active)
		for i := 0; i < active; i++ {
			recipients[i] = "0x742d35Cc6634C0532925a3b0F26750C66d78EB66"
			amounts[i] = "1000000"
		}

		slots, err := builder.BuildSlots(recipients, amounts, "", "")
		if err != nil {
			t.Fatalf("BuildSlots with %d recipients: %v", active, err)
		}
		if len(slots) != MaxSlots {
			t.Errorf("expected %d slots for %d recipients, got %d", MaxSlots, active, len(slots))
		}
	}
}

func TestBuildSlotsPadding(t *testing.T) {
	builder := newTestBuilder()

	slots, err := builder.BuildSlots(
		[]string{"0x742d35Cc6634C0532925a3b0F26750C66d78EB66"},
		[]string{"5000000"},
		"", "",
	)
	if err != nil {
		t.Fatalf("BuildSlots: %v", err)
	}

	// Padding slots carry the zero tuple but a real Poseidon(0,0,0) hash.
	zeroCommitment, err := NewFieldHasher().Hash(big.NewInt(0), big.NewInt(0), big.NewInt(0))
	if err != nil {
		t.Fatalf("Hash(0,0,0): %v", err)
	}

	for i := 1; i < MaxSlots; i++ {
		slot := slots[i]
		if slot.Recipient != ZeroAddress {
			t.Errorf("padding slot %d recipient = %s, want zero address", i, slot.Recipient)
		}
		if slot.Amount.Sign() != 0 || slot.Salt.Sign() != 0 {
			t.Errorf("padding slot %d should have zero amount and salt", i)
		}
		if slot.Commitment.Cmp(zeroCommitment) != 0 {
			t.Errorf("padding slot %d commitment = %s, want Poseidon(0,0,0) = %s",
				i, slot.Commitment, zeroCommitment)
		}
		if slot.Commitment.Sign() == 0 {
			t.Errorf("padding commitment must not be zero")
		}
	}
}

func TestDerivedSaltsDeterministic(t *testing.T) {
	builder := newTestBuilder()

	recipients := []string{
		"0x742d35Cc6634C0532925a3b0F26750C66d78EB66",
		"0x8ba1f109551bD432803012645Ac136ddd64DBa72",
	}
	amounts := []string{"1000000", "2500000"}

	first, err := builder.BuildSlots(recipients, amounts, "master-secret", "payroll-2026-08")
	if err != nil {
		t.Fatalf("BuildSlots: %v", err)
	}
	second, err := builder.BuildSlots(recipients, amounts, "master-secret", "payroll-2026-08")
	if err != nil {
		t.Fatalf("BuildSlots: %v", err)
	}

	for i := range recipients {
		if first[i].Salt.Cmp(second[i].Salt) != 0 {
			t.Errorf("slot %d: derived salts differ across identical runs", i)
		}
		if first[i].Commitment.Cmp(second[i].Commitment) != 0 {
			t.Errorf("slot %d: commitments differ across identical runs", i)
		}
	}

	// A different payroll identifier must change every salt.
	other, err := builder.BuildSlots(recipients, amounts, "master-secret", "payroll-2026-09")
	if err != nil {
		t.Fatalf("BuildSlots: %v", err)
	}
	for i := range recipients {
		if first[i].Salt.Cmp(other[i].Salt) == 0 {
			t.Errorf("slot %d: salt unchanged across different payroll identifiers", i)
		}
	}
}

func TestRandomSaltsDistinct(t *testing.T) {
	builder := newTestBuilder()

	recipients := []string{
		"0x742d35Cc6634C0532925a3b0F26750C66d78EB66",
		"0x742d35Cc6634C0532925a3b0F26750C66d78EB66",
	}
	amounts := []string{"1000000", "1000000"}

	slots, err := builder.BuildSlots(recipients, amounts, "", "")
	if err != nil {
		t.Fatalf("BuildSlots: %v", err)
	}

	if slots[0].Salt.Cmp(slots[1].Salt) == 0 {
		t.Error("random salts collided for identical recipients")
	}
	if slots[0].Commitment.Cmp(slots[1].Commitment) == 0 {
		t.Error("identical payload with distinct salts must yield distinct commitments")
	}

	modulus := NewFieldHasher().Modulus()
	for i := 0; i < 2; i++ {
		if slots[i].Salt.Cmp(modulus) >= 0 {
			t.Errorf("slot %d salt exceeds field modulus", i)
		}
	}
}

func TestCommitmentRecomputation(t *testing.T) {
	builder := newTestBuilder()
	hasher := NewFieldHasher()

	slots, err := builder.BuildSlots(
		[]string{"0x742d35Cc6634C0532925a3b0F26750C66d78EB66"},
		[]string{"7770000"},
		"secret", "run-1",
	)
	if err != nil {
		t.Fatalf("BuildSlots: %v", err)
	}

	// A recipient holding (recipient, amount, salt) must be able to recompute
	// the on-chain commitment exactly.
	recomputed, err := hasher.Hash(slots[0].RecipientField, slots[0].Amount, slots[0].Salt)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if recomputed.Cmp(slots[0].Commitment) != 0 {
		t.Errorf("recomputed commitment %s != stored %s", recomputed, slots[0].Commitment)
	}
}

func TestBuildSlotsInvalidInput(t *testing.T) {
	builder := newTestBuilder()
	valid := "0x742d35Cc6634C0532925a3b0F26750C66d78EB66"

	cases := []struct {
		name       string
		recipients []string
		amounts    []string
	}{
		{"length mismatch", []string{valid}, []string{"1", "2"}},
		{"too many recipients", []string{valid, valid, valid, valid, valid, valid}, []string{"1", "1", "1", "1", "1", "1"}},
		{"bad address", []string{"not-an-address"}, []string{"1"}},
		{"negative amount", []string{valid}, []string{"-5"}},
		{"non-decimal amount", []string{valid}, []string{"1.5"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := builder.BuildSlots(tc.recipients, tc.amounts, "", "")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if _, ok := err.(*InvalidInputError); !ok {
				t.Errorf("expected InvalidInputError, got %T: %v", err, err)
			}
		})
	}
}
