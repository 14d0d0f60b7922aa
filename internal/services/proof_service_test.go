package services

import (
	"context"
	"testing"

	"payroll-backend/internal/dto"
	"payroll-backend/internal/zk"
)

type fakeProver struct {
	calls int
	err   error
}

func (f *fakeProver) Prove(ctx context.Context, w *zk.BatchWitness) (*zk.SettlementProof, []string, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	proof := &zk.SettlementProof{"1", "2", "3", "4", "5", "6", "7", "8"}
	return proof, w.PublicSignals(), nil
}

func newTestProofService(prover zk.Prover) *ProofService {
	return NewProofService(zk.NewCommitmentBuilder(zk.NewFieldHasher()), prover)
}

func TestGenerateProof(t *testing.T) {
	prover := &fakeProver{}
	svc := newTestProofService(prover)

	resp, err := svc.GenerateProof(context.Background(), &dto.GenerateProofRequest{
		Recipients: []string{
			"0x742d35Cc6634C0532925a3b0F26750C66d78EB66",
			"0x8ba1f109551bD432803012645Ac136ddd64DBa72",
		},
		Amounts:     []string{"1000000", "2000000"},
		TotalAmount: "3000000",
	})
	if err != nil {
		t.Fatalf("GenerateProof: %v", err)
	}

	if len(resp.Proof) != 8 {
		t.Errorf("proof has %d elements, want 8", len(resp.Proof))
	}
	if len(resp.Commitments) != zk.MaxSlots {
		t.Errorf("commitments has %d elements, want %d", len(resp.Commitments), zk.MaxSlots)
	}
	if len(resp.PublicSignals) != 1+zk.MaxSlots {
		t.Errorf("public signals has %d elements, want %d", len(resp.PublicSignals), 1+zk.MaxSlots)
	}
	if resp.PublicSignals[0] != "3000000" {
		t.Errorf("first public signal = %s, want totalAmount", resp.PublicSignals[0])
	}

	// Credentials only for the two active slots, never for padding.
	if len(resp.ClaimCredentials) != 2 {
		t.Fatalf("expected 2 claim credentials, got %d", len(resp.ClaimCredentials))
	}
	for i, cred := range resp.ClaimCredentials {
		if cred.CommitmentIndex != i {
			t.Errorf("credential %d index = %d", i, cred.CommitmentIndex)
		}
		if cred.Salt == "" || cred.Commitment == "" {
			t.Errorf("credential %d missing salt or commitment", i)
		}
		if cred.Commitment != resp.Commitments[i] {
			t.Errorf("credential %d commitment does not match commitments array", i)
		}
	}

	if prover.calls != 1 {
		t.Errorf("prover called %d times, want 1", prover.calls)
	}
}

func TestGenerateProofInvalidTotal(t *testing.T) {
	prover := &fakeProver{}
	svc := newTestProofService(prover)

	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		_, err := svc.GenerateProof(context.Background(), &dto.GenerateProofRequest{
			Recipients:  []string{"0x742d35Cc6634C0532925a3b0F26750C66d78EB66"},
			Amounts:     []string{"1"},
			TotalAmount: bad,
		})
		if err == nil {
			t.Errorf("totalAmount %q accepted", bad)
			continue
		}
		if _, ok := err.(*zk.InvalidInputError); !ok {
			t.Errorf("totalAmount %q: expected InvalidInputError, got %T", bad, err)
		}
	}
	if prover.calls != 0 {
		t.Error("prover reached despite invalid input")
	}
}

func TestGenerateProofInvalidRecipients(t *testing.T) {
	svc := newTestProofService(&fakeProver{})

	_, err := svc.GenerateProof(context.Background(), &dto.GenerateProofRequest{
		Recipients:  []string{"nope"},
		Amounts:     []string{"1"},
		TotalAmount: "1",
	})
	if err == nil {
		t.Fatal("expected error for invalid recipient")
	}
	if _, ok := err.(*zk.InvalidInputError); !ok {
		t.Errorf("expected InvalidInputError, got %T", err)
	}
}
