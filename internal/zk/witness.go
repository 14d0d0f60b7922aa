package zk

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/witness"
)

// The compiled circuit declares its inputs in this exact order: totalAmount
// and the commitment array are public, everything else is secret. The witness
// vector below must match or the proof will be rejected.
const (
	nbPublicInputs = 1 + MaxSlots
	nbSecretInputs = 3 * MaxSlots
)

// BatchWitness is the fixed-width input structure the proving system expects.
// TotalAmount must equal the sum of active amounts; that constraint is
// enforced inside the circuit, not re-validated here.
type BatchWitness struct {
	TotalAmount *big.Int
	Commitments [MaxSlots]*big.Int
	Recipients  [MaxSlots]*big.Int
	Amounts     [MaxSlots]*big.Int
	Salts       [MaxSlots]*big.Int
}

// NewBatchWitness packs a fully padded slot list into the witness layout.
func NewBatchWitness(totalAmount *big.Int, slots []RecipientSlot) (*BatchWitness, error) {
	if totalAmount == nil || totalAmount.Sign() < 0 {
		return nil, fmt.Errorf("total amount must be a non-negative integer")
	}
	if len(slots) != MaxSlots {
		return nil, fmt.Errorf("witness requires exactly %d slots, got %d", MaxSlots, len(slots))
	}

	w := &BatchWitness{TotalAmount: totalAmount}
	for i, slot := range slots {
		if slot.RecipientField == nil || slot.Amount == nil || slot.Salt == nil || slot.Commitment == nil {
			return nil, fmt.Errorf("slot %d is not fully populated", i)
		}
		w.Commitments[i] = slot.Commitment
		w.Recipients[i] = slot.RecipientField
		w.Amounts[i] = slot.Amount
		w.Salts[i] = slot.Salt
	}
	return w, nil
}

// Assemble builds the gnark witness vector, public inputs first, then secret
// inputs, in the circuit's declaration order.
func (w *BatchWitness) Assemble() (witness.Witness, error) {
	wtns, err := witness.New(ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate witness: %w", err)
	}

	values := make(chan any)
	go func() {
		defer close(values)
		values <- w.TotalAmount
		for i := 0; i < MaxSlots; i++ {
			values <- w.Commitments[i]
		}
		for i := 0; i < MaxSlots; i++ {
			values <- w.Recipients[i]
		}
		for i := 0; i < MaxSlots; i++ {
			values <- w.Amounts[i]
		}
		for i := 0; i < MaxSlots; i++ {
			values <- w.Salts[i]
		}
	}()

	if err := wtns.Fill(nbPublicInputs, nbSecretInputs, values); err != nil {
		return nil, fmt.Errorf("failed to fill witness: %w", err)
	}
	return wtns, nil
}

// PublicSignals returns the circuit's public inputs as decimal strings, in
// witness order: totalAmount followed by the five commitments.
func (w *BatchWitness) PublicSignals() []string {
	signals := make([]string, 0, nbPublicInputs)
	signals = append(signals, w.TotalAmount.String())
	for i := 0; i < MaxSlots; i++ {
		signals = append(signals, w.Commitments[i].String())
	}
	return signals
}
