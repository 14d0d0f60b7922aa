package zk

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/iden3/go-iden3-crypto/poseidon"
)

// MaxSlots is the fixed number of recipient slots per batch. The circuit is
// compiled for exactly this width; shorter batches are padded.
const MaxSlots = 5

// ZeroAddress is the padding sentinel for unused recipient slots.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// FieldHasher wraps the circuit-native Poseidon hash over the BN254 scalar
// field. It is constructed once at startup and shared read-only between the
// commitment builder and the prover.
type FieldHasher struct {
	modulus *big.Int
}

// NewFieldHasher builds the shared hasher instance.
func NewFieldHasher() *FieldHasher {
	return &FieldHasher{modulus: ecc.BN254.ScalarField()}
}

// Modulus returns a copy of the scalar field modulus.
func (h *FieldHasher) Modulus() *big.Int {
	return new(big.Int).Set(h.modulus)
}

// Reduce maps an arbitrary non-negative integer into the scalar field.
func (h *FieldHasher) Reduce(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, h.modulus)
}

// Hash computes Poseidon over the given field elements. Inputs must already
// be reduced below the field modulus.
func (h *FieldHasher) Hash(inputs ...*big.Int) (*big.Int, error) {
	out, err := poseidon.Hash(inputs)
	if err != nil {
		return nil, fmt.Errorf("poseidon hash failed: %w", err)
	}
	return out, nil
}
