package zk

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/sirupsen/logrus"
)

// SettlementProof holds the 8 proof scalars as decimal strings, already laid
// out in the on-chain verifier's order.
type SettlementProof [8]string

// ToBigInts converts the proof scalars into the uint256[8] the settlement
// contract call expects.
func (p *SettlementProof) ToBigInts() ([8]*big.Int, error) {
	var out [8]*big.Int
	for i, s := range p {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return out, fmt.Errorf("invalid proof scalar at index %d: %s", i, s)
		}
		out[i] = v
	}
	return out, nil
}

// ProofGenerationError reports a malformed witness, missing circuit artifacts
// or a prover-internal failure. Never retried automatically; the caller must
// regenerate salts/witness and re-drive the request.
type ProofGenerationError struct {
	Detail string
	cause  error
}

func (e *ProofGenerationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.cause)
	}
	return e.Detail
}

func (e *ProofGenerationError) Unwrap() error {
	return e.cause
}

// Prover is the opaque proving backend boundary. Two calls with the same
// witness may yield different but equally valid proofs.
type Prover interface {
	Prove(ctx context.Context, w *BatchWitness) (*SettlementProof, []string, error)
}

// GnarkProver proves batches against a fixed, precompiled payroll circuit.
// The constraint system and Groth16 proving key are read once at startup and
// reused read-only across concurrent proof calls.
type GnarkProver struct {
	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
}

// NewGnarkProver loads the circuit artifacts from disk.
func NewGnarkProver(csPath, pkPath string) (*GnarkProver, error) {
	logrus.WithFields(logrus.Fields{
		"constraint_system": csPath,
		"proving_key":       pkPath,
	}).Info("Loading payroll circuit artifacts")

	cs := groth16.NewCS(ecc.BN254)
	csFile, err := os.Open(csPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open constraint system: %w", err)
	}
	defer csFile.Close()
	if _, err := cs.ReadFrom(csFile); err != nil {
		return nil, fmt.Errorf("failed to read constraint system: %w", err)
	}

	pk := groth16.NewProvingKey(ecc.BN254)
	pkFile, err := os.Open(pkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open proving key: %w", err)
	}
	defer pkFile.Close()
	if _, err := pk.ReadFrom(pkFile); err != nil {
		return nil, fmt.Errorf("failed to read proving key: %w", err)
	}

	logrus.Info("✅ Payroll circuit artifacts loaded")
	return &GnarkProver{cs: cs, pk: pk}, nil
}

// Prove runs a single Groth16 proof. CPU-bound, may take seconds; callers go
// through the worker pool so request handling is never starved.
func (p *GnarkProver) Prove(ctx context.Context, w *BatchWitness) (*SettlementProof, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, &ProofGenerationError{Detail: "proof generation aborted", cause: err}
	}

	wtns, err := w.Assemble()
	if err != nil {
		return nil, nil, &ProofGenerationError{Detail: "malformed witness", cause: err}
	}

	proof, err := groth16.Prove(p.cs, p.pk, wtns)
	if err != nil {
		return nil, nil, &ProofGenerationError{Detail: "prover failed", cause: err}
	}

	formatted, err := FormatProofForVerifier(proof)
	if err != nil {
		return nil, nil, err
	}
	return formatted, w.PublicSignals(), nil
}

// FormatProofForVerifier reorders the raw BN254 proof into the 8-scalar
// layout the on-chain verifier consumes. The coordinates of the G2 element
// are swapped relative to gnark's native output to match the verifier's
// pairing convention.
func FormatProofForVerifier(proof groth16.Proof) (*SettlementProof, error) {
	bn254Proof, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return nil, &ProofGenerationError{Detail: fmt.Sprintf("unexpected proof type %T", proof)}
	}

	return &SettlementProof{
		bn254Proof.Ar.X.String(),
		bn254Proof.Ar.Y.String(),
		bn254Proof.Bs.X.A1.String(),
		bn254Proof.Bs.X.A0.String(),
		bn254Proof.Bs.Y.A1.String(),
		bn254Proof.Bs.Y.A0.String(),
		bn254Proof.Krs.X.String(),
		bn254Proof.Krs.Y.String(),
	}, nil
}
