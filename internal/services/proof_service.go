package services

import (
	"context"
	"math/big"

	"payroll-backend/internal/dto"
	"payroll-backend/internal/zk"

	"github.com/sirupsen/logrus"
)

// ProofService runs the commitment → witness → proof pipeline for one batch.
// It is stateless; concurrent requests share only the read-only hasher and
// the prover worker pool.
type ProofService struct {
	builder *zk.CommitmentBuilder
	prover  zk.Prover
}

func NewProofService(builder *zk.CommitmentBuilder, prover zk.Prover) *ProofService {
	return &ProofService{builder: builder, prover: prover}
}

// GenerateProof builds all five commitment slots, assembles the fixed-width
// witness and proves it. The response carries plaintext salts inside the
// claim credentials; they exist nowhere else, so the caller must hand them to
// recipients before discarding the response.
func (s *ProofService) GenerateProof(ctx context.Context, req *dto.GenerateProofRequest) (*dto.GenerateProofResponse, error) {
	totalAmount, ok := new(big.Int).SetString(req.TotalAmount, 10)
	if !ok || totalAmount.Sign() < 0 {
		return nil, &zk.InvalidInputError{Reason: "totalAmount must be a non-negative integer"}
	}

	slots, err := s.builder.BuildSlots(req.Recipients, req.Amounts, req.MasterSecret, req.PayrollIdentifier)
	if err != nil {
		return nil, err
	}

	witness, err := zk.NewBatchWitness(totalAmount, slots)
	if err != nil {
		return nil, &zk.InvalidInputError{Reason: err.Error()}
	}

	logrus.WithFields(logrus.Fields{
		"active_count":  len(req.Recipients),
		"derived_salts": req.MasterSecret != "" && req.PayrollIdentifier != "",
	}).Info("Generating payroll proof")

	proof, publicSignals, err := s.prover.Prove(ctx, witness)
	if err != nil {
		return nil, err
	}

	commitments := make([]string, zk.MaxSlots)
	for i, slot := range slots {
		commitments[i] = slot.Commitment.String()
	}

	// Credentials only for active slots; padding slots are not claimable.
	credentials := make([]dto.ClaimCredential, len(req.Recipients))
	for i := range req.Recipients {
		credentials[i] = dto.ClaimCredential{
			CommitmentIndex: i,
			Recipient:       slots[i].Recipient,
			Amount:          slots[i].Amount.String(),
			Salt:            slots[i].Salt.String(),
			Commitment:      slots[i].Commitment.String(),
		}
	}

	return &dto.GenerateProofResponse{
		Proof:            proof[:],
		PublicSignals:    publicSignals,
		Commitments:      commitments,
		ClaimCredentials: credentials,
	}, nil
}
