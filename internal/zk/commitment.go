package zk

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// saltBytes keeps random salts at 248 bits, strictly below the 254-bit BN254
// scalar field modulus, so no modulo reduction (and no bias) is needed.
const saltBytes = 31

// RecipientSlot is one of exactly MaxSlots positions in a batch. Padding
// slots carry the zero address, zero amount and zero salt but still receive a
// well-formed Poseidon commitment so the circuit always sees MaxSlots tuples.
type RecipientSlot struct {
	Recipient      string   // checksummed hex address, or ZeroAddress for padding
	RecipientField *big.Int // address interpreted as a field element
	Amount         *big.Int // stablecoin minor units, 0 for padding
	Salt           *big.Int // field element, 0 for padding
	Commitment     *big.Int // Poseidon(recipient, amount, salt)
}

// InvalidInputError reports malformed batch input. It maps to a client error
// at the HTTP layer and never triggers external calls.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return e.Reason
}

// CommitmentBuilder derives per-recipient salts and computes the binding,
// hiding commitment for every slot of a batch.
type CommitmentBuilder struct {
	hasher *FieldHasher
}

// NewCommitmentBuilder wires the shared field hasher into a builder.
func NewCommitmentBuilder(hasher *FieldHasher) *CommitmentBuilder {
	return &CommitmentBuilder{hasher: hasher}
}

// BuildSlots produces exactly MaxSlots (recipient, amount, salt, commitment)
// tuples. When both masterSecret and payrollIdentifier are non-empty, salts
// for active slots are derived deterministically and the same inputs always
// reproduce the same salts; otherwise salts are drawn from crypto/rand.
// Padding slots always use zero salt regardless of mode.
func (b *CommitmentBuilder) BuildSlots(recipients []string, amounts []string, masterSecret, payrollIdentifier string) ([]RecipientSlot, error) {
	if len(recipients) != len(amounts) {
		return nil, &InvalidInputError{Reason: "recipients and amounts must have same length"}
	}
	if len(recipients) > MaxSlots {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("max %d recipients allowed", MaxSlots)}
	}

	derived := masterSecret != "" && payrollIdentifier != ""

	slots := make([]RecipientSlot, 0, MaxSlots)
	for i := range recipients {
		if !common.IsHexAddress(recipients[i]) {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("invalid recipient address at index %d: %s", i, recipients[i])}
		}
		recipientField := common.HexToAddress(recipients[i]).Big()

		amount, ok := new(big.Int).SetString(amounts[i], 10)
		if !ok || amount.Sign() < 0 {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("invalid amount at index %d: %s", i, amounts[i])}
		}

		var salt *big.Int
		var err error
		if derived {
			salt, err = b.deriveSalt(masterSecret, recipientField, payrollIdentifier)
		} else {
			salt, err = randomSalt()
		}
		if err != nil {
			return nil, err
		}

		commitment, err := b.hasher.Hash(recipientField, amount, salt)
		if err != nil {
			return nil, err
		}

		slots = append(slots, RecipientSlot{
			Recipient:      recipients[i],
			RecipientField: recipientField,
			Amount:         amount,
			Salt:           salt,
			Commitment:     commitment,
		})
	}

	// Pad to MaxSlots. Poseidon(0,0,0) is a real hash, not a null value.
	for len(slots) < MaxSlots {
		commitment, err := b.hasher.Hash(big.NewInt(0), big.NewInt(0), big.NewInt(0))
		if err != nil {
			return nil, err
		}
		slots = append(slots, RecipientSlot{
			Recipient:      ZeroAddress,
			RecipientField: big.NewInt(0),
			Amount:         big.NewInt(0),
			Salt:           big.NewInt(0),
			Commitment:     commitment,
		})
	}

	return slots, nil
}

// deriveSalt computes Poseidon(sha256(masterSecret), recipient,
// sha256(payrollIdentifier)) with both digests reduced into the field. Anyone
// holding the master secret can regenerate the salt and recover a lost claim
// credential.
func (b *CommitmentBuilder) deriveSalt(masterSecret string, recipientField *big.Int, payrollIdentifier string) (*big.Int, error) {
	secretDigest := sha256.Sum256([]byte(masterSecret))
	idDigest := sha256.Sum256([]byte(payrollIdentifier))

	secretField := b.hasher.Reduce(new(big.Int).SetBytes(secretDigest[:]))
	idField := b.hasher.Reduce(new(big.Int).SetBytes(idDigest[:]))

	return b.hasher.Hash(secretField, recipientField, idField)
}

func randomSalt() (*big.Int, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to draw salt entropy: %w", err)
	}
	return new(big.Int).SetBytes(buf), nil
}
