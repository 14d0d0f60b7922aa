package dto

// ==================== Payroll DTOs ====================

// TransferAuthorization is an EIP-3009 style fee-less transfer instruction,
// signed off-chain by the employer. It is consumed exactly once per
// settlement attempt and never persisted beyond it.
type TransferAuthorization struct {
	From        string `json:"from" binding:"required"`
	To          string `json:"to" binding:"required"`
	Value       string `json:"value" binding:"required"`
	ValidAfter  string `json:"validAfter" binding:"required"`
	ValidBefore string `json:"validBefore" binding:"required"`
	Nonce       string `json:"nonce" binding:"required"`
}

// ClaimCredential is everything a recipient needs to later reveal their
// commitment pre-image and redeem a slot. It carries the plaintext amount and
// salt, so it must only ever be delivered to its intended recipient.
type ClaimCredential struct {
	PayrollID       int64  `json:"payrollId,omitempty"`
	CommitmentIndex int    `json:"commitmentIndex"`
	Recipient       string `json:"recipient"`
	Amount          string `json:"amount"`
	Salt            string `json:"salt"`
	Commitment      string `json:"commitment"`
	ClaimURL        string `json:"claimUrl,omitempty"`
}

// CreatePayrollRequest corresponds to the request body for /api/payroll/create.
type CreatePayrollRequest struct {
	Recipients       []string              `json:"recipients" binding:"required"`
	Amounts          []string              `json:"amounts" binding:"required"`
	TotalAmount      string                `json:"totalAmount" binding:"required"`
	Proof            []string              `json:"proof" binding:"required"`
	Commitments      []string              `json:"commitments" binding:"required"`
	ClaimCredentials []ClaimCredential     `json:"claimCredentials"`
	Employer         string                `json:"employer" binding:"required"`
	Authorization    TransferAuthorization `json:"authorization" binding:"required"`
	Signature        string                `json:"signature" binding:"required"`
}

// CreatePayrollResponse is returned once credentials have been emitted.
type CreatePayrollResponse struct {
	Success          bool              `json:"success"`
	PayrollID        int64             `json:"payrollId"`
	TxHash           string            `json:"txHash"`
	TransferTxHash   string            `json:"transferTxHash"`
	ClaimCredentials []ClaimCredential `json:"claimCredentials"`
}

// ==================== Proof DTOs ====================

// GenerateProofRequest corresponds to the request body for /api/proof/generate.
// Supplying both masterSecret and payrollIdentifier switches the whole batch
// to deterministic salt derivation.
type GenerateProofRequest struct {
	Recipients        []string `json:"recipients" binding:"required"`
	Amounts           []string `json:"amounts" binding:"required"`
	TotalAmount       string   `json:"totalAmount" binding:"required"`
	MasterSecret      string   `json:"masterSecret,omitempty"`
	PayrollIdentifier string   `json:"payrollIdentifier,omitempty"`
}

// GenerateProofResponse carries the 8-scalar proof plus everything the client
// needs to drive settlement.
type GenerateProofResponse struct {
	Proof            []string          `json:"proof"`
	PublicSignals    []string          `json:"publicSignals"`
	Commitments      []string          `json:"commitments"`
	ClaimCredentials []ClaimCredential `json:"claimCredentials"`
}

// ErrorResponse is the uniform error payload shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
