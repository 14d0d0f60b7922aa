package services

import (
	"fmt"
	"net/http"
)

// Stable settlement error codes. Nothing in this service retries
// automatically; authorizations are nonce-bound and single-use, so a retry is
// always a fresh request from the caller.
const (
	CodeValidation             = "ValidationError"
	CodeRelaySubmission        = "RelaySubmissionError"
	CodeRelayConfirmation      = "RelayConfirmationError"
	CodeProofGeneration        = "ProofGenerationError"
	CodeSettlementRegistration = "SettlementRegistrationError"
	// CodeInternal covers server-side failures before any funds move, such
	// as not being able to record the attempt. CodeSettlementRegistration is
	// reserved for registration failures after a confirmed transfer, when
	// funds already sit in escrow.
	CodeInternal = "InternalError"
)

// SettlementError carries a stable code plus free-text detail. Codes map to
// HTTP status classes at the handler boundary.
type SettlementError struct {
	Code   string
	Detail string
	cause  error
}

func (e *SettlementError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *SettlementError) Unwrap() error {
	return e.cause
}

// HTTPStatus classifies the error for the API layer. Validation and relay
// confirmation outcomes are the caller's problem (bad request or a transfer
// the relay refused); everything else is a server-side failure.
func (e *SettlementError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation, CodeRelayConfirmation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func newSettlementError(code, detail string, cause error) *SettlementError {
	return &SettlementError{Code: code, Detail: detail, cause: cause}
}
