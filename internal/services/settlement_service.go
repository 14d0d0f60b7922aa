package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"payroll-backend/internal/clients"
	"payroll-backend/internal/dto"
	"payroll-backend/internal/events"
	"payroll-backend/internal/metrics"
	"payroll-backend/internal/models"
	"payroll-backend/internal/repository"
	"payroll-backend/internal/utils"
	"payroll-backend/internal/zk"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FeeRelayer executes gasless EIP-3009 transfers on the employer's behalf.
type FeeRelayer interface {
	SubmitZeroFeeTransfer(ctx context.Context, userIP string, auth dto.TransferAuthorization, signature string) (string, error)
	WaitForConfirmation(ctx context.Context, userIP, authorizationID string) (*clients.TransferStatus, error)
}

// SettlementLedger registers validated payroll batches on-chain as escrow.
type SettlementLedger interface {
	EscrowAddress() common.Address
	CreatePayrollRelayed(ctx context.Context, employer common.Address, proof [8]*big.Int, totalAmount *big.Int, commitments [5]*big.Int, recipients [5]common.Address) (string, int64, error)
}

// SettlementService drives the four-stage gasless settlement pipeline:
// submit the transfer authorization, wait for confirmation, register the
// payroll on-chain, emit claim credentials. Each stage commits before the
// next starts; a failure is terminal for the attempt and the caller must
// retry with a fresh authorization.
type SettlementService struct {
	relayer     FeeRelayer
	ledger      SettlementLedger
	repo        repository.SettlementRepository
	publisher   *events.Publisher
	frontendURL string
}

func NewSettlementService(relayer FeeRelayer, ledger SettlementLedger, repo repository.SettlementRepository, publisher *events.Publisher, frontendURL string) *SettlementService {
	return &SettlementService{
		relayer:     relayer,
		ledger:      ledger,
		repo:        repo,
		publisher:   publisher,
		frontendURL: frontendURL,
	}
}

// CreatePayroll runs one settlement attempt end to end. All validation
// happens before the first external call; once the authorization is
// submitted the attempt is committed and never retried internally.
func (s *SettlementService) CreatePayroll(ctx context.Context, req *dto.CreatePayrollRequest, clientIP string) (*dto.CreatePayrollResponse, error) {
	start := time.Now()
	defer func() {
		metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	}()

	employer, proof, totalAmount, commitments, recipients, err := s.validate(req)
	if err != nil {
		metrics.SettlementFailuresTotal.WithLabelValues(CodeValidation).Inc()
		return nil, err
	}
	metrics.SettlementStageTotal.WithLabelValues(string(models.StageValidated)).Inc()

	settlement := &models.PayrollSettlement{
		ID:                 uuid.New().String(),
		Employer:           utils.NormalizeAddress(req.Employer),
		TotalAmount:        req.TotalAmount,
		AuthorizationNonce: req.Authorization.Nonce,
		Stage:              models.StageValidated,
		Status:             models.SettlementStatusPending,
		ClientIP:           clientIP,
	}
	if err := s.repo.Create(settlement); err != nil {
		metrics.SettlementFailuresTotal.WithLabelValues(CodeInternal).Inc()
		return nil, newSettlementError(CodeInternal, "failed to record settlement attempt", err)
	}

	log := logrus.WithFields(logrus.Fields{
		"settlement_id": settlement.ID,
		"employer":      settlement.Employer,
		"total_amount":  settlement.TotalAmount,
	})
	log.Info("💸 Starting payroll settlement")

	// Stage 1: submit the signed authorization to the fee relayer.
	authorizationID, err := s.relayer.SubmitZeroFeeTransfer(ctx, clientIP, req.Authorization, req.Signature)
	if err != nil {
		return nil, s.fail(settlement, CodeRelaySubmission, err.Error(), err)
	}
	settlement.AuthorizationID = authorizationID
	s.advance(settlement, models.StageAuthSubmitted)

	// Stage 2: wait for the funding transfer to confirm. Anything other than
	// a confirmed transfer aborts; the relayer's own detail is passed through
	// verbatim so the employer can see why their authorization was refused.
	status, err := s.relayer.WaitForConfirmation(ctx, clientIP, authorizationID)
	if err != nil {
		return nil, s.fail(settlement, CodeRelayConfirmation, err.Error(), err)
	}
	if status.Status != clients.TransferStatusConfirmed {
		detail := status.Error
		if detail == "" {
			detail = fmt.Sprintf("transfer ended with status %q", status.Status)
		}
		return nil, s.fail(settlement, CodeRelayConfirmation, detail, nil)
	}
	settlement.TransferTxHash = status.TxHash
	s.advance(settlement, models.StageTransferConfirmed)
	log.WithField("transfer_tx", status.TxHash).Info("Funding transfer confirmed")

	// Stage 3: register the payroll on-chain as escrow. Failing here is the
	// severe case: funds already sit in escrow, so the record is flagged for
	// manual reconciliation instead of plain failure.
	txHash, payrollID, err := s.ledger.CreatePayrollRelayed(ctx, employer, proof, totalAmount, commitments, recipients)
	if err != nil {
		settlement.SettlementTxHash = txHash
		settlement.Status = models.SettlementStatusNeedsIntervention
		settlement.ErrorCode = CodeSettlementRegistration
		settlement.ErrorDetail = err.Error()
		if updateErr := s.repo.Update(settlement); updateErr != nil {
			log.WithField("error", updateErr.Error()).Error("Failed to persist intervention record")
		}
		metrics.SettlementFailuresTotal.WithLabelValues(CodeSettlementRegistration).Inc()
		s.publisher.InterventionRequired(settlement)
		log.WithField("error", err.Error()).Error("🚨 Registration failed after confirmed transfer, intervention required")
		return nil, newSettlementError(CodeSettlementRegistration,
			"transfer confirmed but payroll registration failed; funds are in escrow pending manual reconciliation", err)
	}
	settlement.SettlementTxHash = txHash
	settlement.PayrollID = &payrollID
	s.advance(settlement, models.StagePayrollRegistered)

	// Stage 4: emit claim credentials. Pure transform, cannot fail.
	credentials := BuildClaimURLs(payrollID, req.ClaimCredentials, s.frontendURL)
	settlement.Stage = models.StageCredentialsEmitted
	settlement.Status = models.SettlementStatusSettled
	if err := s.repo.Update(settlement); err != nil {
		log.WithField("error", err.Error()).Error("Failed to persist settled record")
	}
	metrics.SettlementStageTotal.WithLabelValues(string(models.StageCredentialsEmitted)).Inc()
	s.publisher.PayrollSettled(settlement)

	log.WithFields(logrus.Fields{
		"payroll_id": payrollID,
		"tx_hash":    txHash,
	}).Info("✅ Payroll settled")

	return &dto.CreatePayrollResponse{
		Success:          true,
		PayrollID:        payrollID,
		TxHash:           txHash,
		TransferTxHash:   status.TxHash,
		ClaimCredentials: credentials,
	}, nil
}

// validate checks the full request before any external call. The escrow
// address comparison is case-insensitive; the value comparison is exact
// big-integer equality.
func (s *SettlementService) validate(req *dto.CreatePayrollRequest) (common.Address, [8]*big.Int, *big.Int, [5]*big.Int, [5]common.Address, error) {
	var proof [8]*big.Int
	var commitments [5]*big.Int
	var recipients [5]common.Address

	fail := func(detail string) (common.Address, [8]*big.Int, *big.Int, [5]*big.Int, [5]common.Address, error) {
		return common.Address{}, proof, nil, commitments, recipients, newSettlementError(CodeValidation, detail, nil)
	}

	if err := utils.ValidateAddress(req.Employer); err != nil {
		return fail("employer is not a valid address")
	}
	employer := common.HexToAddress(req.Employer)

	escrow := s.ledger.EscrowAddress()
	// Only the destination and value are pinned; the authorization may be
	// funded by a sponsor account distinct from the employer.
	if !utils.SameAddress(req.Authorization.To, escrow.Hex()) {
		return fail(fmt.Sprintf("authorization destination must be the escrow address %s", escrow.Hex()))
	}

	totalAmount, ok := new(big.Int).SetString(req.TotalAmount, 10)
	if !ok || totalAmount.Sign() < 0 {
		return fail("totalAmount must be a non-negative integer")
	}
	authValue, ok := new(big.Int).SetString(req.Authorization.Value, 10)
	if !ok {
		return fail("authorization value must be a decimal integer")
	}
	if authValue.Cmp(totalAmount) != 0 {
		return fail(fmt.Sprintf("authorization value %s does not equal totalAmount %s", req.Authorization.Value, req.TotalAmount))
	}

	if len(req.Proof) != 8 {
		return fail(fmt.Sprintf("proof must have exactly 8 elements, got %d", len(req.Proof)))
	}
	for i, raw := range req.Proof {
		v, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return fail(fmt.Sprintf("proof element %d is not a decimal integer", i))
		}
		proof[i] = v
	}

	if len(req.Commitments) != zk.MaxSlots {
		return fail(fmt.Sprintf("commitments must have exactly %d elements, got %d", zk.MaxSlots, len(req.Commitments)))
	}
	for i, raw := range req.Commitments {
		v, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return fail(fmt.Sprintf("commitment %d is not a decimal integer", i))
		}
		commitments[i] = v
	}

	if len(req.Recipients) == 0 || len(req.Recipients) > zk.MaxSlots {
		return fail(fmt.Sprintf("recipients must have between 1 and %d entries, got %d", zk.MaxSlots, len(req.Recipients)))
	}
	for i, addr := range req.Recipients {
		if err := utils.ValidateAddress(addr); err != nil {
			return fail(fmt.Sprintf("recipient %d is not a valid address: %s", i, addr))
		}
		recipients[i] = common.HexToAddress(addr)
	}
	// Remaining slots stay as the zero-address sentinel.

	if len(req.ClaimCredentials) > len(req.Recipients) {
		return fail("claim credentials exceed recipient count")
	}

	return employer, proof, totalAmount, commitments, recipients, nil
}

func (s *SettlementService) advance(settlement *models.PayrollSettlement, stage models.SettlementStage) {
	settlement.Stage = stage
	if err := s.repo.Update(settlement); err != nil {
		logrus.WithFields(logrus.Fields{
			"settlement_id": settlement.ID,
			"stage":         stage,
			"error":         err.Error(),
		}).Error("Failed to persist settlement stage")
	}
	metrics.SettlementStageTotal.WithLabelValues(string(stage)).Inc()
}

func (s *SettlementService) fail(settlement *models.PayrollSettlement, code, detail string, cause error) error {
	settlement.Status = models.SettlementStatusFailed
	settlement.ErrorCode = code
	settlement.ErrorDetail = detail
	if err := s.repo.Update(settlement); err != nil {
		logrus.WithFields(logrus.Fields{
			"settlement_id": settlement.ID,
			"error":         err.Error(),
		}).Error("Failed to persist settlement failure")
	}
	metrics.SettlementFailuresTotal.WithLabelValues(code).Inc()

	logrus.WithFields(logrus.Fields{
		"settlement_id": settlement.ID,
		"code":          code,
		"detail":        detail,
	}).Warn("Settlement attempt failed")
	return newSettlementError(code, detail, cause)
}

// ListSettlements returns recent settlement records, optionally filtered by
// status. Used by the admin reconciliation endpoint.
func (s *SettlementService) ListSettlements(status string, limit int) ([]models.PayrollSettlement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if status != "" {
		return s.repo.ListByStatus(models.SettlementStatus(status), limit)
	}
	return s.repo.ListRecent(limit)
}
