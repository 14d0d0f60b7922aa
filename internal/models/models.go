package models

import (
	"time"
)

// SettlementStage tracks how far a gasless settlement attempt progressed.
// The sequence is strictly forward; there is no branching back.
type SettlementStage string

const (
	StageValidated          SettlementStage = "validated"
	StageAuthSubmitted      SettlementStage = "auth_submitted"
	StageTransferConfirmed  SettlementStage = "transfer_confirmed"
	StagePayrollRegistered  SettlementStage = "payroll_registered"
	StageCredentialsEmitted SettlementStage = "credentials_emitted"
)

// SettlementStatus is the terminal disposition of an attempt.
type SettlementStatus string

const (
	SettlementStatusPending SettlementStatus = "pending"
	SettlementStatusSettled SettlementStatus = "settled"
	SettlementStatusFailed  SettlementStatus = "failed"
	// SettlementStatusNeedsIntervention marks the severe case: the transfer
	// confirmed and funds sit in escrow, but on-chain registration failed.
	// These records are surfaced on the admin API for manual reconciliation.
	SettlementStatusNeedsIntervention SettlementStatus = "needs_intervention"
)

// PayrollSettlement records one settlement attempt. Authorizations are
// single-use, so a retry after failure always shows up as a fresh record.
type PayrollSettlement struct {
	ID                 string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Employer           string           `gorm:"type:varchar(42);index" json:"employer"`
	TotalAmount        string           `gorm:"type:varchar(78)" json:"total_amount"`
	AuthorizationNonce string           `gorm:"type:varchar(66);index" json:"authorization_nonce"`
	AuthorizationID    string           `gorm:"type:varchar(66)" json:"authorization_id"`
	Stage              SettlementStage  `gorm:"type:varchar(32)" json:"stage"`
	Status             SettlementStatus `gorm:"type:varchar(32);index" json:"status"`
	TransferTxHash     string           `gorm:"type:varchar(66)" json:"transfer_tx_hash"`
	SettlementTxHash   string           `gorm:"type:varchar(66)" json:"settlement_tx_hash"`
	PayrollID          *int64           `gorm:"index" json:"payroll_id"`
	ErrorCode          string           `gorm:"type:varchar(48)" json:"error_code"`
	ErrorDetail        string           `gorm:"type:text" json:"error_detail"`
	ClientIP           string           `gorm:"type:varchar(45)" json:"client_ip"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (PayrollSettlement) TableName() string {
	return "payroll_settlements"
}
