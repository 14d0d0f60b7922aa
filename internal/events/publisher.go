package events

import (
	"time"

	"payroll-backend/internal/clients"
	"payroll-backend/internal/metrics"
	"payroll-backend/internal/models"

	"github.com/sirupsen/logrus"
)

// SettlementEvent is the payload published on settlement outcomes.
type SettlementEvent struct {
	SettlementID   string `json:"settlement_id"`
	Employer       string `json:"employer"`
	PayrollID      *int64 `json:"payroll_id,omitempty"`
	TotalAmount    string `json:"total_amount"`
	TransferTxHash string `json:"transfer_tx_hash,omitempty"`
	TxHash         string `json:"tx_hash,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`
	ErrorDetail    string `json:"error_detail,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

// Publisher emits settlement lifecycle events over NATS. A nil Publisher is
// valid and publishes nothing, so NATS stays optional in deployments.
type Publisher struct {
	client  *clients.NATSClient
	subject string
}

// NewPublisher wraps a connected NATS client. subject is the prefix, e.g.
// "payroll" produces "payroll.settled" and "payroll.intervention_required".
func NewPublisher(client *clients.NATSClient, subject string) *Publisher {
	if subject == "" {
		subject = "payroll"
	}
	return &Publisher{client: client, subject: subject}
}

// PayrollSettled announces a fully settled payroll.
func (p *Publisher) PayrollSettled(settlement *models.PayrollSettlement) {
	p.publish(".settled", settlement)
}

// InterventionRequired announces a registration failure after a confirmed
// transfer, so operators can be paged to reconcile escrowed funds.
func (p *Publisher) InterventionRequired(settlement *models.PayrollSettlement) {
	p.publish(".intervention_required", settlement)
}

func (p *Publisher) publish(suffix string, settlement *models.PayrollSettlement) {
	if p == nil || p.client == nil {
		return
	}
	subject := p.subject + suffix

	event := SettlementEvent{
		SettlementID:   settlement.ID,
		Employer:       settlement.Employer,
		PayrollID:      settlement.PayrollID,
		TotalAmount:    settlement.TotalAmount,
		TransferTxHash: settlement.TransferTxHash,
		TxHash:         settlement.SettlementTxHash,
		ErrorCode:      settlement.ErrorCode,
		ErrorDetail:    settlement.ErrorDetail,
		Timestamp:      time.Now().Unix(),
	}

	if err := p.client.PublishJSON(subject, event); err != nil {
		// Event delivery is best-effort; settlement outcome is already
		// persisted before events go out.
		logrus.WithFields(logrus.Fields{
			"subject": subject,
			"error":   err.Error(),
		}).Warn("Failed to publish settlement event")
		return
	}
	metrics.NATSEventsPublished.WithLabelValues(subject).Inc()
}
