package repository

import (
	"payroll-backend/internal/models"

	"gorm.io/gorm"
)

// SettlementRepository persists payroll settlement attempts. The records are
// the audit trail operators use to reconcile registration failures after a
// confirmed transfer.
type SettlementRepository interface {
	Create(settlement *models.PayrollSettlement) error
	Update(settlement *models.PayrollSettlement) error
	GetByID(id string) (*models.PayrollSettlement, error)
	ListByStatus(status models.SettlementStatus, limit int) ([]models.PayrollSettlement, error)
	ListRecent(limit int) ([]models.PayrollSettlement, error)
}

type settlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) Create(settlement *models.PayrollSettlement) error {
	return r.db.Create(settlement).Error
}

func (r *settlementRepository) Update(settlement *models.PayrollSettlement) error {
	return r.db.Save(settlement).Error
}

func (r *settlementRepository) GetByID(id string) (*models.PayrollSettlement, error) {
	var settlement models.PayrollSettlement
	if err := r.db.Where("id = ?", id).First(&settlement).Error; err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (r *settlementRepository) ListByStatus(status models.SettlementStatus, limit int) ([]models.PayrollSettlement, error) {
	var settlements []models.PayrollSettlement
	err := r.db.Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&settlements).Error
	return settlements, err
}

func (r *settlementRepository) ListRecent(limit int) ([]models.PayrollSettlement, error) {
	var settlements []models.PayrollSettlement
	err := r.db.Order("created_at DESC").Limit(limit).Find(&settlements).Error
	return settlements, err
}
