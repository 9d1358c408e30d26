package repository

import (
	"receipt-reconciliation-backend/internal/models"

	"gorm.io/gorm"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) DB() *gorm.DB {
	return r.db
}

// FindEligible returns receipts that can enter a reconciliation run: a
// usable amount and date, newest first. Secondary ordering keeps the greedy
// pass deterministic when dates collide.
func (r *ReceiptRepository) FindEligible() ([]models.ReceiptRecord, error) {
	var receipts []models.ReceiptRecord
	err := r.db.
		Where("amount > 0").
		Order("transaction_date DESC, created_at ASC, id ASC").
		Find(&receipts).Error
	return receipts, err
}

func (r *ReceiptRepository) GetByID(id string) (*models.ReceiptRecord, error) {
	var receipt models.ReceiptRecord
	if err := r.db.First(&receipt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *ReceiptRepository) Create(receipt *models.ReceiptRecord) error {
	return r.db.Create(receipt).Error
}

func (r *ReceiptRepository) CreateMany(receipts []models.ReceiptRecord) error {
	if len(receipts) == 0 {
		return nil
	}
	return r.db.Create(&receipts).Error
}

func (r *ReceiptRepository) GetAll() ([]models.ReceiptRecord, error) {
	var receipts []models.ReceiptRecord
	err := r.db.Order("transaction_date DESC").Find(&receipts).Error
	return receipts, err
}
