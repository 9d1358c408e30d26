package repository

import (
	"receipt-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BankRecordRepository struct {
	db *gorm.DB
}

func NewBankRecordRepository(db *gorm.DB) *BankRecordRepository {
	return &BankRecordRepository{db: db}
}

func (r *BankRecordRepository) InsertMany(records []models.BankRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(&records).Error
}

// FindEligibleDebits returns the statement rows that can be matched against
// receipts: debits only (negative amount), newest first.
func (r *BankRecordRepository) FindEligibleDebits() ([]models.BankRecord, error) {
	var records []models.BankRecord
	err := r.db.
		Where("amount < 0").
		Order("transaction_date DESC, created_at ASC, id ASC").
		Find(&records).Error
	return records, err
}

func (r *BankRecordRepository) GetByID(id string) (*models.BankRecord, error) {
	var record models.BankRecord
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *BankRecordRepository) ListByBatch(batchID uuid.UUID) ([]models.BankRecord, error) {
	var records []models.BankRecord
	err := r.db.
		Where("upload_batch_id = ?", batchID).
		Order("transaction_date DESC").
		Find(&records).Error
	return records, err
}
