package repository

import (
	"receipt-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) List() ([]models.ReconciliationMatch, error) {
	var matches []models.ReconciliationMatch
	err := r.db.Order("created_at DESC, id ASC").Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) ListManual() ([]models.ReconciliationMatch, error) {
	var matches []models.ReconciliationMatch
	err := r.db.Where("is_manual = ?", true).Find(&matches).Error
	return matches, err
}

// ExistsForIDs reports whether either id already appears in any match row,
// manual or automatic.
func (r *MatchRepository) ExistsForIDs(receiptID, bankRecordID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.ReconciliationMatch{}).
		Where("receipt_id = ? OR bank_record_id = ?", receiptID, bankRecordID).
		Count(&count).Error
	return count > 0, err
}

func (r *MatchRepository) Create(match *models.ReconciliationMatch) error {
	return r.db.Create(match).Error
}

// DeleteByID removes a match row and reports whether one existed.
func (r *MatchRepository) DeleteByID(id uuid.UUID) (bool, error) {
	result := r.db.Delete(&models.ReconciliationMatch{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
