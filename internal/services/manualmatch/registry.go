// Package manualmatch is the registry for user-created matches. Manual
// matches pin a receipt to a bank record with full confidence and survive
// automatic reconciliation runs untouched.
package manualmatch

import (
	"errors"
	"fmt"
	"time"

	"receipt-reconciliation-backend/internal/apperr"
	"receipt-reconciliation-backend/internal/models"
	"receipt-reconciliation-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Create records a manual match. Either id already appearing in any match
// row, manual or automatic, is an expected validation failure reported as a
// DuplicateMatch error, not a crash. The check and the insert share a
// transaction; the unique indexes on the match table backstop races.
func (r *Registry) Create(receiptID, bankRecordID uuid.UUID, notes string) (*models.ReconciliationMatch, error) {
	match := &models.ReconciliationMatch{
		ID:              uuid.New(),
		ReceiptID:       receiptID,
		BankRecordID:    bankRecordID,
		ConfidenceScore: 100,
		MatchType:       models.MatchTypeManual,
		IsManual:        true,
		Notes:           notes,
		CreatedAt:       time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		exists, err := repository.NewMatchRepository(tx).ExistsForIDs(receiptID, bankRecordID)
		if err != nil {
			return apperr.Wrap(apperr.PersistenceFailure, err, "checking existing matches")
		}
		if exists {
			return apperr.New(apperr.DuplicateMatch,
				fmt.Sprintf("receipt %s or bank record %s is already matched", receiptID, bankRecordID))
		}
		if err := tx.Create(match).Error; err != nil {
			return apperr.Wrap(apperr.PersistenceFailure, err, "inserting manual match")
		}
		if err := tx.Create(auditEntry(match, models.AuditActionCreated)).Error; err != nil {
			return apperr.Wrap(apperr.PersistenceFailure, err, "recording audit entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// Remove deletes a match row by id, manual or automatic, and reports
// whether a row was actually removed.
func (r *Registry) Remove(matchID uuid.UUID) (bool, error) {
	removed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var match models.ReconciliationMatch
		if err := tx.First(&match, "id = ?", matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return apperr.Wrap(apperr.PersistenceFailure, err, "loading match")
		}
		ok, err := repository.NewMatchRepository(tx).DeleteByID(matchID)
		if err != nil {
			return apperr.Wrap(apperr.PersistenceFailure, err, "deleting match")
		}
		if !ok {
			return nil
		}
		removed = true
		if err := tx.Create(auditEntry(&match, models.AuditActionRemoved)).Error; err != nil {
			return apperr.Wrap(apperr.PersistenceFailure, err, "recording audit entry")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func auditEntry(match *models.ReconciliationMatch, action string) *models.MatchAuditLog {
	return &models.MatchAuditLog{
		ID:           uuid.New(),
		MatchID:      match.ID,
		ReceiptID:    match.ReceiptID,
		BankRecordID: match.BankRecordID,
		Action:       action,
		Notes:        match.Notes,
		CreatedAt:    time.Now(),
	}
}
