package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Match type labels derived from the confidence score.
const (
	MatchTypeExact     = "exact"     // score >= 90
	MatchTypeProbable  = "probable"  // score >= 70
	MatchTypePossible  = "possible"  // score >= 50
	MatchTypeUncertain = "uncertain" // everything below
	MatchTypeManual    = "manual"    // user-created, score pinned to 100
)

// ReconciliationMatch pairs one receipt with one bank record. The unique
// indexes on both foreign keys back the at-most-once-matched invariant at
// the storage level; the services enforce it before writing.
type ReconciliationMatch struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiptID       uuid.UUID      `gorm:"uniqueIndex" json:"receipt_id"`
	BankRecordID    uuid.UUID      `gorm:"uniqueIndex" json:"bank_record_id"`
	ConfidenceScore float64        `json:"confidence_score"`
	MatchType       string         `gorm:"index" json:"match_type"`
	IsManual        bool           `gorm:"index" json:"is_manual"`
	Notes           string         `json:"notes"`
	MatchDetails    datatypes.JSON `json:"match_details,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// MatchTypeForScore maps a confidence score to its label.
func MatchTypeForScore(score float64) string {
	switch {
	case score >= 90:
		return MatchTypeExact
	case score >= 70:
		return MatchTypeProbable
	case score >= 50:
		return MatchTypePossible
	default:
		return MatchTypeUncertain
	}
}
