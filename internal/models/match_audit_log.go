package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionCreated = "created"
	AuditActionRemoved = "removed"
)

// MatchAuditLog is an append-only trail of manual interventions on the
// match table. Automatic runs are not audited; their matches are rebuilt
// wholesale on every run.
type MatchAuditLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	MatchID      uuid.UUID `gorm:"index"`
	ReceiptID    uuid.UUID
	BankRecordID uuid.UUID
	Action       string
	Notes        string
	CreatedAt    time.Time
}
