package models

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptRecord is a purchase extracted from an email receipt by the
// upstream extraction pipeline. Rows are append-only; the reconciliation
// core never mutates them.
type ReceiptRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Merchant         string    `gorm:"index" json:"merchant"`
	TransactionDate  time.Time `gorm:"column:transaction_date;index" json:"transaction_date"`
	Amount           float64   `gorm:"index" json:"amount"`
	SourceEmailID    string    `json:"source_email_id"`
	SourceAttachment string    `json:"source_attachment"`
	CreatedAt        time.Time `json:"created_at"`
}
