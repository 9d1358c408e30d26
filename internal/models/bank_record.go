package models

import (
	"time"

	"github.com/google/uuid"
)

// BankRecord is one statement row produced by the tabular ingestor.
// Amount is signed: negative = debit (money spent), positive = credit.
type BankRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UploadBatchID   uuid.UUID `gorm:"index" json:"upload_batch_id"`
	StatementSource string    `gorm:"index" json:"statement_source"`
	TransactionDate time.Time `gorm:"column:transaction_date;index" json:"transaction_date"`
	Description     string    `json:"description"`
	Amount          float64   `gorm:"index" json:"amount"`
	ReferenceNumber string    `json:"reference_number"`
	AccountNumber   string    `json:"account_number"`
	Balance         *float64  `json:"balance,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
