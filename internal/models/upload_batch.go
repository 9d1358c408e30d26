package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadBatch records one statement-file ingestion.
type UploadBatch struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Filename        string     `json:"filename"`
	StatementSource string     `json:"statement_source"`
	TotalRows       int        `json:"total_rows"`
	SuccessfulRows  int        `json:"successful_rows"`
	ErrorCount      int        `json:"error_count"`
	Status          string     `gorm:"index" json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}
