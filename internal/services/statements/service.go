// Package statements persists ingested bank-statement uploads, wrapping the
// tabular parser with upload-batch bookkeeping.
package statements

import (
	"log"
	"time"

	"receipt-reconciliation-backend/internal/apperr"
	"receipt-reconciliation-backend/internal/ingest"
	"receipt-reconciliation-backend/internal/models"
	"receipt-reconciliation-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// IngestResult is what one statement upload reports back to the caller.
// Errors are per-row and expected; the upload as a whole succeeded as long
// as at least one row parsed.
type IngestResult struct {
	BatchID        uuid.UUID           `json:"batch_id"`
	Records        []models.BankRecord `json:"records"`
	Errors         []ingest.RowError   `json:"errors"`
	TotalRows      int                 `json:"total_rows"`
	SuccessfulRows int                 `json:"successful_rows"`
}

// Ingest parses raw statement bytes and persists the resulting bank records
// under a new upload batch. mapping and delimiter are optional overrides.
func (s *Service) Ingest(filename, source string, raw []byte, mapping *ingest.Mapping, delimiter rune) (*IngestResult, error) {
	parsed, err := ingest.Parse(raw, mapping, delimiter)
	if err != nil {
		return nil, err
	}

	batch := &models.UploadBatch{
		ID:              uuid.New(),
		Filename:        filename,
		StatementSource: source,
		TotalRows:       parsed.TotalRows,
		SuccessfulRows:  parsed.SuccessfulRows,
		ErrorCount:      len(parsed.Errors),
		Status:          "processing",
		CreatedAt:       time.Now(),
	}

	records := make([]models.BankRecord, 0, len(parsed.Records))
	for _, cand := range parsed.Records {
		records = append(records, models.BankRecord{
			ID:              uuid.New(),
			UploadBatchID:   batch.ID,
			StatementSource: source,
			TransactionDate: cand.Date,
			Description:     cand.Description,
			Amount:          cand.Amount,
			ReferenceNumber: cand.Reference,
			AccountNumber:   cand.Account,
			Balance:         cand.Balance,
			CreatedAt:       time.Now(),
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		if err := repository.NewBankRecordRepository(tx).InsertMany(records); err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(batch).Updates(map[string]interface{}{
			"status":       "completed",
			"completed_at": now,
		}).Error
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, err, "persisting statement upload")
	}

	log.Printf("ingested %s: %d/%d rows, %d errors",
		filename, parsed.SuccessfulRows, parsed.TotalRows, len(parsed.Errors))

	return &IngestResult{
		BatchID:        batch.ID,
		Records:        records,
		Errors:         parsed.Errors,
		TotalRows:      parsed.TotalRows,
		SuccessfulRows: parsed.SuccessfulRows,
	}, nil
}
