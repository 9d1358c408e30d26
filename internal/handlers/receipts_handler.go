package handler

import (
	"encoding/csv"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"receipt-reconciliation-backend/internal/models"
	"receipt-reconciliation-backend/internal/normalize"
	"receipt-reconciliation-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReceiptsHandler seeds ReceiptRecords. In production these rows come from
// the extraction pipeline; this surface exists for imports and testing.
type ReceiptsHandler struct {
	receiptRepo *repository.ReceiptRepository
}

func NewReceiptsHandler(receiptRepo *repository.ReceiptRepository) *ReceiptsHandler {
	return &ReceiptsHandler{receiptRepo: receiptRepo}
}

// CreateReceipt inserts a single receipt.
func (h *ReceiptsHandler) CreateReceipt(c *gin.Context) {
	var payload struct {
		Merchant        string `json:"merchant"`
		Amount          string `json:"amount"`
		TransactionDate string `json:"transaction_date"`
		SourceEmailID   string `json:"source_email_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Merchant == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "merchant required"})
		return
	}

	amount, err := normalize.ParseAmount(payload.Amount)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	date, err := normalize.ParseDate(payload.TransactionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction date"})
		return
	}

	receipt := &models.ReceiptRecord{
		ID:              uuid.New(),
		Merchant:        payload.Merchant,
		TransactionDate: date,
		Amount:          amount,
		SourceEmailID:   payload.SourceEmailID,
		CreatedAt:       time.Now(),
	}
	if err := h.receiptRepo.Create(receipt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "receipt created", "receipt": receipt})
}

// UploadReceipts bulk-imports receipts from a CSV with columns
// merchant,date,amount[,source]. Bad rows are skipped with a log line.
func (h *ReceiptsHandler) UploadReceipts(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	log.Println("Received receipts file:", header.Filename, "size:", header.Size)

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read CSV header"})
		return
	}

	inserted := 0
	rowNum := 0
	var receipts []models.ReceiptRecord

	for {
		record, err := reader.Read()
		rowNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("skipping receipt row %d: %v", rowNum, err)
			continue
		}
		if len(record) < 3 || strings.Join(record, "") == "" {
			continue
		}

		merchant := strings.TrimSpace(record[0])
		if merchant == "" {
			log.Printf("skipping receipt row %d: merchant empty", rowNum)
			continue
		}

		date, err := normalize.ParseDate(record[1])
		if err != nil {
			log.Printf("skipping receipt row %d: invalid date %q", rowNum, record[1])
			continue
		}
		amount, err := normalize.ParseAmount(record[2])
		if err != nil || amount < 0 {
			log.Printf("skipping receipt row %d: invalid amount %q", rowNum, record[2])
			continue
		}

		receipt := models.ReceiptRecord{
			ID:              uuid.New(),
			Merchant:        merchant,
			TransactionDate: date,
			Amount:          amount,
			CreatedAt:       time.Now(),
		}
		if len(record) > 3 {
			receipt.SourceEmailID = strings.TrimSpace(record[3])
		}
		receipts = append(receipts, receipt)
		inserted++
	}

	if err := h.receiptRepo.CreateMany(receipts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Println("Total receipts inserted:", inserted)
	c.JSON(http.StatusOK, gin.H{
		"file":          header.Filename,
		"receiptsAdded": inserted,
	})
}
