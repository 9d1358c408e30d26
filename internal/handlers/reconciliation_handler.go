package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"receipt-reconciliation-backend/internal/apperr"
	"receipt-reconciliation-backend/internal/ingest"
	"receipt-reconciliation-backend/internal/services/manualmatch"
	"receipt-reconciliation-backend/internal/services/reconciliation"
	"receipt-reconciliation-backend/internal/services/statements"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReconciliationHandler struct {
	statements *statements.Service
	recon      *reconciliation.Service
	registry   *manualmatch.Registry
}

func NewReconciliationHandler(
	st *statements.Service,
	recon *reconciliation.Service,
	registry *manualmatch.Registry,
) *ReconciliationHandler {
	return &ReconciliationHandler{statements: st, recon: recon, registry: registry}
}

// UploadStatement ingests a delimited statement file. Optional form fields:
// "mapping" (JSON column mapping), "delimiter" (single character or "tab"),
// "source" (statement source label).
func (h *ReconciliationHandler) UploadStatement(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}

	var mapping *ingest.Mapping
	if m := c.PostForm("mapping"); m != "" {
		mapping = &ingest.Mapping{}
		if err := json.Unmarshal([]byte(m), mapping); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mapping JSON"})
			return
		}
	}

	delimiter := parseDelimiter(c.PostForm("delimiter"))
	source := c.PostForm("source")
	if source == "" {
		source = header.Filename
	}

	result, err := h.statements.Ingest(header.Filename, source, raw, mapping, delimiter)
	if err != nil {
		log.Println("statement ingest failed:", err)
		status := http.StatusInternalServerError
		if apperr.KindOf(err) == apperr.ParseError {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id":        result.BatchID.String(),
		"records":         result.Records,
		"errors":          result.Errors,
		"total_rows":      result.TotalRows,
		"successful_rows": result.SuccessfulRows,
	})
}

// RunReconciliation executes one automatic matching pass.
func (h *ReconciliationHandler) RunReconciliation(c *gin.Context) {
	summary, err := h.recon.Run()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reconciliation completed", "summary": summary})
}

// GetState returns all matches plus the unmatched records on either side.
func (h *ReconciliationHandler) GetState(c *gin.Context) {
	state, err := h.recon.GetState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// CreateManualMatch pins a receipt to a bank record by hand.
func (h *ReconciliationHandler) CreateManualMatch(c *gin.Context) {
	var payload struct {
		ReceiptID    string `json:"receipt_id"`
		BankRecordID string `json:"bank_record_id"`
		Notes        string `json:"notes"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	receiptID, err := uuid.Parse(payload.ReceiptID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}
	bankRecordID, err := uuid.Parse(payload.BankRecordID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bank record ID"})
		return
	}

	match, err := h.registry.Create(receiptID, bankRecordID, payload.Notes)
	if err != nil {
		if errors.Is(err, &apperr.Error{Kind: apperr.DuplicateMatch}) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "manual match created", "match": match})
}

// RemoveMatch deletes a match row by id.
func (h *ReconciliationHandler) RemoveMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match ID"})
		return
	}

	removed, err := h.registry.Remove(matchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found", "removed": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "match removed", "removed": true})
}

func parseDelimiter(s string) rune {
	switch s {
	case "":
		return 0
	case "tab", "\\t":
		return '\t'
	default:
		return []rune(s)[0]
	}
}
