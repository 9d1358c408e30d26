package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "receipt-reconciliation-backend/internal/handlers"
	"receipt-reconciliation-backend/internal/repository"
	"receipt-reconciliation-backend/internal/services/manualmatch"
	"receipt-reconciliation-backend/internal/services/reconciliation"
	"receipt-reconciliation-backend/internal/services/statements"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	receiptRepo := repository.NewReceiptRepository(db)
	bankRepo := repository.NewBankRecordRepository(db)

	statementService := statements.NewService(db)
	reconService := reconciliation.NewService(db, receiptRepo, bankRepo)
	registry := manualmatch.NewRegistry(db)

	reconHandler := handler.NewReconciliationHandler(statementService, reconService, registry)
	receiptsHandler := handler.NewReceiptsHandler(receiptRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Statement uploads
	stmts := api.Group("/statements")
	stmts.POST("/upload", reconHandler.UploadStatement)

	// Reconciliation runs
	recon := api.Group("/reconciliation")
	recon.POST("/run", reconHandler.RunReconciliation)
	recon.GET("/state", reconHandler.GetState)

	// Match-level routes
	matches := api.Group("/matches")
	matches.POST("/manual", reconHandler.CreateManualMatch)
	matches.DELETE("/:id", reconHandler.RemoveMatch)

	// Receipt seeding routes
	receipts := api.Group("/receipts")
	{
		receipts.POST("", receiptsHandler.CreateReceipt)
		receipts.POST("/upload", receiptsHandler.UploadReceipts)
	}
}
