package main

import (
	"log"
	"time"

	"receipt-reconciliation-backend/internal/config"
	"receipt-reconciliation-backend/internal/models"
	"receipt-reconciliation-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	db := config.InitDB()

	db.AutoMigrate(
		&models.ReceiptRecord{},
		&models.BankRecord{},
		&models.ReconciliationMatch{},
		&models.UploadBatch{},
		&models.MatchAuditLog{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db)

	r.Run(config.Port())
}
