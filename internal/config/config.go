package config

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the postgres connection described by DATABASE_URL, or by the
// individual DB_* variables when no URL is set.
func InitDB() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			envOr("DB_HOST", "localhost"),
			envOr("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			envOr("DB_NAME", "reconciliation"),
			envOr("DB_PORT", "5432"),
			envOr("DB_SSLMODE", "disable"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	return db
}

// Port returns the HTTP listen address.
func Port() string {
	return ":" + envOr("PORT", "8080")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
