package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"fleet-route-service/internal/adapters/repositories"
	"fleet-route-service/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(sqlDB); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
