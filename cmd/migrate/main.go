package main

import (
	"context"
	"log"
	"os"
	"time"

	"campusbook/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	addr := os.Getenv("DB_ADDR")
	if addr == "" {
		log.Fatal("DB_ADDR must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	applied, err := db.Migrate(ctx, addr)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if len(applied) == 0 {
		log.Println("schema is up to date")
		return
	}
	for _, name := range applied {
		log.Printf("applied %s", name)
	}
}
