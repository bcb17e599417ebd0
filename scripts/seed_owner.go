package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nhattran/cardfolio/pkg/auth"
)

func main() {
	fmt.Println("adding owner and primary card into database...")

	err := godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	DSN := os.Getenv("DB_DSN")
	OWNER_EMAIL := os.Getenv("OWNER_EMAIL")
	OWNER_PASSWORD := os.Getenv("OWNER_PASSWORD")
	OWNER_NAME := os.Getenv("OWNER_NAME")

	hash, err := auth.HashPassword(OWNER_PASSWORD)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), DSN)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	ownerID := uuid.New()
	query := `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = $3
		RETURNING id
	`
	if err := pool.QueryRow(context.Background(), query, ownerID, OWNER_EMAIL, hash).Scan(&ownerID); err != nil {
		log.Fatalf("cannot add user: %v", err)
	}

	// Card creation is out of band for the API, so the seed provisions the
	// primary card alongside the owner.
	cardQuery := `
		INSERT INTO cards (id, owner_id, is_primary, name, email, field_visibility, updated_at)
		VALUES ($1, $2, TRUE, $3, $4, '{"name": true, "email": true}', NOW())
		ON CONFLICT (owner_id) WHERE is_primary DO NOTHING
	`
	_, err = pool.Exec(context.Background(), cardQuery, uuid.New(), ownerID, OWNER_NAME, OWNER_EMAIL)
	if err != nil {
		log.Fatalf("cannot add primary card: %v", err)
	}

	fmt.Printf("added or updated owner '%s' successfully!\n", OWNER_EMAIL)
}
