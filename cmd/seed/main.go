package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	name := getenvDefault("SEED_HOLDER_NAME", "Demo Holder")
	email := getenvDefault("SEED_HOLDER_EMAIL", "demo@example.com")
	password := getenvDefault("SEED_HOLDER_PASSWORD", "Demo1234!")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	// hash password with bcrypt cost 10
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// upsert holder by email
	holderQuery := `
	INSERT INTO holders (id, name, email, password_hash, verified, created_at)
	VALUES ($1, $2, $3, $4, TRUE, $5)
	ON CONFLICT (email) DO UPDATE SET
	  name = EXCLUDED.name,
	  password_hash = EXCLUDED.password_hash
	RETURNING id
	`

	var holderID string
	if err := db.QueryRow(holderQuery, uuid.NewString(), name, email, string(hash), time.Now()).Scan(&holderID); err != nil {
		log.Fatalf("failed to seed holder: %v", err)
	}
	fmt.Printf("Seeded holder: email=%s id=%s\n", email, holderID)

	demoAssets := []struct {
		serial   string
		name     string
		category string
		cost     float64
	}{
		{"DL-1001", "Dell Latitude 7420", "Laptop", 1250},
		{"HP-2001", "HP E24 Monitor", "Monitor", 230},
		{"LG-3001", "Logitech MX Keys", "Keyboard", 110},
	}

	assetQuery := `
	INSERT INTO assets (id, serial_number, name, category, description, cost, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, '', $5, 'Available', $6, $6)
	ON CONFLICT (serial_number) DO NOTHING
	`

	for _, a := range demoAssets {
		if _, err := db.Exec(assetQuery, uuid.NewString(), a.serial, a.name, a.category, a.cost, time.Now()); err != nil {
			log.Fatalf("failed to seed asset %s: %v", a.serial, err)
		}
		fmt.Printf("Seeded asset: serial=%s name=%s\n", a.serial, a.name)
	}
}

func getenvDefault(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
