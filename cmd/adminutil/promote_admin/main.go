// Promotes an existing account to ADMIN. Run it once against the
// production database to bootstrap the first administrator.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/donatehub/backend/internal/db"
)

func main() {
	userID := flag.Int64("user", 0, "id of the account to promote")
	flag.Parse()

	if *userID == 0 {
		log.Fatal("usage: promote_admin -user <id>")
	}

	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	tag, err := pool.Exec(ctx,
		`UPDATE users SET role = 'ADMIN', updated_at = NOW() WHERE id = $1`, *userID)
	if err != nil {
		log.Fatalf("promote: %v", err)
	}
	if tag.RowsAffected() == 0 {
		log.Fatalf("no account with id %d", *userID)
	}

	log.Printf("account %d promoted to ADMIN", *userID)
}
