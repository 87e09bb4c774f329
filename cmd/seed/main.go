// seed inserts development sample data: the demo discs and a demo trainer.
// Goes through the services so the inserts leave a proper audit trail.
// Idempotent: records that already exist are skipped.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/audit"
	auditdomain "smartdisc/backend/internal/audit/domain"
	"smartdisc/backend/internal/config"
	"smartdisc/backend/internal/db"
	discservice "smartdisc/backend/internal/disc/service"
	identitydomain "smartdisc/backend/internal/identity/domain"
	identityservice "smartdisc/backend/internal/identity/service"
	"smartdisc/backend/internal/security"
	"smartdisc/backend/internal/store"
)

const (
	trainerEmail    = "trainer@example.com"
	trainerPassword = "trainer1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer sqlDB.Close()

	ctx := context.Background()
	st := store.NewPostgres(sqlDB)
	discs := discservice.NewService(st, audit.NewRecorder())
	identity := identityservice.NewService(st, security.NewHasher(cfg.BcryptCost))

	actor := auditdomain.Actor{UserID: "seed", Agent: "cmd/seed"}

	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("smartdisc-%03d", i)
		_, err := discs.Register(ctx, actor, discservice.RegisterInput{
			ID:              id,
			Name:            fmt.Sprintf("Training Disc %d", i),
			Model:           "SD-Mk2",
			SerialNumber:    fmt.Sprintf("SN-2026-%04d", i),
			FirmwareVersion: "1.4.2",
		})
		switch {
		case err == nil:
			log.Printf("seed: registered disc %s", id)
		case isConflict(err):
			log.Printf("seed: disc %s already exists, skipping", id)
		default:
			log.Fatalf("seed: register disc %s: %v", id, err)
		}
	}

	_, err = identity.Register(ctx, identityservice.RegisterInput{
		FirstName:       "Demo",
		LastName:        "Trainer",
		Email:           trainerEmail,
		Password:        trainerPassword,
		PasswordConfirm: trainerPassword,
		Role:            identitydomain.RoleTrainer,
	})
	switch {
	case err == nil:
		log.Printf("seed: registered trainer %s (password %q)", trainerEmail, trainerPassword)
	case isConflict(err):
		log.Printf("seed: trainer %s already exists, skipping", trainerEmail)
	default:
		log.Fatalf("seed: register trainer: %v", err)
	}
}

func isConflict(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e) && e.Kind == apperr.KindConflict
}
