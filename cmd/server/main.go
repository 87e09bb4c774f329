// server is the smartdisc API: throw ingestion, measurement batches,
// revision history, highscores, and the trainer surfaces over HTTP.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	assignmentservice "smartdisc/backend/internal/assignment/service"
	"smartdisc/backend/internal/audit"
	"smartdisc/backend/internal/config"
	"smartdisc/backend/internal/db"
	discservice "smartdisc/backend/internal/disc/service"
	"smartdisc/backend/internal/events"
	identityservice "smartdisc/backend/internal/identity/service"
	"smartdisc/backend/internal/ingest"
	measurementservice "smartdisc/backend/internal/measurement/service"
	"smartdisc/backend/internal/rbac"
	"smartdisc/backend/internal/security"
	"smartdisc/backend/internal/server"
	"smartdisc/backend/internal/store"
	"smartdisc/backend/internal/telemetry/otel"
	throwservice "smartdisc/backend/internal/throw/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "smartdisc-backend", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer sqlDB.Close()

	// Throw events go to Kafka when brokers are configured, otherwise to the
	// OTLP log pipeline (a no-op when telemetry is off too).
	var producer events.Producer
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		producer, err = events.NewKafkaProducer(brokers, cfg.ThrowFeedTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
	} else {
		producer = otel.NewEventProducer(providers.LoggerProvider)
	}

	st := store.NewPostgres(sqlDB)
	recorder := audit.NewRecorder()
	access, err := rbac.NewEvaluator()
	if err != nil {
		log.Fatalf("rbac: %v", err)
	}

	srv := server.New(server.Deps{
		Ingest:       ingest.NewService(st, recorder, producer, ingest.DeletePolicy(cfg.HighscoreDeletePolicy)),
		Throws:       throwservice.NewService(st),
		Measurements: measurementservice.NewService(st),
		Discs:        discservice.NewService(st, recorder),
		Identity:     identityservice.NewService(st, security.NewHasher(cfg.BcryptCost)),
		Assignments:  assignmentservice.NewService(st),
		Audit:        audit.NewQuery(st),
		Access:       access,
		DB:           sqlDB,
	})

	go func() {
		log.Printf("http server listening on %s", cfg.HTTPAddr)
		if err := srv.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down http server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight post-commit event emits drain before closing the producer
	// and the exporters.
	time.Sleep(events.ShutdownDrainDuration)
	if err := producer.Close(); err != nil {
		log.Printf("producer close: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("http server stopped")
}
