// worker tails the throw event feed from Kafka and logs each event. Meant
// for local debugging of the feed and as the attachment point for downstream
// consumers. Set KAFKA_BROKERS; THROW_FEED_TOPIC and KAFKA_GROUP_ID have
// defaults.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"smartdisc/backend/internal/config"
	"smartdisc/backend/internal/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.ThrowFeedTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker: consuming %s from %v as %s", cfg.ThrowFeedTopic, brokers, cfg.KafkaGroupID)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Println("worker: shutting down")
				return
			}
			log.Fatalf("worker: read: %v", err)
		}
		var ev events.Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Printf("worker: skip malformed event at offset %d: %v", msg.Offset, err)
			continue
		}
		switch ev.Type {
		case events.TypeThrowCreated:
			log.Printf("throw %s created (disc %s, player %s, samples %d, new record %v %s)",
				ev.ThrowID, ev.DiscID, ev.PlayerID, ev.Samples, ev.NewRecord, ev.RecordMetric)
		case events.TypeThrowDeleted:
			log.Printf("throw %s deleted (player %s)", ev.ThrowID, ev.PlayerID)
		default:
			log.Printf("unknown event type %q at offset %d", ev.Type, msg.Offset)
		}
	}
}
