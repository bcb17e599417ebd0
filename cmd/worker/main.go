package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/nhattran/cardfolio/adapters/event"
	"github.com/nhattran/cardfolio/adapters/persistence"
	"github.com/nhattran/cardfolio/internal/config"
)

func main() {
	fmt.Println("Starting Cardfolio Worker...")

	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	// Redis view counters
	redisClient, err := persistence.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Redis: %v", err)
	}
	defer redisClient.Close()

	viewCounter := persistence.NewCardViewCounter(redisClient)

	// Kafka Consumer
	cardConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicCardEvents,
		GroupID:  "card-view-counter-group",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer cardConsumer.Close()

	log.Printf("Worker listening on topic '%s'...", event.TopicCardEvents)

	ctx := context.Background()
	for {
		msg, err := cardConsumer.ReadMessage(ctx)
		if err != nil {
			log.Printf("ERROR: Failed to read message from Kafka: %v", err)
			continue
		}

		var payload event.CardEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			log.Printf("ERROR: Failed to unmarshal event: %v. Skipping.", err)
			commitMessage(cardConsumer, msg)
			continue
		}

		// Only view events feed the counters; other card events are
		// consumed by other groups.
		if payload.EventType == event.CardEventTypeViewed {
			if err := viewCounter.Increment(ctx, payload.CardID); err != nil {
				log.Printf("ERROR: Failed to count view for CardID %s: %v", payload.CardID, err)
				continue
			}
		}

		commitMessage(cardConsumer, msg)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Printf("ERROR: Failed to commit message: %v", err)
	}
}
