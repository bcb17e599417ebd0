package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nhattran/cardfolio/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	TopicCardEvents = "card.events"
)

type KafkaProducerClient struct {
	CardEventsWriter *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	cardWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicCardEvents,
		Balancer: &kafka.LeastBytes{},
	}

	fmt.Println("Initialize Kafka Producers successfully.")

	return &KafkaProducerClient{
		CardEventsWriter: cardWriter,
	}, nil
}

func (c *KafkaProducerClient) PublishCardEvent(ctx context.Context, payload CardEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cannot marshal card event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(payload.CardID.String()),
		Value: value,
	}
	if err := c.CardEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("cannot publish card event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.CardEventsWriter != nil {
		c.CardEventsWriter.Close()
	}
	fmt.Println("Closed Kafka Producers")
}
