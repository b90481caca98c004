package repository

import (
	"context"

	"SimuTrade/internal/domain/models"
	"SimuTrade/internal/domain/repository"
	pkgkafka "SimuTrade/pkg/kafka"
)

// KafkaArchiver publishes live ticks to a Kafka topic, keyed by symbol
// so downstream consumers see per-symbol ordering.
type KafkaArchiver struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaArchiver creates a Kafka-backed tick archiver.
func NewKafkaArchiver(producer *pkgkafka.Producer, topic string) repository.Archiver {
	return &KafkaArchiver{producer: producer, topic: topic}
}

func tickPayload(t *models.Tick) map[string]interface{} {
	return map[string]interface{}{
		"symbol": t.Symbol,
		"t":      t.Timestamp,
		"p":      t.Price,
		"v":      t.Volume,
	}
}

func (a *KafkaArchiver) Archive(ctx context.Context, t *models.Tick) error {
	return a.producer.Publish(ctx, a.topic, []byte(t.Symbol), tickPayload(t))
}

func (a *KafkaArchiver) ArchiveBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(ticks))
	for i, t := range ticks {
		msgs[i] = pkgkafka.Message{Key: []byte(t.Symbol), Value: tickPayload(t)}
	}
	return a.producer.PublishBatch(ctx, a.topic, msgs)
}

func (a *KafkaArchiver) Close() error {
	if a.producer != nil {
		return a.producer.Close()
	}
	return nil
}
