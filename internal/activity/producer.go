package activity

import (
	"context"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/photoshare/internal/config"
)

// KafkaProducer publishes activity records to the activity topic.
type KafkaProducer struct {
	Client   *wbfkafka.Producer
	strategy retry.Strategy
}

// NewKafkaProducer creates a producer for the configured topic.
// - cfg: Kafka configuration struct
// - s: retry strategy
func NewKafkaProducer(cfg *config.Kafka, s retry.Strategy) *KafkaProducer {
	producer := wbfkafka.NewProducer(cfg.Brokers, cfg.Topic)

	return &KafkaProducer{
		Client:   producer,
		strategy: s,
	}
}

// Send publishes one record, retrying per the configured strategy.
func (p *KafkaProducer) Send(ctx context.Context, key, value []byte) error {
	return p.Client.SendWithRetry(ctx, p.strategy, key, value)
}
