package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
)

// Notifier publishes order-placed notifications to a topic.
type Notifier struct {
	producer sarama.SyncProducer
	topic    string
	failed   prometheus.Counter
	logger   logx.Logger
}

// NewNotifier connects a sync producer to the brokers.
func NewNotifier(logger logx.Logger, brokers []string, topic string, failed prometheus.Counter) (*Notifier, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Timeout = 5 * time.Second

	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("new sync producer: %w", err)
	}
	return NewNotifierFromProducer(logger, prod, topic, failed), nil
}

// NewNotifierFromProducer wraps an existing producer.
func NewNotifierFromProducer(logger logx.Logger, prod sarama.SyncProducer, topic string, failed prometheus.Counter) *Notifier {
	return &Notifier{producer: prod, topic: topic, failed: failed, logger: logger}
}

// OrderPlaced publishes the order keyed by its id.
func (n *Notifier) OrderPlaced(_ context.Context, o domain.Order) error {
	payload, err := json.Marshal(FromOrder(o))
	if err != nil {
		return fmt.Errorf("marshal order placed: %w", err)
	}
	partition, offset, err := n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(o.ID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		if n.failed != nil {
			n.failed.Inc()
		}
		return fmt.Errorf("publish order placed: %w", err)
	}
	n.logger.Debug("order placed published",
		logx.String("order_id", o.ID),
		logx.Int("partition", int(partition)),
		logx.Int64("offset", offset),
	)
	return nil
}

// Close closes the producer.
func (n *Notifier) Close() error {
	return n.producer.Close()
}

// NopNotifier drops notifications. Used when kafka is not configured.
type NopNotifier struct{}

// OrderPlaced does nothing.
func (NopNotifier) OrderPlaced(context.Context, domain.Order) error { return nil }
