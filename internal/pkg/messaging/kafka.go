package messaging

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaConfig struct {
	Brokers      []string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka writes through one writer for every topic. Messages with the same key
// land on the same partition. Each Publish is its own batch, so the batch
// timeout is kept short.
type Kafka struct {
	writer *kafka.Writer
}

func NewKafka(clientID string, cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: kafka brokers", ErrMissingConfig)
	}

	return &Kafka{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		Transport: &kafka.Transport{
			ClientID:    clientID,
			DialTimeout: cfg.DialTimeout,
		},
	}}, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, msg Message) error {
	if err := checkPublish(ctx, topic); err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, kafkaMessage(topic, msg)); err != nil {
		return fmt.Errorf("messaging: kafka write %s: %w", topic, err)
	}
	return nil
}

func (k *Kafka) Close() error { return k.writer.Close() }

// kafkaMessage sorts headers so identical messages encode identically.
func kafkaMessage(topic string, msg Message) kafka.Message {
	km := kafka.Message{Topic: topic, Value: msg.Body, Time: time.Now()}
	if msg.Key != "" {
		km.Key = []byte(msg.Key)
	}

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(msg.Headers[k])})
	}
	return km
}
