// Package messaging publishes events to whichever broker the deployment runs.
// Callers see Publisher only.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

const (
	DriverNone   = "none"
	DriverKafka  = "kafka"
	DriverNATS   = "nats"
	DriverNSQ    = "nsq"
	DriverPubSub = "pubsub"
)

var (
	ErrUnknownDriver = errors.New("messaging: unknown driver")
	ErrTopicRequired = errors.New("messaging: topic is required")
	ErrMissingConfig = errors.New("messaging: missing broker config")
)

// Message is broker neutral. Key groups related messages: Kafka hashes it to
// a partition and Pub/Sub uses it as the ordering key.
type Message struct {
	Key     string
	Body    []byte
	Headers map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
}

// Broker is a Publisher holding a connection.
type Broker interface {
	Publisher
	io.Closer
}

// Config selects and configures one broker. ClientID names this service to the
// broker where the protocol has such a field.
type Config struct {
	Driver   string
	ClientID string
	Kafka    KafkaConfig
	NATS     NATSConfig
	NSQ      NSQConfig
	PubSub   PubSubConfig
}

// Open connects to the broker named by cfg.Driver. An empty driver means none.
func Open(ctx context.Context, cfg Config) (Broker, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverNone:
		return None{}, nil
	case DriverKafka:
		return NewKafka(cfg.ClientID, cfg.Kafka)
	case DriverNATS:
		return NewNATS(cfg.ClientID, cfg.NATS)
	case DriverNSQ:
		return NewNSQ(cfg.NSQ)
	case DriverPubSub:
		return NewPubSub(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func checkPublish(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	return nil
}

// None drops messages. It keeps deployments without a broker working.
type None struct{}

func (None) Publish(ctx context.Context, topic string, msg Message) error {
	slog.DebugContext(ctx, "event not published, no broker configured", "topic", topic, "key", msg.Key)
	return nil
}

func (None) Close() error { return nil }

const defaultFlushTimeout = 5 * time.Second
