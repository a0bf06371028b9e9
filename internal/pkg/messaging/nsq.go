package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nsqio/go-nsq"
)

type NSQConfig struct {
	Addr         string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

type NSQ struct {
	producer *nsq.Producer
}

func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: nsqd address", ErrMissingConfig)
	}

	pc := nsq.NewConfig()
	if cfg.DialTimeout > 0 {
		pc.DialTimeout = cfg.DialTimeout
	}
	if cfg.WriteTimeout > 0 {
		pc.WriteTimeout = cfg.WriteTimeout
	}

	p, err := nsq.NewProducer(cfg.Addr, pc)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelWarning)

	return &NSQ{producer: p}, nil
}

// Publish is synchronous: nsqd has acknowledged the message when it returns.
func (n *NSQ) Publish(ctx context.Context, topic string, msg Message) error {
	if err := checkPublish(ctx, topic); err != nil {
		return err
	}

	body, err := nsqBody(msg)
	if err != nil {
		return err
	}
	if err := n.producer.Publish(topic, body); err != nil {
		return fmt.Errorf("messaging: nsq publish %s: %w", topic, err)
	}
	return nil
}

func (n *NSQ) Close() error {
	n.producer.Stop()
	return nil
}

// nsqEnvelope carries headers, which NSQ has no frame for, next to a JSON body.
type nsqEnvelope struct {
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
}

func nsqBody(msg Message) ([]byte, error) {
	if len(msg.Headers) == 0 || !json.Valid(msg.Body) {
		return msg.Body, nil
	}

	b, err := json.Marshal(nsqEnvelope{Headers: msg.Headers, Body: msg.Body})
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq envelope: %w", err)
	}
	return b, nil
}
