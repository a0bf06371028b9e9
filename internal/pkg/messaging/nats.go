package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
	// FlushTimeout bounds the server round trip when the caller set no deadline.
	FlushTimeout time.Duration
}

type NATS struct {
	conn         *nats.Conn
	flushTimeout time.Duration
}

func NewNATS(clientID string, cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: nats url", ErrMissingConfig)
	}

	opts := []nats.Option{
		nats.Name(clientID),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.RetryOnFailedConnect(true),
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, nats.Timeout(cfg.Timeout))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	flush := cfg.FlushTimeout
	if flush <= 0 {
		flush = defaultFlushTimeout
	}
	return &NATS{conn: conn, flushTimeout: flush}, nil
}

// Publish waits for the server to acknowledge the flush, so a returned nil
// means the subject received the message.
func (n *NATS) Publish(ctx context.Context, topic string, msg Message) error {
	if err := checkPublish(ctx, topic); err != nil {
		return err
	}

	nm := nats.NewMsg(topic)
	nm.Data = msg.Body
	for k, v := range msg.Headers {
		nm.Header.Set(k, v)
	}
	if err := n.conn.PublishMsg(nm); err != nil {
		return fmt.Errorf("messaging: nats publish %s: %w", topic, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.flushTimeout)
		defer cancel()
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("messaging: nats flush %s: %w", topic, err)
	}
	return nil
}

func (n *NATS) Close() error {
	if n.conn.IsClosed() {
		return nil
	}
	return n.conn.Drain()
}
