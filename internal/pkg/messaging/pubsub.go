package messaging

import (
	"context"
	"fmt"
	"os"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const pubsubScope = "https://www.googleapis.com/auth/pubsub"

type PubSubConfig struct {
	ProjectID string
	// Endpoint points at an emulator. Authentication is skipped when set.
	Endpoint string
	// CredentialsFile is a service account key. Empty means application default credentials.
	CredentialsFile string
}

// PubSub keeps one ordered publisher per topic.
type PubSub struct {
	client *pubsub.Client

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: pubsub project id", ErrMissingConfig)
	}

	opts, err := pubsubOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub client: %w", err)
	}
	return &PubSub{client: client, publishers: map[string]*pubsub.Publisher{}}, nil
}

func pubsubOptions(ctx context.Context, cfg PubSubConfig) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("messaging: pubsub credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, pubsubScope)
		if err != nil {
			return nil, fmt.Errorf("messaging: pubsub credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	return opts, nil
}

// Publish blocks until the server assigns a message id. A failed publish pauses
// its ordering key, so the key is resumed before returning the error.
func (p *PubSub) Publish(ctx context.Context, topic string, msg Message) error {
	if err := checkPublish(ctx, topic); err != nil {
		return err
	}

	pub := p.publisher(topic)
	res := pub.Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  msg.Headers,
		OrderingKey: msg.Key,
	})
	if _, err := res.Get(ctx); err != nil {
		if msg.Key != "" {
			pub.ResumePublish(msg.Key)
		}
		return fmt.Errorf("messaging: pubsub publish %s: %w", topic, err)
	}
	return nil
}

func (p *PubSub) publisher(topic string) *pubsub.Publisher {
	p.mu.Lock()
	defer p.mu.Unlock()

	pub, ok := p.publishers[topic]
	if !ok {
		pub = p.client.Publisher(topic)
		pub.EnableMessageOrdering = true
		p.publishers[topic] = pub
	}
	return pub
}

func (p *PubSub) Close() error {
	p.mu.Lock()
	for _, pub := range p.publishers {
		pub.Stop()
	}
	p.publishers = map[string]*pubsub.Publisher{}
	p.mu.Unlock()

	return p.client.Close()
}
