package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
)

type ResendConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint, for tests and proxies.
	BaseURL string
}

type Resend struct {
	client *resend.Client
	from   string
}

func NewResend(from string, cfg ResendConfig) (*Resend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("mail: resend api key is required")
	}

	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("mail: resend base url: %w", err)
		}
		client.BaseURL = u
	}

	return &Resend{client: client, from: from}, nil
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	msg, err := envelope(msg, r.from)
	if err != nil {
		return err
	}

	_, err = r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("mail: resend: %w", err)
	}
	return nil
}
