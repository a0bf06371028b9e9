package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	netmail "net/mail"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// InsecureSkipVerify is for local relays with self-signed certificates.
	InsecureSkipVerify bool
}

type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(from string, cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("mail: smtp host and port are required")
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host} //nolint:gosec // opt-in
	}
	return &SMTP{dialer: d, from: from}, nil
}

// Send dials per message. gomail takes no context, so ctx is only checked
// before dialing.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: smtp: %w", err)
	}
	return nil
}

func (s *SMTP) compose(msg Message) (*gomail.Message, error) {
	msg, err := envelope(msg, s.from)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()

	from, err := netmail.ParseAddress(msg.From)
	if err != nil {
		return nil, fmt.Errorf("mail: sender %q: %w", msg.From, err)
	}
	m.SetAddressHeader("From", from.Address, from.Name)

	to := make([]string, 0, len(msg.To))
	for _, raw := range msg.To {
		addr, err := netmail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("mail: recipient %q: %w", raw, err)
		}
		to = append(to, m.FormatAddress(addr.Address, addr.Name))
	}
	m.SetHeader("To", to...)
	m.SetHeader("Subject", msg.Subject)

	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	return m, nil
}
