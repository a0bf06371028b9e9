// Package mail delivers HTML email through Resend, an SMTP relay, or the log
// for local runs.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverResend = "resend"
	DriverSMTP   = "smtp"
	DriverLog    = "log"
)

var (
	ErrUnknownDriver = errors.New("mail: unknown driver")
	ErrNoRecipients  = errors.New("mail: no recipients")
	ErrNoSender      = errors.New("mail: no sender")
)

// Message addresses may carry a display name: "Shop <orders@shop.example>".
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	// Text is sent as the plain alternative when set.
	Text string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config picks a driver. From is used when a message leaves its sender empty.
type Config struct {
	Driver string
	From   string
	Resend ResendConfig
	SMTP   SMTPConfig
}

func Open(cfg Config) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverResend:
		return NewResend(cfg.From, cfg.Resend)
	case DriverSMTP:
		return NewSMTP(cfg.From, cfg.SMTP)
	case DriverLog:
		return NewLog(cfg.From), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// envelope fills the default sender and rejects messages with nowhere to go.
func envelope(msg Message, from string) (Message, error) {
	if len(msg.To) == 0 {
		return msg, ErrNoRecipients
	}
	if msg.From == "" {
		msg.From = from
	}
	if msg.From == "" {
		return msg, ErrNoSender
	}
	return msg, nil
}
