package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{name: "resend", cfg: Config{Driver: "resend", Resend: ResendConfig{APIKey: "re_test"}}, want: &Resend{}},
		{name: "resend without key", cfg: Config{Driver: "resend"}, wantErr: true},
		{name: "smtp", cfg: Config{Driver: " SMTP ", SMTP: SMTPConfig{Host: "localhost", Port: 1025}}, want: &SMTP{}},
		{name: "smtp without host", cfg: Config{Driver: "smtp"}, wantErr: true},
		{name: "log", cfg: Config{Driver: "log"}, want: &Log{}},
		{name: "unknown", cfg: Config{Driver: "pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(tt.cfg)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "pigeon"})

	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestLog_Send(t *testing.T) {
	sender := NewLog("Shop <orders@shop.example>")

	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{name: "default sender", msg: Message{To: []string{"jane@example.com"}, Subject: "Order confirmation #ORD1"}},
		{name: "no recipients", msg: Message{Subject: "x"}, wantErr: ErrNoRecipients},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sender.Send(context.Background(), tt.msg)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEnvelope_NoSender(t *testing.T) {
	_, err := envelope(Message{To: []string{"jane@example.com"}}, "")

	assert.ErrorIs(t, err, ErrNoSender)
}
