package email

import (
	"context"

	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"github.com/shandysiswandi/ordernotify/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Mail struct {
	client mail.Sender
	ins    instrument.Instrumentation
}

func New(client mail.Sender, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.ins.Tracer("order.outbound.email").Start(ctx, "Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("mail.subject", msg.Subject),
		attribute.Int("mail.recipients", len(msg.To)),
	)

	if err := m.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
