package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shandysiswandi/ordernotify/internal/order/usecase"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"github.com/shandysiswandi/ordernotify/internal/pkg/messaging"
	"github.com/shandysiswandi/ordernotify/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client      messaging.Publisher
	ins         instrument.Instrumentation
	destination string
}

// NewMessaging publishes to destination, or to event.OrderNotifiedDestination when empty.
func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation, destination string) *Messaging {
	if destination == "" {
		destination = event.OrderNotifiedDestination
	}
	return &Messaging{client: client, ins: ins, destination: destination}
}

func (m *Messaging) PublishOrderNotified(ctx context.Context, msg usecase.OrderNotifiedEvent) error {
	ctx, span := m.ins.Tracer("order.outbound.mq").Start(ctx, "PublishOrderNotified")
	defer span.End()

	body, err := json.Marshal(event.OrderNotifiedMessage{
		EventID:       msg.EventID,
		OrderID:       msg.OrderID,
		CustomerEmail: msg.CustomerEmail,
		ItemCount:     msg.ItemCount,
		Total:         msg.Total,
		PickupPoint:   msg.PickupPoint,
		NotifiedAt:    msg.NotifiedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Publish(ctx, m.destination, messaging.Message{
		Key:     msg.OrderID,
		Body:    body,
		Headers: map[string]string{keyOfCorrelationID: instrument.CorrelationID(ctx)},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
