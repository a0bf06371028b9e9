package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/ordernotify/internal/order/usecase"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"github.com/shandysiswandi/ordernotify/internal/pkg/messaging"
	"github.com/shandysiswandi/ordernotify/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	destination string
	msg         messaging.Message
	err         error
}

func (s *stubPublisher) Publish(_ context.Context, destination string, msg messaging.Message) error {
	s.destination = destination
	s.msg = msg
	return s.err
}

func TestMessaging_PublishOrderNotified(t *testing.T) {
	// Arrange
	pub := &stubPublisher{}
	m := NewMessaging(pub, instrument.Noop{}, "")
	ctx := instrument.WithCorrelationID(context.Background(), "cid-1")

	// Act
	err := m.PublishOrderNotified(ctx, usecase.OrderNotifiedEvent{
		EventID:       "evt-1",
		OrderID:       "ORD1",
		CustomerEmail: "a@x.com",
		ItemCount:     1,
		Total:         "250",
		NotifiedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, event.OrderNotifiedDestination, pub.destination)
	assert.Equal(t, "ORD1", pub.msg.Key)
	assert.Equal(t, map[string]string{"cID": "cid-1"}, pub.msg.Headers)

	var got event.OrderNotifiedMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, event.OrderNotifiedMessage{
		EventID:       "evt-1",
		OrderID:       "ORD1",
		CustomerEmail: "a@x.com",
		ItemCount:     1,
		Total:         "250",
		NotifiedAt:    "2026-01-02T03:04:05Z",
	}, got)
}

func TestMessaging_CustomDestinationAndError(t *testing.T) {
	errBroker := errors.New("broker down")
	pub := &stubPublisher{err: errBroker}
	m := NewMessaging(pub, instrument.Noop{}, "shop.orders")

	err := m.PublishOrderNotified(context.Background(), usecase.OrderNotifiedEvent{OrderID: "ORD1"})

	assert.ErrorIs(t, err, errBroker)
	assert.Equal(t, "shop.orders", pub.destination)
}
