package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/ordernotify/internal/order/usecase"
	"github.com/shandysiswandi/ordernotify/internal/pkg/background"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"github.com/shandysiswandi/ordernotify/internal/pkg/mail"
	"github.com/shandysiswandi/ordernotify/internal/pkg/router"
	"github.com/shandysiswandi/ordernotify/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workedExample = `{
	"contact": {"email": "a@x.com", "phone": "123", "address": {"street": "Main", "number": "5", "zip": "11000", "city": "Prague"}},
	"order": {"orderId": "ORD1", "items": [{"productName": "Widget", "quantity": 2, "price": 100}], "subtotal": 200, "shippingCost": 50, "total": 250},
	"shippingOption": {"name": "Courier"}
}`

type recordingMail struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMail) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func newTestRouter() *router.Router {
	return router.New(router.Config{
		NewID:      func() string { return "cid-1" },
		Instrument: instrument.Noop{},
	})
}

func newServer(t *testing.T, client *recordingMail) *router.Router {
	t.Helper()

	v, err := validator.New()
	require.NoError(t, err)

	runner := background.NewRunner(2)
	t.Cleanup(func() { _ = runner.Shutdown(context.Background()) })

	uc := usecase.New(usecase.Dependency{
		RepoMail:  client,
		Validator: v,
		Settings: usecase.Settings{
			AdminEmail:   "owner@shop.example",
			AdminFrom:    "orders@shop.example",
			CustomerFrom: "orders@shop.example",
			ShopName:     "Shop",
			Currency:     "Kč",
		},
		NewID:      func() string { return "evt-1" },
		Now:        func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
		Instrument: instrument.Noop{},
		Runner:     runner,
	})

	r := newTestRouter()
	RegisterHTTPEndpoint(r, uc)
	return r
}

func serve(r http.Handler, method, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, "/api/send-order-email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestHTTPEndpoint_SendOrderEmail(t *testing.T) {
	// Arrange
	client := &recordingMail{}
	r := newServer(t, client)

	// Act
	code, body := serve(r, http.MethodPost, workedExample)

	// Assert
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Emails sent successfully!", body["message"])
	assert.Equal(t, map[string]any{"order_id": "ORD1"}, body["data"])

	require.Len(t, client.sent, 2)
	subjects := []string{client.sent[0].Subject, client.sent[1].Subject}
	assert.ElementsMatch(t, []string{"New order: ORD1", "Order confirmation #ORD1"}, subjects)
	for _, msg := range client.sent {
		assert.Contains(t, msg.HTML, "<li>Widget (x2) - 100 Kč</li>")
	}
}

func TestHTTPEndpoint_SendOrderEmail_BadRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "empty object", body: `{}`, wantMsg: "Missing order data"},
		{name: "missing order", body: `{"contact": {"email": "a@x.com"}}`, wantMsg: "Missing order data"},
		{name: "missing contact", body: `{"order": {"orderId": "ORD1"}}`, wantMsg: "Missing order data"},
		{name: "empty contact", body: `{"contact": {}, "order": {"orderId": "ORD1"}}`, wantMsg: "Missing order data"},
		{name: "null order", body: `{"contact": {"email": "a@x.com"}, "order": null}`, wantMsg: "Missing order data"},
		{name: "malformed json", body: `{"contact":`, wantMsg: "Invalid request body"},
		{name: "boolean price", body: `{"contact": {"email": "a@x.com"}, "order": {"orderId": "ORD1", "total": true}}`, wantMsg: "Invalid request body"},
		{name: "pickup point with wrong field type", body: `{"contact": {"email": "a@x.com"}, "order": {"orderId": "ORD1"}, "pickupPoint": {"name": 5}}`, wantMsg: "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &recordingMail{}
			r := newServer(t, client)

			code, body := serve(r, http.MethodPost, tt.body)

			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.Empty(t, client.sent)
		})
	}
}

func TestHTTPEndpoint_SendOrderEmail_DispatchFailed(t *testing.T) {
	// Arrange
	client := &recordingMail{err: errors.New("provider rejected: invalid api key")}
	r := newServer(t, client)

	// Act
	code, body := serve(r, http.MethodPost, workedExample)

	// Assert
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, map[string]any{"message": "Failed to send emails."}, body)
	assert.Len(t, client.sent, 2)
}

func TestHTTPEndpoint_SendOrderEmail_MethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			client := &recordingMail{}
			r := newServer(t, client)

			code, body := serve(r, method, workedExample)

			assert.Equal(t, http.StatusMethodNotAllowed, code)
			assert.Equal(t, "method not allowed", body["message"])
			assert.Empty(t, client.sent)
		})
	}
}

func TestHTTPEndpoint_SendOrderEmail_UnknownFieldsAndPickupPoint(t *testing.T) {
	// Arrange
	client := &recordingMail{}
	r := newServer(t, client)
	payload := `{
		"contact": {"email": "a@x.com", "phone": "123"},
		"order": {"orderId": "ORD2", "items": [], "subtotal": 0, "shippingCost": 0, "total": 0},
		"shippingOption": {"name": "Pickup"},
		"pickupPoint": {"name": "Box 7", "street": "Side 1", "zip": "12000", "city": "Brno", "openingHours": "24/7"},
		"coupon": "SPRING"
	}`

	// Act
	code, _ := serve(r, http.MethodPost, payload)

	// Assert
	require.Equal(t, http.StatusOK, code)
	require.Len(t, client.sent, 2)
	for _, msg := range client.sent {
		assert.Contains(t, msg.HTML, "Box 7")
		assert.NotContains(t, msg.HTML, "Address:")
	}
}

type stubUsecase struct {
	err error
}

func (s stubUsecase) Notify(context.Context, usecase.NotifyInput) (*usecase.NotifyOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &usecase.NotifyOutput{OrderID: "ORD1"}, nil
}

func TestHTTPEndpoint_SendOrderEmail_ForeignError(t *testing.T) {
	r := newTestRouter()
	RegisterHTTPEndpoint(r, stubUsecase{err: fmt.Errorf("unexpected: %w", errors.New("boom"))})

	code, body := serve(r, http.MethodPost, workedExample)

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["message"])
}

func TestHTTPEndpoint_SendOrderEmail_FalsyPickupPointUsesAddress(t *testing.T) {
	tests := []struct {
		name   string
		pickup string
	}{
		{name: "false", pickup: `false`},
		{name: "empty string", pickup: `""`},
		{name: "zero", pickup: `0`},
		{name: "null", pickup: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			client := &recordingMail{}
			r := newServer(t, client)
			payload := strings.TrimSuffix(strings.TrimSpace(workedExample), "}") + `, "pickupPoint": ` + tt.pickup + `}`

			// Act
			code, body := serve(r, http.MethodPost, payload)

			// Assert
			require.Equal(t, http.StatusOK, code, body)
			require.Len(t, client.sent, 2)
			for _, msg := range client.sent {
				assert.Contains(t, msg.HTML, "Main 5")
				assert.Contains(t, msg.HTML, "11000 Prague")
				assert.NotContains(t, msg.HTML, "Pickup point")
			}
		})
	}
}

func TestHTTPEndpoint_SendOrderEmail_TruthyNonObjectPickupPoint(t *testing.T) {
	// Arrange
	client := &recordingMail{}
	r := newServer(t, client)
	payload := strings.TrimSuffix(strings.TrimSpace(workedExample), "}") + `, "pickupPoint": true}`

	// Act
	code, _ := serve(r, http.MethodPost, payload)

	// Assert
	require.Equal(t, http.StatusOK, code)
	require.Len(t, client.sent, 2)
	for _, msg := range client.sent {
		assert.Contains(t, msg.HTML, "Pickup point")
		assert.NotContains(t, msg.HTML, "Prague")
	}
}
