package order

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/ordernotify/internal/pkg/background"
	"github.com/shandysiswandi/ordernotify/internal/pkg/config"
	"github.com/shandysiswandi/ordernotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"github.com/shandysiswandi/ordernotify/internal/pkg/mail"
	"github.com/shandysiswandi/ordernotify/internal/pkg/messaging"
	"github.com/shandysiswandi/ordernotify/internal/pkg/router"
	"github.com/shandysiswandi/ordernotify/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
modules:
  order:
    admin_email: owner@shop.example
    admin_from: "New order <orders@shop.example>"
    customer_from: "Shop <orders@shop.example>"
    shop_name: Shop
`

func newDependency(t *testing.T, raw string) Dependency {
	t.Helper()

	cfg, err := config.Parse("yaml", []byte(raw))
	require.NoError(t, err)

	v, err := validator.New()
	require.NoError(t, err)

	runner := background.NewRunner(2)
	t.Cleanup(func() { _ = runner.Shutdown(context.Background()) })

	return Dependency{
		Config:     cfg,
		Instrument: instrument.Noop{},
		NewID:      func() string { return "evt-1" },
		Runner:     runner,
		Validator:  v,
		Router:     router.New(router.Config{Config: cfg, Instrument: instrument.Noop{}}),
		Mail:       mail.NewLog("orders@shop.example"),
		Messaging:  messaging.None{},
	}
}

func TestNew_RegistersEndpoint(t *testing.T) {
	// Arrange
	dep := newDependency(t, validConfig)

	// Act
	err := New(dep)

	// Assert
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/send-order-email", strings.NewReader(`{
		"contact": {"email": "a@x.com"},
		"order": {"orderId": "ORD1", "items": [{"productName": "Widget", "quantity": 2, "price": 100}], "total": 250}
	}`))
	rec := httptest.NewRecorder()
	dep.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Emails sent successfully!")
}

func TestNew_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing admin email", raw: "modules:\n  order:\n    admin_from: a@x.com\n    customer_from: a@x.com\n    shop_name: Shop\n"},
		{name: "malformed sender", raw: "modules:\n  order:\n    admin_email: owner@shop.example\n    admin_from: not-a-mailbox\n    customer_from: a@x.com\n    shop_name: Shop\n"},
		{name: "missing shop name", raw: "modules:\n  order:\n    admin_email: owner@shop.example\n    admin_from: a@x.com\n    customer_from: a@x.com\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, New(newDependency(t, tt.raw)))
		})
	}
}

type nopGuard struct{}

func (nopGuard) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateAcquired, nil
}
func (nopGuard) MarkCompleted(context.Context, string, time.Duration) error { return nil }
func (nopGuard) Release(context.Context, string) error                      { return nil }

func TestNew_Guard(t *testing.T) {
	enabled := validConfig + "    idempotency:\n      enabled: true\n      lock_seconds: 60\n      ttl_seconds: 86400\n"

	tests := []struct {
		name    string
		raw     string
		guard   Guard
		wantErr error
	}{
		{name: "enabled without redis", raw: enabled, wantErr: errGuardUnavailable},
		{name: "enabled with redis", raw: enabled, guard: nopGuard{}},
		{name: "disabled ignores redis", raw: validConfig, guard: nopGuard{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			dep := newDependency(t, tt.raw)
			dep.Guard = tt.guard

			// Act
			err := New(dep)

			// Assert
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
