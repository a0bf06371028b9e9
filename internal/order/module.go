package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/ordernotify/internal/order/inbound"
	"github.com/shandysiswandi/ordernotify/internal/order/outbound/email"
	"github.com/shandysiswandi/ordernotify/internal/order/outbound/mq"
	"github.com/shandysiswandi/ordernotify/internal/order/usecase"
	"github.com/shandysiswandi/ordernotify/internal/pkg/background"
	"github.com/shandysiswandi/ordernotify/internal/pkg/config"
	"github.com/shandysiswandi/ordernotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"github.com/shandysiswandi/ordernotify/internal/pkg/mail"
	"github.com/shandysiswandi/ordernotify/internal/pkg/messaging"
	"github.com/shandysiswandi/ordernotify/internal/pkg/router"
	"github.com/shandysiswandi/ordernotify/internal/pkg/validator"
)

const defaultCurrency = "Kč"

var errGuardUnavailable = errors.New("order: idempotency enabled but no redis is configured")

// Guard is the duplicate submission store, usually an *idempotency.Store.
type Guard interface {
	Acquire(ctx context.Context, key string, lock time.Duration) (idempotency.State, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type Dependency struct {
	Config     config.Config
	Instrument instrument.Instrumentation
	NewID      func() string
	Runner     *background.Runner
	Validator  validator.Validator
	Router     *router.Router
	Mail       mail.Sender
	Messaging  messaging.Publisher
	// Guard may be nil when no redis is configured.
	Guard Guard
}

func New(dep Dependency) error {
	settings := usecase.Settings{
		AdminEmail:   dep.Config.GetString("modules.order.admin_email"),
		AdminFrom:    dep.Config.GetString("modules.order.admin_from"),
		CustomerFrom: dep.Config.GetString("modules.order.customer_from"),
		ShopName:     dep.Config.GetString("modules.order.shop_name"),
		Currency:     dep.Config.GetString("modules.order.currency_label"),
		LockDuration: dep.Config.GetSecond("modules.order.idempotency.lock_seconds"),
		CompletedTTL: dep.Config.GetSecond("modules.order.idempotency.ttl_seconds"),
	}
	if settings.Currency == "" {
		settings.Currency = defaultCurrency
	}

	if err := dep.Validator.Validate(settings); err != nil {
		return fmt.Errorf("order: invalid settings: %w", err)
	}

	var guard Guard
	if dep.Config.GetBool("modules.order.idempotency.enabled") {
		if dep.Guard == nil {
			return errGuardUnavailable
		}
		guard = dep.Guard
	}

	uc := usecase.New(usecase.Dependency{
		RepoMail:      email.New(dep.Mail, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument, dep.Config.GetString("modules.order.event_destination")),
		Guard:         guard,
		Validator:     dep.Validator,
		Settings:      settings,
		NewID:         dep.NewID,
		Instrument:    dep.Instrument,
		Runner:        dep.Runner,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
