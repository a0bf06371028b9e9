package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/ordernotify/internal/pkg/background"
	"github.com/shandysiswandi/ordernotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"github.com/shandysiswandi/ordernotify/internal/pkg/mail"
	"github.com/shandysiswandi/ordernotify/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type OrderNotifiedEvent struct {
	EventID       string
	OrderID       string
	CustomerEmail string
	ItemCount     int
	Total         string
	PickupPoint   bool
	NotifiedAt    time.Time
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type repoMessaging interface {
	PublishOrderNotified(ctx context.Context, msg OrderNotifiedEvent) error
}

type repoGuard interface {
	Acquire(ctx context.Context, key string, lock time.Duration) (idempotency.State, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// Settings are the per-deployment values used when addressing and rendering emails.
type Settings struct {
	AdminEmail   string `json:"admin_email" validate:"required,mailbox"`
	AdminFrom    string `json:"admin_from" validate:"required,mailbox"`
	CustomerFrom string `json:"customer_from" validate:"required,mailbox"`
	ShopName     string `json:"shop_name" validate:"required,max=100"`
	Currency     string `json:"currency" validate:"required,max=8"`

	// LockDuration bounds how long an in-flight submission blocks duplicates.
	LockDuration time.Duration `json:"-"`
	// CompletedTTL is how long a notified order id is remembered.
	CompletedTTL time.Duration `json:"-"`
}

type Usecase struct {
	repoMail      repoMail
	repoMessaging repoMessaging
	guard         repoGuard
	validator     validator.Validator
	settings      Settings
	newID         func() string
	now           func() time.Time
	ins           instrument.Instrumentation
	runner        *background.Runner
	counter       metric.Int64Counter
}

type Dependency struct {
	RepoMail      repoMail
	RepoMessaging repoMessaging
	// Guard is optional; nil disables the duplicate submission guard.
	Guard      repoGuard
	Validator  validator.Validator
	Settings   Settings
	NewID      func() string
	Now        func() time.Time
	Instrument instrument.Instrumentation
	// Runner publishes the notified event after the response. Nil skips publishing.
	Runner *background.Runner
}

func New(dep Dependency) *Usecase {
	counter, err := dep.Instrument.Meter("order.usecase").Int64Counter(
		"order.notifications",
		metric.WithDescription("Number of order notification requests by outcome"),
	)
	if err != nil {
		slog.Error("failed to create order notification counter", "error", err)
	}

	if dep.Now == nil {
		dep.Now = time.Now
	}

	return &Usecase{
		repoMail:      dep.RepoMail,
		repoMessaging: dep.RepoMessaging,
		guard:         dep.Guard,
		validator:     dep.Validator,
		settings:      dep.Settings,
		newID:         dep.NewID,
		now:           dep.Now,
		ins:           dep.Instrument,
		runner:        dep.Runner,
		counter:       counter,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("order.usecase").Start(ctx, name)
}

const (
	outcomeSent           = "sent"
	outcomeInvalid        = "invalid"
	outcomeDispatchFailed = "dispatch_failed"
	outcomeDuplicate      = "duplicate"
)

func (s *Usecase) record(ctx context.Context, outcome string) {
	if s.counter == nil {
		return
	}
	s.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
