package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shandysiswandi/ordernotify/internal/order/entity"
	"github.com/shandysiswandi/ordernotify/internal/pkg/goerror"
	"github.com/shandysiswandi/ordernotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/ordernotify/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type NotifyInput struct {
	Contact        *entity.Contact `validate:"required"`
	Order          *entity.Order   `validate:"required"`
	ShippingOption *entity.ShippingOption
	PickupPoint    *entity.PickupPoint
}

type NotifyOutput struct {
	OrderID string
}

// Notify renders the operator and customer emails and sends both at once.
// It succeeds only when both sends succeed.
func (s *Usecase) Notify(ctx context.Context, in NotifyInput) (*NotifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Notify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil || in.Contact.IsZero() || in.Order.IsZero() {
		s.record(ctx, outcomeInvalid)
		return nil, goerror.Invalid(ErrInvalidRequest, "Missing order data")
	}

	orderID := in.Order.OrderID
	span.SetAttributes(attribute.String("order.id", orderID))

	data := DocumentData{
		Request: entity.NotificationRequest{
			Contact:        in.Contact,
			Order:          in.Order,
			ShippingOption: in.ShippingOption,
			PickupPoint:    in.PickupPoint,
		},
		Currency: s.settings.Currency,
		ShopName: s.settings.ShopName,
	}

	adminHTML, err := RenderAdminDocument(data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render admin document", "order_id", orderID, "error", err)
		return nil, goerror.Internal(err, "")
	}

	customerHTML, err := RenderCustomerDocument(data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render customer document", "order_id", orderID, "error", err)
		return nil, goerror.Internal(err, "")
	}

	guarded, err := s.acquireGuard(ctx, orderID)
	if err != nil {
		s.record(ctx, outcomeDuplicate)
		return nil, err
	}

	adminErr, customerErr := s.dispatch(ctx,
		mail.Message{
			From:     s.settings.AdminFrom,
			To:       []string{s.settings.AdminEmail},
			Subject:  "New order: " + orderID,
			HTML:    adminHTML,
		},
		mail.Message{
			From:     s.settings.CustomerFrom,
			To:       []string{in.Contact.Email},
			Subject:  "Order confirmation #" + orderID,
			HTML:    customerHTML,
		},
	)

	if err := errors.Join(adminErr, customerErr); err != nil {
		if guarded {
			s.releaseGuard(ctx, orderID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, outcomeDispatchFailed)
		return nil, goerror.Internal(fmt.Errorf("%w: %w", ErrDispatchFailed, err), "Failed to send emails.")
	}

	if guarded {
		s.completeGuard(ctx, orderID)
	}

	s.publishNotified(ctx, in)
	s.record(ctx, outcomeSent)

	return &NotifyOutput{OrderID: orderID}, nil
}

// dispatch sends both messages concurrently and waits for both. A failure of
// one send does not cancel the other.
func (s *Usecase) dispatch(ctx context.Context, admin, customer mail.Message) (adminErr, customerErr error) {
	var wg sync.WaitGroup

	wg.Go(func() {
		if err := s.repoMail.Send(ctx, admin); err != nil {
			adminErr = fmt.Errorf("admin email: %w", err)
		}
	})
	wg.Go(func() {
		if err := s.repoMail.Send(ctx, customer); err != nil {
			customerErr = fmt.Errorf("customer email: %w", err)
		}
	})

	wg.Wait()
	return adminErr, customerErr
}

// acquireGuard reports whether the guard is held. Store failures are logged and
// the request proceeds unguarded so that a cache outage never blocks orders.
func (s *Usecase) acquireGuard(ctx context.Context, orderID string) (bool, error) {
	if s.guard == nil || orderID == "" {
		return false, nil
	}

	state, err := s.guard.Acquire(ctx, orderID, s.settings.LockDuration)
	if err != nil {
		slog.WarnContext(ctx, "failed to acquire order notification guard", "order_id", orderID, "error", err)
		return false, nil
	}

	switch state {
	case idempotency.StateAcquired:
		return true, nil
	case idempotency.StateInProgress:
		return false, goerror.Conflict(ErrDuplicateSubmission, "Order is already being processed")
	case idempotency.StateCompleted:
		return false, goerror.Conflict(ErrDuplicateSubmission, "Order has already been confirmed")
	default:
		slog.WarnContext(ctx, "unexpected order notification guard state", "order_id", orderID, "state", state.String())
		return false, nil
	}
}

func (s *Usecase) releaseGuard(ctx context.Context, orderID string) {
	if err := s.guard.Release(context.WithoutCancel(ctx), orderID); err != nil {
		slog.WarnContext(ctx, "failed to release order notification guard", "order_id", orderID, "error", err)
	}
}

func (s *Usecase) completeGuard(ctx context.Context, orderID string) {
	if err := s.guard.MarkCompleted(context.WithoutCancel(ctx), orderID, s.settings.CompletedTTL); err != nil {
		slog.WarnContext(ctx, "failed to mark order notification guard completed", "order_id", orderID, "error", err)
	}
}

// publishNotified hands the event to the runner. A broker failure never fails the order.
func (s *Usecase) publishNotified(ctx context.Context, in NotifyInput) {
	if s.repoMessaging == nil || s.runner == nil {
		return
	}

	ev := OrderNotifiedEvent{
		EventID:       s.newID(),
		OrderID:       in.Order.OrderID,
		CustomerEmail: in.Contact.Email,
		ItemCount:     len(in.Order.Items),
		Total:         in.Order.Total.String(),
		PickupPoint:   in.PickupPoint != nil,
		NotifiedAt:    s.now(),
	}

	s.runner.Go(ctx, "publish order notified", func(ctx context.Context) {
		if err := s.repoMessaging.PublishOrderNotified(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish order notified", "order_id", ev.OrderID, "error", err)
		}
	})
}
