package inbound

import (
	"errors"
	"log/slog"

	"github.com/shandysiswandi/ordernotify/internal/order/entity"
	"github.com/shandysiswandi/ordernotify/internal/order/usecase"
	"github.com/shandysiswandi/ordernotify/internal/pkg/goerror"
	"github.com/shandysiswandi/ordernotify/internal/pkg/router"
)

// HTTPEndpoint exposes the order notification handler.
type HTTPEndpoint struct {
	uc uc
}

// SendOrderEmail emails the shop operator and the customer about a placed order.
// @Summary Send order emails
// @Description Renders the operator notification and the customer confirmation and sends both. Succeeds only when both are accepted by the mail provider.
// @Tags Order
// @Accept json
// @Produce json
// @Param request body SendOrderEmailRequest true "Order notification payload"
// @Success 200 {object} router.successResponse{data=SendOrderEmailResponse} "Emails sent"
// @Failure 400 {object} router.errorResponse "Missing order data"
// @Failure 405 {object} router.errorResponse "Method not allowed"
// @Failure 409 {object} router.errorResponse "Order is already being notified"
// @Failure 500 {object} router.errorResponse "Failed to send emails."
// @Router /api/send-order-email [post]
func (h *HTTPEndpoint) SendOrderEmail(r *router.Request) (any, error) {
	var req SendOrderEmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	pickup, err := entity.DecodePickupPoint(req.PickupPoint)
	if err != nil {
		return nil, goerror.Invalid(err, "")
	}

	resp, err := h.uc.Notify(r.Context(), usecase.NotifyInput{
		Contact:        req.Contact,
		Order:          req.Order,
		ShippingOption: req.ShippingOption,
		PickupPoint:    pickup,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrDispatchFailed) {
			slog.ErrorContext(r.Context(), "failed to send order emails", "error", err)
		}
		return nil, err
	}

	return SendOrderEmailResponse{OrderID: resp.OrderID}, nil
}
