package inbound

import (
	"encoding/json"

	"github.com/shandysiswandi/ordernotify/internal/order/entity"
)

type SendOrderEmailRequest struct {
	Contact        *entity.Contact        `json:"contact"`
	Order          *entity.Order          `json:"order"`
	ShippingOption *entity.ShippingOption `json:"shippingOption"`
	// PickupPoint is read by entity.DecodePickupPoint: false, "" and 0 mean home delivery.
	PickupPoint    json.RawMessage        `json:"pickupPoint" swaggertype:"object"`
}

type SendOrderEmailResponse struct {
	OrderID string `json:"order_id"`
}

func (SendOrderEmailResponse) Message() string {
	return "Emails sent successfully!"
}
