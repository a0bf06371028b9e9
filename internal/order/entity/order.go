package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Address is a delivery address.
type Address struct {
	Street string `json:"street"`
	Number string `json:"number"`
	Zip    string `json:"zip"`
	City   string `json:"city"`
}

// Contact is the customer placing the order.
type Contact struct {
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Address *Address `json:"address"`
}

// IsZero reports whether no contact field was supplied.
func (c *Contact) IsZero() bool {
	return c == nil || (c.Email == "" && c.Phone == "" && c.Address == nil)
}

// PickupPoint is a named location chosen instead of home delivery.
type PickupPoint struct {
	Name   string `json:"name"`
	Street string `json:"street"`
	Zip    string `json:"zip"`
	City   string `json:"city"`
}

// DecodePickupPoint reads the raw pickupPoint field. The checkout sends false,
// "" or 0 when home delivery was chosen, so those count as no pickup point,
// like null. An object is decoded. Any other truthy value selects pickup with
// blank fields.
func DecodePickupPoint(raw json.RawMessage) (*PickupPoint, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case '{':
		var p PickupPoint
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case 'n', 'f':
		return nil, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
	default:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil && f == 0 {
			return nil, nil
		}
	}
	return &PickupPoint{}, nil
}

// ShippingOption is the chosen shipping method.
type ShippingOption struct {
	Name string `json:"name"`
}

// OrderItem is one order line.
type OrderItem struct {
	ProductName string `json:"productName"`
	Quantity    Number `json:"quantity"`
	Price       Number `json:"price"`
}

// Order holds the caller computed totals. They are trusted as sent.
type Order struct {
	OrderID      string      `json:"orderId"`
	Items        []OrderItem `json:"items"`
	Subtotal     Number      `json:"subtotal"`
	ShippingCost Number      `json:"shippingCost"`
	Total        Number      `json:"total"`
}

// IsZero reports whether no order field was supplied.
func (o *Order) IsZero() bool {
	if o == nil {
		return true
	}

	return o.OrderID == "" && len(o.Items) == 0 &&
		!o.Subtotal.Present() && !o.ShippingCost.Present() && !o.Total.Present()
}

// NotificationRequest is the full order submission.
type NotificationRequest struct {
	Contact        *Contact
	Order          *Order
	ShippingOption *ShippingOption
	PickupPoint    *PickupPoint
}
