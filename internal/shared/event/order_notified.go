package event

const OrderNotifiedDestination string = "order_notified"

type OrderNotifiedMessage struct {
	EventID       string `json:"event_id"`
	OrderID       string `json:"order_id"`
	CustomerEmail string `json:"customer_email"`
	ItemCount     int    `json:"item_count"`
	Total         string `json:"total"`
	PickupPoint   bool   `json:"pickup_point"`
	NotifiedAt    string `json:"notified_at"`
}
