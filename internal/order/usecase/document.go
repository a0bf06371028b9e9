package usecase

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/samber/lo"
	"github.com/shandysiswandi/ordernotify/internal/order/entity"
)

//go:embed templates/*.html
var templatesFS embed.FS

var documents = template.Must(template.New("documents").Option("missingkey=zero").ParseFS(templatesFS, "templates/*.html"))

// DocumentData is everything a document builder needs.
type DocumentData struct {
	Request  entity.NotificationRequest
	Currency string
	ShopName string
}

type documentItem struct {
	Name     string
	Quantity string
	Price    string
}

type documentView struct {
	OrderID      string
	Email        string
	Phone        string
	ShippingName string
	Pickup       *entity.PickupPoint
	Address      entity.Address
	Items        []documentItem
	Subtotal     string
	ShippingCost string
	Total        string
	Currency     string
	ShopName     string
}

// newDocumentView flattens the request so templates never dereference nil.
func newDocumentView(d DocumentData) documentView {
	contact := lo.FromPtr(d.Request.Contact)
	order := lo.FromPtr(d.Request.Order)

	return documentView{
		OrderID:      order.OrderID,
		Email:        contact.Email,
		Phone:        contact.Phone,
		ShippingName: lo.FromPtr(d.Request.ShippingOption).Name,
		Pickup:       d.Request.PickupPoint,
		Address:      lo.FromPtr(contact.Address),
		Items: lo.Map(order.Items, func(item entity.OrderItem, _ int) documentItem {
			return documentItem{
				Name:     item.ProductName,
				Quantity: item.Quantity.String(),
				Price:    item.Price.String(),
			}
		}),
		Subtotal:     order.Subtotal.String(),
		ShippingCost: order.ShippingCost.String(),
		Total:        order.Total.String(),
		Currency:     d.Currency,
		ShopName:     d.ShopName,
	}
}

// RenderAdminDocument builds the operator notification. A pickup point, when
// present, replaces the delivery address block.
func RenderAdminDocument(d DocumentData) (string, error) {
	return render("admin.html", d)
}

// RenderCustomerDocument builds the customer confirmation with the same
// pickup/address branch and item list as the operator notification.
func RenderCustomerDocument(d DocumentData) (string, error) {
	return render("customer.html", d)
}

func render(name string, d DocumentData) (string, error) {
	var buf bytes.Buffer
	if err := documents.ExecuteTemplate(&buf, name, newDocumentView(d)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
