package service

import (
	"fmt"

	"verokai-pos/internal/model"

	"github.com/shopspring/decimal"
)

const EventStockUpdate = "stock_update"

const (
	ActionProductCreated = "product_created"
	ActionProductUpdated = "product_updated"
	ActionProductDeleted = "product_deleted"
	ActionSaleRecorded   = "sale_recorded"
	ActionPurchase       = "purchase_recorded"
)

// StockEvent is what live clients receive on /ws.
type StockEvent struct {
	Type     string           `json:"type"`
	Action   string           `json:"action"`
	Product  *EventProduct    `json:"producto,omitempty"`
	Quantity int              `json:"cantidad,omitempty"`
	Total    *decimal.Decimal `json:"total,omitempty"`
	User     EventUser        `json:"usuario"`
	Message  string           `json:"message"`
}

type EventProduct struct {
	ID      uint            `json:"id"`
	Barcode *string         `json:"codigo_barras"`
	Name    string          `json:"nombre"`
	Price   decimal.Decimal `json:"precio"`
	Stock   int             `json:"stock"`
}

type EventUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func eventProduct(p *model.Product) *EventProduct {
	return &EventProduct{ID: p.ID, Barcode: p.Barcode, Name: p.Name, Price: p.Price, Stock: p.Stock}
}

func eventUser(a Actor) EventUser {
	return EventUser{ID: a.ID, Name: a.Name, Email: a.Email}
}

func productEvent(action string, p *model.Product, actor Actor) StockEvent {
	verb := map[string]string{
		ActionProductCreated: "creó",
		ActionProductUpdated: "actualizó",
		ActionProductDeleted: "eliminó",
	}[action]
	return StockEvent{
		Type:    EventStockUpdate,
		Action:  action,
		Product: eventProduct(p),
		User:    eventUser(actor),
		Message: fmt.Sprintf("%s %s el producto '%s'", actor.Name, verb, p.Name),
	}
}
