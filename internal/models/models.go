package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type MenuEntry struct {
	Coffee string          `json:"coffee"`
	Price  decimal.Decimal `json:"price"`
}

// LineItem is one coffee inside a cart or an order snapshot.
type LineItem struct {
	Coffee   string          `json:"coffee"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// MarshalJSON writes the price as a bare number so the stored cart/items
// columns stay compatible with the flat-file format.
func (li LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Coffee   string      `json:"coffee"`
		Price    json.Number `json:"price"`
		Quantity int         `json:"quantity"`
	}{
		Coffee:   li.Coffee,
		Price:    json.Number(li.Price.String()),
		Quantity: li.Quantity,
	})
}

type Cart struct {
	CardID string
	Items  []LineItem
}

// Order is immutable once created; Items is a snapshot decoupled from
// the cart it was built from.
type Order struct {
	ID     string
	CardID string
	Client string
	Date   string
	Total  decimal.Decimal
	Items  []LineItem
}

type User struct {
	First        string
	Last         string
	Email        string
	PasswordHash string
	CardID       string
	Balance      decimal.Decimal
}

type Session struct {
	First  string `json:"first"`
	Last   string `json:"last"`
	Email  string `json:"email"`
	CardID string `json:"card_id"`
}
