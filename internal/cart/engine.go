package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/3003mgf/harvoffe/internal/models"
	"github.com/3003mgf/harvoffe/internal/store"
)

const Table = "carts.csv"

var Fields = []string{"card_id", "cart"}

var (
	ErrValidation           = errors.New("validation")
	ErrItemNotFound         = errors.New("item not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// Engine owns one customer's line items: pure state plus persistence,
// no text parsing. At most one line per coffee name, quantities always
// at least 1, one cart row per card_id.
type Engine struct {
	Store store.RecordStore
}

// Load fetches the stored cart for a customer. Absence of the table or
// of the customer's row is a valid empty cart, not an error.
func (e *Engine) Load(cardID string) (*models.Cart, error) {
	crt := &models.Cart{CardID: cardID}

	rows, err := e.Store.ReadTable(Table)
	if errors.Is(err, store.ErrTableNotFound) {
		return crt, nil
	}
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if row["card_id"] != cardID {
			continue
		}
		if err := json.Unmarshal([]byte(row["cart"]), &crt.Items); err != nil {
			return nil, fmt.Errorf("decode cart for %s: %w", cardID, err)
		}
		break
	}
	return crt, nil
}

// AddQuantity increments an existing line by delta, or appends a new
// line at price when the coffee is not in the cart yet. The caller has
// already validated the coffee against the menu.
func (e *Engine) AddQuantity(crt *models.Cart, coffee string, price decimal.Decimal, delta int) error {
	if delta < 1 {
		return fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	for i := range crt.Items {
		if crt.Items[i].Coffee == coffee {
			crt.Items[i].Quantity += delta
			return nil
		}
	}

	crt.Items = append(crt.Items, models.LineItem{Coffee: coffee, Price: price, Quantity: delta})
	return nil
}

// RemoveQuantity decrements a line by delta, deleting it on an exact
// match. Removing more than is present rejects the whole operation and
// leaves the cart unchanged.
func (e *Engine) RemoveQuantity(crt *models.Cart, coffee string, delta int) error {
	if delta < 1 {
		return fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	for i := range crt.Items {
		if crt.Items[i].Coffee != coffee {
			continue
		}
		if delta > crt.Items[i].Quantity {
			return fmt.Errorf("%w: have %d, asked to remove %d", ErrInsufficientQuantity, crt.Items[i].Quantity, delta)
		}
		if delta == crt.Items[i].Quantity {
			crt.Items = append(crt.Items[:i], crt.Items[i+1:]...)
		} else {
			crt.Items[i].Quantity -= delta
		}
		return nil
	}

	return fmt.Errorf("%w: %s", ErrItemNotFound, coffee)
}

// Total is the sum of price*quantity over all lines, rounded to two
// decimal places.
func (e *Engine) Total(crt *models.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, item := range crt.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2)
}

// Persist upserts the cart row keyed by card_id. Persisting the same
// state twice yields the same stored representation.
func (e *Engine) Persist(crt *models.Cart) error {
	items := crt.Items
	if items == nil {
		items = []models.LineItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart for %s: %w", crt.CardID, err)
	}

	rows, err := e.Store.ReadTable(Table)
	if err != nil && !errors.Is(err, store.ErrTableNotFound) {
		return err
	}

	for i, row := range rows {
		if row["card_id"] == crt.CardID {
			rows[i]["cart"] = string(encoded)
			return e.Store.WriteTable(Table, rows, Fields)
		}
	}

	return e.Store.AppendRow(Table, store.Row{"card_id": crt.CardID, "cart": string(encoded)}, Fields)
}

// Clear removes the customer's row from storage and empties the
// in-memory cart.
func (e *Engine) Clear(crt *models.Cart) error {
	rows, err := e.Store.ReadTable(Table)
	if err != nil && !errors.Is(err, store.ErrTableNotFound) {
		return err
	}

	kept := rows[:0]
	for _, row := range rows {
		if row["card_id"] != crt.CardID {
			kept = append(kept, row)
		}
	}
	if err == nil {
		if err := e.Store.WriteTable(Table, kept, Fields); err != nil {
			return err
		}
	}

	crt.Items = nil
	return nil
}
