package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/3003mgf/harvoffe/internal/cart"
	"github.com/3003mgf/harvoffe/internal/logging"
	"github.com/3003mgf/harvoffe/internal/models"
	"github.com/3003mgf/harvoffe/internal/store"
)

const (
	Table = "orders.csv"

	// Stored dates must sort lexicographically (history is newest
	// first), so no month names here.
	DateLayout = "2006-01-02 15:04:05"
)

var Fields = []string{"id", "card_id", "client", "date", "total", "items"}

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
)

// AccountLedger is the balance collaborator consumed by checkout.
type AccountLedger interface {
	GetBalance(cardID string) (decimal.Decimal, error)
	SetBalance(cardID string, balance decimal.Decimal) error
}

// Service turns carts into immutable orders. Now and NewID are
// injectable for tests; zero values fall back to the real clock and a
// uuid-derived id.
type Service struct {
	Store  store.RecordStore
	Carts  *cart.Engine
	Ledger AccountLedger
	Now    func() time.Time
	NewID  func() string
}

// Checkout converts the cart into an order: balance check, deduction,
// unique id, append, clear. Balance deduction and order creation are
// one logical unit; if the append fails the deduction is reverted so
// the customer is left exactly where they started.
func (s *Service) Checkout(ctx context.Context, crt *models.Cart, client string) (*models.Order, error) {
	log := logging.FromContext(ctx)

	if len(crt.Items) == 0 {
		return nil, ErrEmptyCart
	}

	total := s.Carts.Total(crt)
	balance, err := s.Ledger.GetBalance(crt.CardID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(total) {
		return nil, fmt.Errorf("%w: total %s, balance %s", ErrInsufficientFunds, total.StringFixed(2), balance.StringFixed(2))
	}

	if err := s.Ledger.SetBalance(crt.CardID, balance.Sub(total)); err != nil {
		return nil, err
	}

	ord := &models.Order{
		CardID: crt.CardID,
		Client: client,
		Date:   s.now().Format(DateLayout),
		Total:  total,
		Items:  append([]models.LineItem(nil), crt.Items...),
	}

	ord.ID, err = s.uniqueID()
	if err == nil {
		err = s.append(ord)
	}
	if err != nil {
		// Revert the deduction so no partial effect survives.
		if rbErr := s.Ledger.SetBalance(crt.CardID, balance); rbErr != nil {
			log.Error("balance revert failed after order write error", "card_id", crt.CardID, "error", rbErr)
		}
		return nil, err
	}

	if err := s.Carts.Clear(crt); err != nil {
		// The order row is durable at this point; the stale cart row
		// is an annoyance, not a correctness problem.
		log.Warn("cart clear failed after checkout", "card_id", crt.CardID, "order_id", ord.ID, "error", err)
	}

	log.Info("order created", "order_id", ord.ID, "card_id", ord.CardID, "total", ord.Total.StringFixed(2))
	return ord, nil
}

// History returns the customer's orders newest first; equal dates keep
// their original append order.
func (s *Service) History(cardID string) ([]models.Order, error) {
	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	for _, row := range rows {
		if row["card_id"] != cardID {
			continue
		}
		ord, err := orderFromRow(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *ord)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date > orders[j].Date
	})
	return orders, nil
}

// Get looks an order up by id for a specific customer.
func (s *Service) Get(cardID, orderID string) (*models.Order, error) {
	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row["id"] == orderID && row["card_id"] == cardID {
			return orderFromRow(row)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
}

// RenderReceipt formats an order as the plain-text ticket that goes
// into the receipt email. Pure formatting, no side effects.
func RenderReceipt(ord *models.Order) string {
	var b strings.Builder
	rule := strings.Repeat("=", 38)
	thin := strings.Repeat("-", 38)

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "           Harvoffe Coffee\n")
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "ORDER RECEIPT\n\n")
	fmt.Fprintf(&b, "Order ID: %s\n", ord.ID)
	fmt.Fprintf(&b, "Date: %s\n", ord.Date)
	fmt.Fprintf(&b, "Customer ID: %s\n", ord.CardID)
	fmt.Fprintf(&b, "Client: %s\n", ord.Client)
	fmt.Fprintf(&b, "%s\n", thin)
	fmt.Fprintf(&b, "ITEMS PURCHASED:\n")
	fmt.Fprintf(&b, "%s\n", thin)
	for _, item := range ord.Items {
		fmt.Fprintf(&b, "%s (%d)\n", item.Coffee, item.Quantity)
	}
	fmt.Fprintf(&b, "%s\n", thin)
	fmt.Fprintf(&b, "SUBTOTAL: %s\n", ord.Total.StringFixed(2))
	fmt.Fprintf(&b, "TAX: 0\n")
	fmt.Fprintf(&b, "TOTAL PAID: %s\n\n", ord.Total.StringFixed(2))
	fmt.Fprintf(&b, "Thank You for Your Order!\n")
	fmt.Fprintf(&b, "Pickup ID: %s\n", ord.ID)
	fmt.Fprintf(&b, "%s\n", rule)
	return b.String()
}

func (s *Service) append(ord *models.Order) error {
	items, err := json.Marshal(ord.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	row := store.Row{
		"id":      ord.ID,
		"card_id": ord.CardID,
		"client":  ord.Client,
		"date":    ord.Date,
		"total":   ord.Total.StringFixed(2),
		"items":   string(items),
	}
	return s.Store.AppendRow(Table, row, Fields)
}

// uniqueID draws 6-char ids until one misses the order table. The id
// space is large enough that the loop all but never repeats.
func (s *Service) uniqueID() (string, error) {
	rows, err := s.readAll()
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(rows))
	for _, row := range rows {
		taken[row["id"]] = true
	}

	for {
		id := s.newID()
		if !taken[id] {
			return id, nil
		}
	}
}

func (s *Service) readAll() ([]store.Row, error) {
	rows, err := s.Store.ReadTable(Table)
	if errors.Is(err, store.ErrTableNotFound) {
		return nil, nil
	}
	return rows, err
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return NewOrderID()
}

// NewOrderID is a 6-char uppercase alphanumeric id, uuid-derived.
func NewOrderID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:6])
}

func orderFromRow(row store.Row) (*models.Order, error) {
	total, err := decimal.NewFromString(row["total"])
	if err != nil {
		return nil, fmt.Errorf("bad total for order %s: %w", row["id"], err)
	}
	ord := &models.Order{
		ID:     row["id"],
		CardID: row["card_id"],
		Client: row["client"],
		Date:   row["date"],
		Total:  total,
	}
	if err := json.Unmarshal([]byte(row["items"]), &ord.Items); err != nil {
		return nil, fmt.Errorf("decode items for order %s: %w", row["id"], err)
	}
	return ord, nil
}
