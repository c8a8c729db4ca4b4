package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/3003mgf/harvoffe/internal/account"
	"github.com/3003mgf/harvoffe/internal/cart"
	"github.com/3003mgf/harvoffe/internal/models"
	"github.com/3003mgf/harvoffe/internal/store"
)

type testEnv struct {
	Store   *store.MemoryStore
	Ledger  *account.Ledger
	Carts   *cart.Engine
	Service *Service
	User    *models.User
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := store.NewMemoryStore()
	ledger := &account.Ledger{Store: s}
	carts := &cart.Engine{Store: s}

	user, err := ledger.Register("David", "Malan", "david@example.com", "hash")
	require.NoError(t, err)

	at := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	svc := &Service{
		Store:  s,
		Carts:  carts,
		Ledger: ledger,
		Now: func() time.Time {
			at = at.Add(time.Minute)
			return at
		},
	}
	return &testEnv{Store: s, Ledger: ledger, Carts: carts, Service: svc, User: user}
}

func (env *testEnv) seedCart(t *testing.T) *models.Cart {
	t.Helper()
	crt := &models.Cart{CardID: env.User.CardID}
	require.NoError(t, env.Carts.AddQuantity(crt, "Macchiato", dec(t, "3.50"), 2))
	require.NoError(t, env.Carts.AddQuantity(crt, "Americano", dec(t, "3.00"), 1))
	require.NoError(t, env.Carts.Persist(crt))
	return crt
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	crt := &models.Cart{CardID: env.User.CardID}

	_, err := env.Service.Checkout(context.Background(), crt, "David Malan")
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	crt := env.seedCart(t)
	require.NoError(t, env.Ledger.SetBalance(env.User.CardID, dec(t, "2.00")))

	_, err := env.Service.Checkout(context.Background(), crt, "David Malan")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Cart and balance untouched.
	balance, err := env.Ledger.GetBalance(env.User.CardID)
	require.NoError(t, err)
	require.Equal(t, "2.00", balance.StringFixed(2))
	require.Len(t, crt.Items, 2)

	_, err = env.Store.ReadTable(Table)
	require.ErrorIs(t, err, store.ErrTableNotFound)
}

func TestCheckoutSuccess(t *testing.T) {
	env := newTestEnv(t)
	crt := env.seedCart(t)

	ord, err := env.Service.Checkout(context.Background(), crt, "David Malan")
	require.NoError(t, err)
	require.Len(t, ord.ID, 6)
	require.Equal(t, "10.00", ord.Total.StringFixed(2))
	require.Equal(t, env.User.CardID, ord.CardID)
	require.Equal(t, "David Malan", ord.Client)
	require.Len(t, ord.Items, 2)

	// Balance decreased by exactly the total.
	balance, err := env.Ledger.GetBalance(env.User.CardID)
	require.NoError(t, err)
	require.Equal(t, "290.00", balance.StringFixed(2))

	// Cart emptied in memory and on disk.
	require.Empty(t, crt.Items)
	reloaded, err := env.Carts.Load(env.User.CardID)
	require.NoError(t, err)
	require.Empty(t, reloaded.Items)

	// Order row durable.
	rows, err := env.Store.ReadTable(Table)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, ord.ID, rows[0]["id"])
}

func TestCheckoutExactBalance(t *testing.T) {
	env := newTestEnv(t)
	crt := env.seedCart(t)
	require.NoError(t, env.Ledger.SetBalance(env.User.CardID, dec(t, "10.00")))

	_, err := env.Service.Checkout(context.Background(), crt, "David Malan")
	require.NoError(t, err)

	balance, err := env.Ledger.GetBalance(env.User.CardID)
	require.NoError(t, err)
	require.Equal(t, "0.00", balance.StringFixed(2))
}

func TestCheckoutOrderIsImmutableSnapshot(t *testing.T) {
	env := newTestEnv(t)
	crt := env.seedCart(t)

	ord, err := env.Service.Checkout(context.Background(), crt, "David Malan")
	require.NoError(t, err)

	// Refill the cart and mutate it; the returned order and the stored
	// row must both keep the original snapshot.
	require.NoError(t, env.Carts.AddQuantity(crt, "Macchiato", dec(t, "3.50"), 9))
	crt.Items[0].Quantity = 99

	require.Len(t, ord.Items, 2)
	require.Equal(t, 2, ord.Items[0].Quantity)

	stored, err := env.Service.Get(env.User.CardID, ord.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.Items[0].Quantity)
}

func TestCheckoutGeneratesFreshIDOnCollision(t *testing.T) {
	env := newTestEnv(t)

	ids := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	env.Service.NewID = func() string {
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	}

	crt := env.seedCart(t)
	first, err := env.Service.Checkout(context.Background(), crt, "David Malan")
	require.NoError(t, err)
	require.Equal(t, "AAAAAA", first.ID)

	crt = env.seedCart(t)
	second, err := env.Service.Checkout(context.Background(), crt, "David Malan")
	require.NoError(t, err)
	require.Equal(t, "BBBBBB", second.ID)
}

type failingAppendStore struct {
	*store.MemoryStore
}

func (s *failingAppendStore) AppendRow(name string, row store.Row, fields []string) error {
	if name == Table {
		return errors.New("disk full")
	}
	return s.MemoryStore.AppendRow(name, row, fields)
}

func TestCheckoutRevertsBalanceWhenAppendFails(t *testing.T) {
	env := newTestEnv(t)
	crt := env.seedCart(t)

	env.Service.Store = &failingAppendStore{MemoryStore: env.Store}

	_, err := env.Service.Checkout(context.Background(), crt, "David Malan")
	require.Error(t, err)

	balance, err := env.Ledger.GetBalance(env.User.CardID)
	require.NoError(t, err)
	require.Equal(t, "300.00", balance.StringFixed(2))

	// Cart row still present for retry.
	reloaded, err := env.Carts.Load(env.User.CardID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 2)
}

func TestHistorySortedNewestFirstStable(t *testing.T) {
	env := newTestEnv(t)

	fixed := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	times := []time.Time{
		fixed,                     // A
		fixed.Add(2 * time.Hour),  // B
		fixed.Add(2 * time.Hour),  // C, same second as B
		fixed.Add(-1 * time.Hour), // D
	}
	env.Service.Now = func() time.Time {
		at := times[0]
		times = times[1:]
		return at
	}

	var ids []string
	for i := 0; i < 4; i++ {
		crt := env.seedCart(t)
		ord, err := env.Service.Checkout(context.Background(), crt, "David Malan")
		require.NoError(t, err)
		ids = append(ids, ord.ID)
	}

	history, err := env.Service.History(env.User.CardID)
	require.NoError(t, err)
	require.Len(t, history, 4)

	// B before C (tie keeps append order), then A, then D.
	require.Equal(t, ids[1], history[0].ID)
	require.Equal(t, ids[2], history[1].ID)
	require.Equal(t, ids[0], history[2].ID)
	require.Equal(t, ids[3], history[3].ID)
}

func TestHistoryFiltersByCard(t *testing.T) {
	env := newTestEnv(t)
	other, err := env.Ledger.Register("Carter", "Zenke", "carter@example.com", "hash")
	require.NoError(t, err)

	crt := env.seedCart(t)
	_, err = env.Service.Checkout(context.Background(), crt, "David Malan")
	require.NoError(t, err)

	history, err := env.Service.History(other.CardID)
	require.NoError(t, err)
	require.Empty(t, history)

	history, err = env.Service.History(env.User.CardID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestGet(t *testing.T) {
	env := newTestEnv(t)
	crt := env.seedCart(t)
	ord, err := env.Service.Checkout(context.Background(), crt, "David Malan")
	require.NoError(t, err)

	got, err := env.Service.Get(env.User.CardID, ord.ID)
	require.NoError(t, err)
	require.Equal(t, ord.ID, got.ID)
	require.True(t, got.Total.Equal(ord.Total))

	_, err = env.Service.Get(env.User.CardID, "ZZZZZZ")
	require.ErrorIs(t, err, ErrOrderNotFound)

	// Another customer cannot fetch it.
	_, err = env.Service.Get("someone-else", ord.ID)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestRenderReceipt(t *testing.T) {
	ord := &models.Order{
		ID:     "AB12CD",
		CardID: "card-1",
		Client: "David Malan",
		Date:   "2025-11-03 10:00:00",
		Total:  decimal.NewFromFloat(10),
		Items: []models.LineItem{
			{Coffee: "Macchiato", Price: decimal.NewFromFloat(3.5), Quantity: 2},
			{Coffee: "Americano", Price: decimal.NewFromFloat(3), Quantity: 1},
		},
	}

	receipt := RenderReceipt(ord)
	require.Contains(t, receipt, "Order ID: AB12CD")
	require.Contains(t, receipt, "Client: David Malan")
	require.Contains(t, receipt, "Macchiato (2)")
	require.Contains(t, receipt, "Americano (1)")
	require.Contains(t, receipt, "TOTAL PAID: 10.00")
	require.Contains(t, receipt, "Pickup ID: AB12CD")
}

func TestNewOrderIDShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := NewOrderID()
		require.Regexp(t, `^[A-Z0-9]{6}$`, id)
	}
}
