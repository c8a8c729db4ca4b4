package account

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/3003mgf/harvoffe/internal/models"
	"github.com/3003mgf/harvoffe/internal/store"
)

const Table = "users.csv"

var Fields = []string{"first", "last", "email", "password", "card_id", "balance"}

var ErrUserNotFound = errors.New("user not found")

// New cards start with a courtesy balance.
var initialBalance = decimal.NewFromInt(300)

// Ledger owns the users table: registration, lookup and the customer
// balance the checkout service draws from.
type Ledger struct {
	Store store.RecordStore
}

// Register appends a new user row with a fresh card id and the initial
// balance. Password must already be hashed.
func (l *Ledger) Register(first, last, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		First:        first,
		Last:         last,
		Email:        email,
		PasswordHash: passwordHash,
		CardID:       uuid.NewString(),
		Balance:      initialBalance,
	}

	row := store.Row{
		"first":    user.First,
		"last":     user.Last,
		"email":    user.Email,
		"password": user.PasswordHash,
		"card_id":  user.CardID,
		"balance":  user.Balance.StringFixed(2),
	}
	if err := l.Store.AppendRow(Table, row, Fields); err != nil {
		return nil, err
	}
	return user, nil
}

func (l *Ledger) FindByEmail(email string) (*models.User, error) {
	rows, err := l.readAll()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row["email"] == email {
			return userFromRow(row)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
}

func (l *Ledger) EmailInUse(email string) (bool, error) {
	_, err := l.FindByEmail(email)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *Ledger) GetBalance(cardID string) (decimal.Decimal, error) {
	rows, err := l.readAll()
	if err != nil {
		return decimal.Zero, err
	}
	for _, row := range rows {
		if row["card_id"] == cardID {
			return decimal.NewFromString(row["balance"])
		}
	}
	return decimal.Zero, fmt.Errorf("%w: card %s", ErrUserNotFound, cardID)
}

// SetBalance rewrites the users table with the customer's balance
// replaced. Negative balances are never written.
func (l *Ledger) SetBalance(cardID string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("refusing to store negative balance %s for card %s", balance, cardID)
	}

	rows, err := l.readAll()
	if err != nil {
		return err
	}
	found := false
	for i, row := range rows {
		if row["card_id"] == cardID {
			rows[i]["balance"] = balance.StringFixed(2)
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: card %s", ErrUserNotFound, cardID)
	}
	return l.Store.WriteTable(Table, rows, Fields)
}

func (l *Ledger) readAll() ([]store.Row, error) {
	rows, err := l.Store.ReadTable(Table)
	if errors.Is(err, store.ErrTableNotFound) {
		return nil, nil
	}
	return rows, err
}

func userFromRow(row store.Row) (*models.User, error) {
	balance, err := decimal.NewFromString(row["balance"])
	if err != nil {
		return nil, fmt.Errorf("bad balance for card %s: %w", row["card_id"], err)
	}
	return &models.User{
		First:        row["first"],
		Last:         row["last"],
		Email:        row["email"],
		PasswordHash: row["password"],
		CardID:       row["card_id"],
		Balance:      balance,
	}, nil
}
