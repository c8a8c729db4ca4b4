package account

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/3003mgf/harvoffe/internal/store"
)

func TestRegisterAndFind(t *testing.T) {
	l := &Ledger{Store: store.NewMemoryStore()}

	user, err := l.Register("David", "Malan", "david@example.com", "$2a$10$hash")
	require.NoError(t, err)
	require.NotEmpty(t, user.CardID)
	require.Equal(t, "300.00", user.Balance.StringFixed(2))

	found, err := l.FindByEmail("david@example.com")
	require.NoError(t, err)
	require.Equal(t, user.CardID, found.CardID)
	require.Equal(t, "$2a$10$hash", found.PasswordHash)

	_, err = l.FindByEmail("nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestEmailInUse(t *testing.T) {
	l := &Ledger{Store: store.NewMemoryStore()}

	used, err := l.EmailInUse("david@example.com")
	require.NoError(t, err)
	require.False(t, used)

	_, err = l.Register("David", "Malan", "david@example.com", "hash")
	require.NoError(t, err)

	used, err = l.EmailInUse("david@example.com")
	require.NoError(t, err)
	require.True(t, used)
}

func TestBalanceRoundtrip(t *testing.T) {
	l := &Ledger{Store: store.NewMemoryStore()}
	user, err := l.Register("David", "Malan", "david@example.com", "hash")
	require.NoError(t, err)

	balance, err := l.GetBalance(user.CardID)
	require.NoError(t, err)
	require.Equal(t, "300.00", balance.StringFixed(2))

	require.NoError(t, l.SetBalance(user.CardID, decimal.NewFromFloat(292.50)))
	balance, err = l.GetBalance(user.CardID)
	require.NoError(t, err)
	require.Equal(t, "292.50", balance.StringFixed(2))

	_, err = l.GetBalance("missing-card")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, l.SetBalance("missing-card", decimal.Zero), ErrUserNotFound)
}

func TestSetBalanceRefusesNegative(t *testing.T) {
	l := &Ledger{Store: store.NewMemoryStore()}
	user, err := l.Register("David", "Malan", "david@example.com", "hash")
	require.NoError(t, err)

	require.Error(t, l.SetBalance(user.CardID, decimal.NewFromInt(-1)))

	balance, err := l.GetBalance(user.CardID)
	require.NoError(t, err)
	require.Equal(t, "300.00", balance.StringFixed(2))
}
