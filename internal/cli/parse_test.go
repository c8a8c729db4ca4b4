package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOrderLine(t *testing.T) {
	line, err := ParseOrderLine("Macchiato -q 3")
	require.NoError(t, err)
	require.Equal(t, "Macchiato", line.Coffee)
	require.Equal(t, 3, line.Quantity)

	// Quantity defaults to 1.
	line, err = ParseOrderLine("flat white")
	require.NoError(t, err)
	require.Equal(t, "Flat White", line.Coffee)
	require.Equal(t, 1, line.Quantity)

	for _, bad := range []string{"Macchiato -q three", "Macchiato -q 0", "-q 3", "Macchiato -q -1", "123"} {
		_, err := ParseOrderLine(bad)
		require.ErrorIs(t, err, ErrInvalidCommand, bad)
	}
}

func TestParseCartLine(t *testing.T) {
	line, err := ParseCartLine("Macchiato -a 3")
	require.NoError(t, err)
	require.Equal(t, CartLine{Coffee: "Macchiato", Add: true, Quantity: 3}, line)

	line, err = ParseCartLine("americano --delete 1")
	require.NoError(t, err)
	require.Equal(t, CartLine{Coffee: "Americano", Add: false, Quantity: 1}, line)

	for _, bad := range []string{"Macchiato -a", "Macchiato -x 3", "Macchiato -a 0", "-a 3"} {
		_, err := ParseCartLine(bad)
		require.ErrorIs(t, err, ErrInvalidCommand, bad)
	}
}

func TestParseTicketID(t *testing.T) {
	id, ok := ParseTicketID("--ticket AB12CD")
	require.True(t, ok)
	require.Equal(t, "AB12CD", id)

	id, ok = ParseTicketID("-t ZZZZ99")
	require.True(t, ok)
	require.Equal(t, "ZZZZ99", id)

	for _, bad := range []string{"-t ab12cd", "-t AB12C", "-t AB12CD7", "--ticket"} {
		_, ok := ParseTicketID(bad)
		require.False(t, ok, bad)
	}
}

func TestValidName(t *testing.T) {
	require.True(t, ValidName("David"))
	require.True(t, ValidName("mary jane"))
	require.False(t, ValidName("David3"))
	require.False(t, ValidName(""))
}

func TestValidEmail(t *testing.T) {
	require.True(t, ValidEmail("david@example.com"))
	require.True(t, ValidEmail("d.malan+cs50@example.co.uk"))
	require.False(t, ValidEmail("david@"))
	require.False(t, ValidEmail("not an email"))
}

func TestValidPassword(t *testing.T) {
	require.True(t, ValidPassword("Abcdef1!"))
	require.False(t, ValidPassword("short1!"))
	require.False(t, ValidPassword("alllower1!"))
	require.False(t, ValidPassword("ALLUPPER1!"))
	require.False(t, ValidPassword("NoDigits!"))
	require.False(t, ValidPassword("NoSpecial1"))
	require.False(t, ValidPassword("Has space1!"))
}

func TestTitleCase(t *testing.T) {
	require.Equal(t, "Flat White", TitleCase("flat WHITE"))
	require.Equal(t, "Macchiato", TitleCase("  macchiato "))
}
