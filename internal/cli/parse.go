package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Malformed input is a recoverable validation error, reported with the
// expected format, never a silent no-op.
var ErrInvalidCommand = errors.New("invalid command")

var (
	ticketRe  = regexp.MustCompile(`^(?:-t|--ticket) ([A-Z0-9]{6})$`)
	orderRe   = regexp.MustCompile(`^([a-zA-Z]+(?: [a-zA-Z]+)?)(?: -q ([1-9]\d*))?$`)
	cartModRe = regexp.MustCompile(`^([a-zA-Z]+(?: [a-zA-Z]+)?) (-a|--add|-d|--delete) ([1-9]\d*)$`)
	nameRe    = regexp.MustCompile(`(?i)^[A-Z]+(?: [A-Z]+)*$`)
	emailRe   = regexp.MustCompile(`(?i)^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)

// OrderLine is one "COFFEE [-q N]" command from the order prompt.
type OrderLine struct {
	Coffee   string
	Quantity int
}

func ParseOrderLine(input string) (OrderLine, error) {
	m := orderRe.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return OrderLine{}, fmt.Errorf(`%w: expected 'Macchiato [-q \d]'`, ErrInvalidCommand)
	}
	line := OrderLine{Coffee: TitleCase(m[1]), Quantity: 1}
	if m[2] != "" {
		line.Quantity, _ = strconv.Atoi(m[2])
	}
	return line, nil
}

// CartLine is one "COFFEE (-a|-d) N" command from the cart prompt.
type CartLine struct {
	Coffee   string
	Add      bool
	Quantity int
}

func ParseCartLine(input string) (CartLine, error) {
	m := cartModRe.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return CartLine{}, fmt.Errorf(`%w: expected 'Macchiato (-a|--add|-d|--delete) \d'`, ErrInvalidCommand)
	}
	qty, _ := strconv.Atoi(m[3])
	return CartLine{
		Coffee:   TitleCase(m[1]),
		Add:      m[2] == "-a" || m[2] == "--add",
		Quantity: qty,
	}, nil
}

func ParseTicketID(input string) (string, bool) {
	m := ticketRe.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// PasswordGuide lists the password rules in the order they are checked.
var PasswordGuide = []string{
	"At least 8 characters in length.",
	"At least one uppercase letter (A-Z).",
	"At least one lowercase letter (a-z).",
	"At least one digit (0-9).",
	"At least one special character (@, $, !, %, *, ?, &).",
}

// ValidPassword checks each rule separately (RE2 has no lookaheads).
func ValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		default:
			return false
		}
	}
	return upper && lower && digit && special
}

// TitleCase normalizes coffee names and person names the way the menu
// stores them: "flat white" -> "Flat White".
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
