package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/3003mgf/harvoffe/internal/models"
)

var ErrNoSession = errors.New("no active session")

// Manager owns the session file: one signed token, explicit
// create/destroy lifecycle. Signing keeps a hand-edited session file
// from impersonating another card.
type Manager struct {
	Path   string
	Secret []byte
	TTL    time.Duration
}

func NewManager(path string, secret []byte) *Manager {
	return &Manager{Path: path, Secret: secret, TTL: 24 * time.Hour}
}

// Create opens a session for the user, replacing any previous one.
func (m *Manager) Create(user *models.User) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"first":   user.First,
		"last":    user.Last,
		"email":   user.Email,
		"card_id": user.CardID,
		"iat":     now.Unix(),
		"exp":     now.Add(m.TTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	if err := os.WriteFile(m.Path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Current returns the active session, or ErrNoSession when there is no
// session file or the token is invalid or expired.
func (m *Manager) Current() (*models.Session, error) {
	raw, err := os.ReadFile(m.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	token, err := jwt.Parse(string(raw), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrNoSession
	}

	sess := &models.Session{}
	if sess.First, ok = claims["first"].(string); !ok {
		return nil, ErrNoSession
	}
	sess.Last, _ = claims["last"].(string)
	sess.Email, _ = claims["email"].(string)
	if sess.CardID, ok = claims["card_id"].(string); !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

// Close destroys the session. Closing when none exists is fine.
func (m *Manager) Close() error {
	err := os.Remove(m.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}
