package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/google/uuid"

	"github.com/3003mgf/harvoffe/internal/models"
	"github.com/3003mgf/harvoffe/internal/order"
)

// Sender delivers outbound mail. The SMTP implementation is the real
// one; tests swap in a recorder.
type Sender interface {
	Send(to, subject, body string) error
	Configured() bool
}

// SMTPMailer sends over implicit TLS (port 465 style), matching the
// usual app-password setups.
type SMTPMailer struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

func (m *SMTPMailer) Configured() bool {
	return m.Host != "" && m.User != "" && m.Password != "" && m.From != ""
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("smtp is not configured")
	}

	addr := net.JoinHostPort(m.Host, m.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", m.User, m.Password, m.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	msg := buildMessage(m.From, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}

// SendReceipt mails the rendered ticket for an order. Best effort: the
// caller logs a failure but never rolls the order back.
func SendReceipt(s Sender, to string, ord *models.Order) error {
	subject := fmt.Sprintf("Your Harvoffe Order Receipt - #%s", ord.ID)
	return s.Send(to, subject, order.RenderReceipt(ord))
}

// SendVerificationCode mails a fresh registration code and returns it
// for the caller to check against the user's input.
func SendVerificationCode(s Sender, to string) (string, error) {
	code := NewVerificationCode()
	body := fmt.Sprintf(
		"Thank you for registering with Harvoffe!\n\nYour verification code is: %s\n\nPlease enter this code in the terminal to complete your registration.\n",
		code,
	)
	if err := s.Send(to, "Harvoffe Registration Code", body); err != nil {
		return "", err
	}
	return code, nil
}

func NewVerificationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:6])
}
