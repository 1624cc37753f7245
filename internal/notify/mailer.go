package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/queue"
)

// SMTPConfig addresses the outgoing mail server.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Mailer sends confirmation e-mails over SMTP with STARTTLS when the
// server offers it.
type Mailer struct {
	cfg  SMTPConfig
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewMailer(cfg SMTPConfig) *Mailer {
	d := &net.Dialer{Timeout: 10 * time.Second}
	return &Mailer{cfg: cfg, dial: d.DialContext}
}

// Send implements service.Notifier.
func (m *Mailer) Send(ctx context.Context, recipient string, s model.BookingSummary) bool {
	if err := m.Deliver(ctx, recipient, s); err != nil {
		log.Error().Err(err).Str("recipient", recipient).Uint64("booking_id", s.BookingID).Msg("confirmation mail failed")
		return false
	}
	return true
}

// HandleEvent is a queue.Handler that mails a consumed confirmation.
func (m *Mailer) HandleEvent(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	return m.Deliver(ctx, ev.Recipient, ev.Summary)
}

// Deliver renders and sends one confirmation.  The context deadline bounds
// the whole SMTP conversation.
func (m *Mailer) Deliver(ctx context.Context, recipient string, s model.BookingSummary) error {
	if m.cfg.Host == "" {
		return errors.New("smtp host not configured")
	}
	if !strings.Contains(recipient, "@") {
		return fmt.Errorf("recipient %q is not an e-mail address", recipient)
	}
	subject, body, err := RenderConfirmation(s)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	conn, err := m.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if m.cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(buildMessage(m.cfg.From, recipient, subject, body)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end data: %w", err)
	}
	return c.Quit()
}

func buildMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	return []byte(b.String())
}
