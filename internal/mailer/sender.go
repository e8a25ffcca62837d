package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"github.com/google/uuid"

	"github.com/ignite/mailtrace/internal/config"
	"github.com/ignite/mailtrace/internal/pkg/logger"
)

// RecordInserter persists the initial tracking row after a successful send.
type RecordInserter interface {
	InsertRecord(ctx context.Context, email, token string) error
}

// Dispatcher sends one composed message per recipient over an
// authenticated STARTTLS session to the configured relay. There is no
// retry: a failed recipient is logged and skipped, and never gets a
// tracking row.
type Dispatcher struct {
	cfg      config.SMTPConfig
	composer *Composer
	store    RecordInserter

	// deliver is the wire-level send, overridable in tests.
	deliver func(ctx context.Context, to string, msg []byte) error
}

// NewDispatcher creates a dispatcher around a composer and a store.
func NewDispatcher(cfg config.SMTPConfig, composer *Composer, store RecordInserter) *Dispatcher {
	d := &Dispatcher{cfg: cfg, composer: composer, store: store}
	d.deliver = d.sendSMTP
	return d
}

// BatchResult summarizes one batch send.
type BatchResult struct {
	Sent   int
	Failed int
}

// SendBatch sends one tracked email to every recipient, strictly in
// order. Missing relay configuration fails the whole batch up front;
// per-recipient delivery errors do not stop the loop.
func (d *Dispatcher) SendBatch(ctx context.Context, recipients []string) (*BatchResult, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("batch send aborted: %w", err)
	}

	res := &BatchResult{}
	for _, recipient := range recipients {
		if err := d.sendOne(ctx, recipient); err != nil {
			logger.Error("send failed", "recipient", recipient, "error", err)
			res.Failed++
			continue
		}
		res.Sent++
	}
	return res, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, recipient string) error {
	token := uuid.New().String()

	msg, err := d.composer.Compose(token)
	if err != nil {
		return err
	}

	raw := d.buildMIME(recipient, msg)
	if err := d.deliver(ctx, recipient, raw); err != nil {
		return err
	}

	logger.Info("email sent", "recipient", recipient, "token", token)

	if err := d.store.InsertRecord(ctx, recipient, token); err != nil {
		// The message is already out; the row is just missing from
		// reporting. Surface loudly and move on.
		logger.Error("tracking row insert failed after send", "recipient", recipient, "token", token, "error", err)
	}
	return nil
}

// buildMIME assembles the multipart/alternative wire format.
func (d *Dispatcher) buildMIME(recipient string, msg *Message) []byte {
	messageID := fmt.Sprintf("%s@mailtrace", uuid.New().String())
	boundary := fmt.Sprintf("=_%s", uuid.New().String()[:16])

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n", d.cfg.FromName, d.cfg.Username))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", d.composer.subject))
	buf.WriteString(fmt.Sprintf("Message-ID: <%s>\r\n", messageID))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	buf.WriteString(msg.Text)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	buf.WriteString(msg.HTML)
	buf.WriteString("\r\n")
	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return buf.Bytes()
}

// sendSMTP performs the raw SMTP transaction: dial, STARTTLS, AUTH,
// MAIL/RCPT/DATA. The relay requires an encrypted, authenticated
// session, so a server without STARTTLS is an error.
func (d *Dispatcher) sendSMTP(ctx context.Context, to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	dialer := &net.Dialer{Timeout: d.cfg.Timeout()}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("SMTP connect to %s: %w", addr, err)
	}

	c, err := smtp.NewClient(conn, d.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP client: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return fmt.Errorf("relay %s does not offer STARTTLS", addr)
	}
	if err := c.StartTLS(&tls.Config{ServerName: d.cfg.Host}); err != nil {
		return fmt.Errorf("STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("AUTH: %w", err)
	}

	if err := c.Mail(d.cfg.Username); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("DATA close: %w", err)
	}
	return c.Quit()
}
