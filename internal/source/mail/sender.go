package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

// Sender delivers plain-text e-mails over SMTP.
type Sender struct {
	cfg SMTPConfig
}

// NewSender creates an SMTP sender. The username doubles as the From address.
func NewSender(cfg SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// Send composes and delivers a message to the given recipients.
func (s *Sender) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("sending %q: no recipients", subject)
	}

	var buf bytes.Buffer
	if err := Compose(&buf, s.cfg.Username, to, subject, body, time.Now()); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	client, err := s.dial(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	if err := client.Mail(s.cfg.Username); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT TO %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}
	if _, err := writer.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}
	return client.Quit()
}

// dial opens an implicit-TLS connection when TLS is set, and a STARTTLS
// upgraded one otherwise.
func (s *Sender) dial(ctx context.Context, addr string) (*smtp.Client, error) {
	tlsConfig := &tls.Config{ServerName: s.cfg.Host}
	dialer := &net.Dialer{Timeout: 30 * time.Second}

	if s.cfg.TLS {
		conn, err := (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("TLS dial to %s: %w", addr, err)
		}
		client, err := smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("creating SMTP client: %w", err)
		}
		return client, nil
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial to %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating SMTP client: %w", err)
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		client.Close()
		return nil, fmt.Errorf("SMTP STARTTLS: %w", err)
	}
	return client, nil
}

// Compose writes a single-part UTF-8 text message with encoded headers.
func Compose(w io.Writer, from string, to []string, subject, body string, date time.Time) error {
	var h gomail.Header
	h.SetDate(date)
	h.SetSubject(subject)
	h.SetAddressList("From", []*gomail.Address{{Address: from}})

	rcpts := make([]*gomail.Address, 0, len(to))
	for _, addr := range to {
		rcpts = append(rcpts, &gomail.Address{Address: addr})
	}
	h.SetAddressList("To", rcpts)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return fmt.Errorf("generating message id: %w", err)
	}

	mw, err := gomail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(mw, body); err != nil {
		mw.Close()
		return fmt.Errorf("writing message body: %w", err)
	}
	return mw.Close()
}
